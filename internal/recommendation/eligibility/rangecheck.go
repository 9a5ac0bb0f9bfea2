// internal/recommendation/eligibility/rangecheck.go
package eligibility

import (
	"fmt"
	"strconv"

	"grant-workers/internal/models"
)

const (
	reasonUnknown      = "정보 없음 (통과 처리)"
	reasonNoConstraint = "제한 없음"
	reasonSatisfied    = "조건 충족"
)

// RangeResult is the verdict of a single range check.
type RangeResult struct {
	Matched bool
	Reason  string
}

// inRange is the shared policy for every numeric dimension: an unknown
// company value passes, an unbounded range passes, otherwise bounds are
// inclusive.
func inRange(value *float64, bounds *models.NumericRange) RangeResult {
	if value == nil {
		return RangeResult{Matched: true, Reason: reasonUnknown}
	}
	if bounds == nil || (bounds.Min == nil && bounds.Max == nil) {
		return RangeResult{Matched: true, Reason: reasonNoConstraint}
	}
	if bounds.Min != nil && *value < *bounds.Min {
		return RangeResult{Reason: fmt.Sprintf("최소 %s 이상 필요", formatNumber(*bounds.Min))}
	}
	if bounds.Max != nil && *value > *bounds.Max {
		return RangeResult{Reason: fmt.Sprintf("최대 %s 이하 필요", formatNumber(*bounds.Max))}
	}
	return RangeResult{Matched: true, Reason: reasonSatisfied}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
