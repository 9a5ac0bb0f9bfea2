// internal/workers/recommendation/rank-recommendations/models.go
package rankrecommendations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/ranker"
)

type Input struct {
	CompanyID       string                 `json:"companyId,omitempty"`
	Company         *models.CompanyProfile `json:"company,omitempty"`
	UserID          string                 `json:"userId,omitempty"`
	Limit           FlexInt                `json:"limit,omitempty"`
	MinScore        OptionalInt            `json:"minScore"`
	AnnouncementIDs []string               `json:"announcementIds,omitempty"`
}

type Output struct {
	RunID           string                  `json:"runId"`
	Recommendations []models.Recommendation `json:"recommendations"`
	ranker.Stats
	BehaviorApplied  bool   `json:"behaviorApplied"`
	BehaviorDegraded bool   `json:"behaviorDegraded"`
	CandidateSource  string `json:"candidateSource"`
}

// FlexInt accepts a JSON number or a numeric string, so process variables
// copied from query parameters ("limit": "20") decode the same as numbers.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		fv, ferr := n.Float64()
		if ferr != nil {
			return err
		}
		v = int64(fv)
	}
	*f = FlexInt(v)
	return nil
}

// OptionalInt is a FlexInt that remembers whether a value was given. null
// and blank strings leave it unset, so "minScore": "0" is distinct from an
// absent minScore.
type OptionalInt struct {
	Value int
	Set   bool
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*o = OptionalInt{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*o = OptionalInt{}
			return nil
		}
	}
	var f FlexInt
	if err := f.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	*o = OptionalInt{Value: int(f), Set: true}
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil when unset.
func (o OptionalInt) Ptr() *int {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func Int(v int) OptionalInt {
	return OptionalInt{Value: v, Set: true}
}
