// internal/recommendation/ranker/grade.go
package ranker

import "grant-workers/internal/models"

var (
	GradeBest    = models.Grade{Label: "best fit", Description: "최적", Color: "green"}
	GradeGood    = models.Grade{Label: "good fit", Description: "적합", Color: "blue"}
	GradeFair    = models.Grade{Label: "fair fit", Description: "보통", Color: "yellow"}
	GradeGeneral = models.Grade{Label: "general fit", Description: "참고", Color: "gray"}
)

// GradeFor maps a total score to its display grade. It is presentation only
// and never used for filtering.
func GradeFor(total int) models.Grade {
	switch {
	case total >= 90:
		return GradeBest
	case total >= 75:
		return GradeGood
	case total >= 60:
		return GradeFair
	default:
		return GradeGeneral
	}
}
