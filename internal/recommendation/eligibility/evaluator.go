// internal/recommendation/eligibility/evaluator.go
package eligibility

import (
	"fmt"
	"math"
	"strings"
	"time"

	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/taxonomy"
)

// Dimension weights. The six structural weights sum to 100.
const (
	WeightIndustry      = 30
	WeightRegion        = 20
	WeightEmployeeCount = 15
	WeightRevenue       = 15
	WeightBusinessAge   = 10
	WeightCertification = 10

	DeadlineBonus      = 5
	DeadlineWindowDays = 7
)

// Criterion names as shown to users.
const (
	CriterionIndustry      = "업종"
	CriterionRegion        = "지역"
	CriterionEmployeeCount = "직원수"
	CriterionRevenue       = "매출"
	CriterionBusinessAge   = "업력"
	CriterionCertification = "인증"
	CriterionDeadline      = "마감임박"
)

const (
	ExcludedByIndustry = "industry_excluded"
	ExcludedByRegion   = "region_excluded"
	NoCriteria         = "no_eligibility_criteria"
)

const day = 24 * time.Hour

// Evaluator scores one company against one announcement. It holds no
// mutable state and may be shared across goroutines.
type Evaluator struct {
	taxonomy *taxonomy.Taxonomy
	now      func() time.Time
}

type Option func(*Evaluator)

// WithClock overrides the time source used for deadline and business age.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

func NewEvaluator(tx *taxonomy.Taxonomy, opts ...Option) *Evaluator {
	if tx == nil {
		tx = taxonomy.Default()
	}
	e := &Evaluator{taxonomy: tx, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Taxonomy() *taxonomy.Taxonomy {
	return e.taxonomy
}

// Evaluate returns NotScorable when the announcement has no criteria,
// Excluded when a hard industry or region exclusion applies, and otherwise a
// Scored outcome with six structural criteria plus an optional deadline bonus.
func (e *Evaluator) Evaluate(company *models.CompanyProfile, ann *models.Announcement) models.Outcome {
	return e.EvaluateAt(company, ann, e.now())
}

// EvaluateAt is Evaluate with an explicit reference time.
func (e *Evaluator) EvaluateAt(company *models.CompanyProfile, ann *models.Announcement, now time.Time) models.Outcome {
	if ann == nil || ann.Eligibility == nil {
		return models.Outcome{Status: models.OutcomeNotScorable, Reason: NoCriteria}
	}
	if company == nil {
		company = &models.CompanyProfile{}
	}
	criteria := ann.Eligibility

	if e.taxonomy.IndustryExcluded(company.Industry, criteria.Industries.Excluded) {
		return models.Outcome{Status: models.OutcomeExcluded, Reason: ExcludedByIndustry}
	}
	if e.taxonomy.RegionExcluded(company.Location, criteria.Regions.Excluded) {
		return models.Outcome{Status: models.OutcomeExcluded, Reason: ExcludedByRegion}
	}

	var b models.ScoreBreakdown
	matched := make([]models.MatchedCriterion, 0, 7)

	industry := e.industryCriterion(company, criteria)
	b.Industry = industry.Points
	matched = append(matched, industry)

	region := e.regionCriterion(company, criteria)
	b.Region = region.Points
	matched = append(matched, region)

	employees := rangeCriterion(CriterionEmployeeCount, WeightEmployeeCount,
		inRange(intToFloat(company.EmployeeCount), criteria.EmployeeCount))
	b.EmployeeCount = employees.Points
	matched = append(matched, employees)

	revenue := rangeCriterion(CriterionRevenue, WeightRevenue,
		inRange(company.RevenueInWon(), criteria.Revenue))
	b.Revenue = revenue.Points
	matched = append(matched, revenue)

	age := rangeCriterion(CriterionBusinessAge, WeightBusinessAge,
		inRange(BusinessAge(company.FoundedDate, now), criteria.BusinessAge))
	b.BusinessAge = age.Points
	matched = append(matched, age)

	cert := e.certificationCriterion(company, criteria)
	b.Certification = cert.Points
	matched = append(matched, cert)

	if days, ok := DaysUntilDeadline(ann.ApplicationEnd, now); ok && days > 0 && days <= DeadlineWindowDays {
		b.Bonus = DeadlineBonus
		matched = append(matched, models.MatchedCriterion{
			Name:      CriterionDeadline,
			Matched:   true,
			Points:    DeadlineBonus,
			MaxPoints: DeadlineBonus,
			Reason:    fmt.Sprintf("D-%d", days),
		})
	}

	b.Total = b.Sum()
	return models.Outcome{Status: models.OutcomeScored, Breakdown: b, Criteria: matched}
}

func (e *Evaluator) industryCriterion(company *models.CompanyProfile, c *models.EligibilityCriteria) models.MatchedCriterion {
	included := c.Industries.Included
	if len(included) == 0 {
		return awarded(CriterionIndustry, WeightIndustry, reasonNoConstraint)
	}
	if e.taxonomy.IndustryMatches(company.Industry, included) {
		return awarded(CriterionIndustry, WeightIndustry, "업종 조건 충족")
	}
	return missed(CriterionIndustry, WeightIndustry, fmt.Sprintf("대상 업종: %s...", joinTop(included, 3)))
}

func (e *Evaluator) regionCriterion(company *models.CompanyProfile, c *models.EligibilityCriteria) models.MatchedCriterion {
	included := c.Regions.Included
	switch {
	case len(included) == 0:
		return awarded(CriterionRegion, WeightRegion, reasonNoConstraint)
	case e.taxonomy.IsNationwide(included):
		return awarded(CriterionRegion, WeightRegion, "전국 대상")
	case e.taxonomy.RegionMatches(company.Location, included):
		return awarded(CriterionRegion, WeightRegion, "지역 조건 충족")
	}
	return missed(CriterionRegion, WeightRegion, fmt.Sprintf("대상 지역: %s", joinTop(included, 3)))
}

func (e *Evaluator) certificationCriterion(company *models.CompanyProfile, c *models.EligibilityCriteria) models.MatchedCriterion {
	required := c.RequiredCertifications
	if !e.taxonomy.CertificationMatches(company.Certifications, required) {
		return missed(CriterionCertification, WeightCertification, fmt.Sprintf("필수 인증: %s", joinTop(required, 2)))
	}
	if len(required) == 0 {
		return awarded(CriterionCertification, WeightCertification, "필수 인증 없음")
	}
	return awarded(CriterionCertification, WeightCertification, "필수 인증 보유")
}

func rangeCriterion(name string, weight int, r RangeResult) models.MatchedCriterion {
	if r.Matched {
		return awarded(name, weight, r.Reason)
	}
	return missed(name, weight, r.Reason)
}

func awarded(name string, weight int, reason string) models.MatchedCriterion {
	return models.MatchedCriterion{Name: name, Matched: true, Points: weight, MaxPoints: weight, Reason: reason}
}

func missed(name string, weight int, reason string) models.MatchedCriterion {
	return models.MatchedCriterion{Name: name, Matched: false, Points: 0, MaxPoints: weight, Reason: reason}
}

func joinTop(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// BusinessAge returns the number of whole 365-day years since founded.
func BusinessAge(founded *models.Date, now time.Time) *float64 {
	if founded == nil || founded.IsZero() {
		return nil
	}
	years := math.Floor(now.Sub(founded.Time).Hours() / 24 / 365)
	return &years
}

// DaysUntilDeadline rounds the remaining time up to whole days. Past
// deadlines yield zero or a negative count.
func DaysUntilDeadline(end *models.Date, now time.Time) (int, bool) {
	if end == nil || end.IsZero() {
		return 0, false
	}
	return int(math.Ceil(float64(end.Sub(now)) / float64(day))), true
}
