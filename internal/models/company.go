// internal/models/company.go
package models

// Industry codes understood by the taxonomy.
const (
	IndustrySoftware      = "software"
	IndustryAI            = "ai"
	IndustryBiotech       = "biotech"
	IndustryManufacturing = "manufacturing"
	IndustryCommerce      = "commerce"
	IndustryFintech       = "fintech"
	IndustryContents      = "contents"
	IndustryEducation     = "education"
	IndustryEnergy        = "energy"
	IndustryOther         = "other"
)

// Certification codes understood by the taxonomy.
const (
	CertVenture           = "venture"
	CertInnobiz           = "innobiz"
	CertMainbiz           = "mainbiz"
	CertWomanEnterprise   = "womanEnterprise"
	CertSocialEnterprise  = "socialEnterprise"
	CertResearchInstitute = "researchInstitute"
)

// CompanyProfile is the read-only company data used for matching.
//
// AnnualRevenue is expressed in units of 10,000 KRW and is scaled before it
// is compared with announcement criteria, which use raw KRW. A nil field
// means the company has not provided the value.
type CompanyProfile struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name,omitempty"`
	Industry       *string  `json:"industry" validate:"omitempty,min=1"`
	Location       *string  `json:"location" validate:"omitempty,min=1"`
	EmployeeCount  *int     `json:"employeeCount" validate:"omitempty,min=0"`
	AnnualRevenue  *float64 `json:"annualRevenue" validate:"omitempty,min=0"`
	FoundedDate    *Date    `json:"foundedDate"`
	Certifications []string `json:"certifications" validate:"omitempty,dive,min=1"`
}

// RevenueInWon returns the annual revenue in KRW. A zero revenue is stored by
// the application when the field was left blank, so it is reported as unknown.
func (c *CompanyProfile) RevenueInWon() *float64 {
	if c.AnnualRevenue == nil || *c.AnnualRevenue <= 0 {
		return nil
	}
	won := *c.AnnualRevenue * 10000
	return &won
}
