// internal/recommendation/taxonomy/match.go
package taxonomy

import "strings"

// IndustryMatches reports whether the company industry fits the announcement
// industries. A nil code or an empty list always matches.
func (t *Taxonomy) IndustryMatches(code *string, industries []string) bool {
	if isBlank(code) || len(industries) == 0 {
		return true
	}
	return anyOverlap(t.industryKeywords(*code), industries)
}

// IndustryExcluded reports whether an excluded entry names the company
// industry. Missing company data never excludes.
func (t *Taxonomy) IndustryExcluded(code *string, excluded []string) bool {
	if isBlank(code) || len(excluded) == 0 {
		return false
	}
	return anyContained(t.industryKeywords(*code), excluded)
}

// IsNationwide reports whether the included region list targets the whole country.
func (t *Taxonomy) IsNationwide(included []string) bool {
	return anyContained(t.nationwide, included)
}

// RegionMatches reports whether the company location fits the included
// regions. Nationwide lists match any location, and a capital-area entry
// (수도권) matches companies in Seoul, Gyeonggi or Incheon.
func (t *Taxonomy) RegionMatches(location *string, included []string) bool {
	if isBlank(location) || len(included) == 0 {
		return true
	}
	if t.IsNationwide(included) {
		return true
	}
	if anyContained(t.capitalArea, included) && t.inCapitalArea(*location) {
		return true
	}
	return anyOverlap(t.regionKeywords(*location), included)
}

// RegionExcluded reports whether an excluded entry names the company region.
func (t *Taxonomy) RegionExcluded(location *string, excluded []string) bool {
	if isBlank(location) || len(excluded) == 0 {
		return false
	}
	return anyContained(t.regionKeywords(*location), excluded)
}

// CertificationMatches reports whether the company holds at least one of the
// required certifications. No requirement always matches; a requirement
// against a company without certifications never does.
func (t *Taxonomy) CertificationMatches(certs []string, required []string) bool {
	if len(nonBlank(required)) == 0 {
		return true
	}
	if len(certs) == 0 {
		return false
	}
	for _, cert := range certs {
		if anyOverlap(t.certificationKeywords(cert), required) {
			return true
		}
	}
	return false
}

// anyOverlap is the bidirectional case-insensitive substring test.
func anyOverlap(keywords []string, entries []string) bool {
	for _, raw := range entries {
		e := strings.ToLower(strings.TrimSpace(raw))
		if e == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(e, kw) || strings.Contains(kw, e) {
				return true
			}
		}
	}
	return false
}

// anyContained reports whether some entry contains some keyword.
func anyContained(keywords []string, entries []string) bool {
	for _, raw := range entries {
		e := strings.ToLower(raw)
		for _, kw := range keywords {
			if strings.Contains(e, kw) {
				return true
			}
		}
	}
	return false
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func nonBlank(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
