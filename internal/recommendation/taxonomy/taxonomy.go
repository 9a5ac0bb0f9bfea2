// internal/recommendation/taxonomy/taxonomy.go
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTable []byte

// Entry is one code in a keyword table.
type Entry struct {
	Label       string   `yaml:"label"`
	Keywords    []string `yaml:"keywords"`
	CapitalArea bool     `yaml:"capital_area"`
}

// Table is the on-disk shape of a taxonomy resource.
type Table struct {
	Nationwide          []string         `yaml:"nationwide"`
	CapitalAreaKeywords []string         `yaml:"capital_area_keywords"`
	Industries          map[string]Entry `yaml:"industries"`
	Regions             map[string]Entry `yaml:"regions"`
	Certifications      map[string]Entry `yaml:"certifications"`
}

type entry struct {
	label       string
	keywords    []string // lowercased
	capitalArea bool
}

// Taxonomy maps internal company codes to the free-text vocabulary found in
// announcement eligibility data. It is immutable once built and safe for
// concurrent use.
type Taxonomy struct {
	industries     map[string]entry
	regions        map[string]entry
	regionCodes    []string
	certifications map[string]entry
	nationwide     []string
	capitalArea    []string
}

// Default returns the taxonomy compiled into the binary.
func Default() *Taxonomy {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Load reads a taxonomy resource from path. An empty path yields Default.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML taxonomy resource.
func Parse(data []byte) (*Taxonomy, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	return New(table)
}

// New builds a Taxonomy from a table. The table is copied.
func New(table Table) (*Taxonomy, error) {
	if len(table.Industries) == 0 || len(table.Regions) == 0 {
		return nil, fmt.Errorf("taxonomy requires industries and regions")
	}

	t := &Taxonomy{
		industries:     compile(table.Industries),
		regions:        compile(table.Regions),
		certifications: compile(table.Certifications),
		nationwide:     lowerAll(table.Nationwide),
		capitalArea:    lowerAll(table.CapitalAreaKeywords),
	}
	for code := range t.regions {
		t.regionCodes = append(t.regionCodes, code)
	}
	sort.Strings(t.regionCodes)
	return t, nil
}

func compile(src map[string]Entry) map[string]entry {
	out := make(map[string]entry, len(src))
	for code, e := range src {
		out[code] = entry{
			label:       e.Label,
			keywords:    lowerAll(e.Keywords),
			capitalArea: e.CapitalArea,
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IndustryLabel returns the display label for an industry code, or the code
// itself when unknown.
func (t *Taxonomy) IndustryLabel(code string) string {
	if e, ok := t.industries[code]; ok && e.label != "" {
		return e.label
	}
	return code
}

// RegionLabel returns the display label for a region code, or the code itself.
func (t *Taxonomy) RegionLabel(code string) string {
	if e, ok := t.regions[code]; ok && e.label != "" {
		return e.label
	}
	return code
}

// CertificationLabel returns the display label for a certification code.
func (t *Taxonomy) CertificationLabel(code string) string {
	if e, ok := t.certifications[code]; ok && e.label != "" {
		return e.label
	}
	return code
}

// ResolveRegion maps a region code or free-text location ("서울특별시 강남구")
// to a region code. When several regions appear in the text, the one
// mentioned first wins, so "경기도 광주시" resolves to gyeonggi.
func (t *Taxonomy) ResolveRegion(location string) (string, bool) {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return "", false
	}
	if _, ok := t.regions[loc]; ok {
		return loc, true
	}

	best, bestPos, bestLen := "", -1, 0
	for _, code := range t.regionCodes {
		for _, kw := range t.regions[code].keywords {
			pos := strings.Index(loc, kw)
			if pos < 0 {
				continue
			}
			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(kw) > bestLen) {
				best, bestPos, bestLen = code, pos, len(kw)
			}
		}
	}
	return best, bestPos >= 0
}

func (t *Taxonomy) industryKeywords(code string) []string {
	if e, ok := t.industries[code]; ok {
		return e.keywords
	}
	return lowerAll([]string{code})
}

func (t *Taxonomy) certificationKeywords(code string) []string {
	if e, ok := t.certifications[code]; ok {
		return e.keywords
	}
	return lowerAll([]string{code})
}

func (t *Taxonomy) regionKeywords(location string) []string {
	if code, ok := t.ResolveRegion(location); ok {
		return t.regions[code].keywords
	}
	return lowerAll([]string{location})
}

func (t *Taxonomy) inCapitalArea(location string) bool {
	code, ok := t.ResolveRegion(location)
	return ok && t.regions[code].capitalArea
}
