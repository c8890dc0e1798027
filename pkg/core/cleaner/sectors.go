package cleaner

import (
	"regexp"
	"strings"
)

type sectorMapping struct {
	pattern   string
	canonical string
}

// sectorMappings folds the free-text sector labels seen on the boards into
// a canonical vocabulary. It is an ordered list, not a map: partial
// matching scans top to bottom and the first hit wins, so the order is part
// of the contract.
var sectorMappings = []sectorMapping{
	// Domain-specific sectors from the Skylark boards
	{"mining", "mining"},
	{"oil & gas", "oil_and_gas"},
	{"oil and gas", "oil_and_gas"},
	{"oil&gas", "oil_and_gas"},
	{"infrastructure", "infrastructure"},
	{"infra", "infrastructure"},
	{"agriculture", "agriculture"},
	{"agri", "agriculture"},
	{"forestry", "forestry"},
	{"forest", "forestry"},
	{"urban", "urban_planning"},
	{"urban planning", "urban_planning"},
	{"defence", "defence"},
	{"defense", "defence"},
	{"solar", "solar"},
	{"renewable", "renewable_energy"},
	{"renewables", "renewable_energy"},
	{"renewable energy", "renewable_energy"},
	{"water", "water"},
	{"hydro", "water"},
	{"utilities", "utilities"},
	{"telecom", "telecommunications"},
	{"telecommunications", "telecommunications"},
	{"power", "power"},
	{"railways", "railways"},
	{"railway", "railways"},
	{"road", "road"},
	{"roads", "road"},
	{"construction", "construction"},
	{"survey", "survey"},
	{"surveying", "survey"},
	{"mapping", "mapping"},
	{"gis", "gis"},
	{"geospatial", "geospatial"},
	// General sectors
	{"tech", "technology"},
	{"it", "technology"},
	{"information technology", "technology"},
	{"software", "technology"},
	{"saas", "technology"},
	{"fintech", "financial_services"},
	{"finance", "financial_services"},
	{"banking", "financial_services"},
	{"financial", "financial_services"},
	{"health", "healthcare"},
	{"medical", "healthcare"},
	{"pharma", "healthcare"},
	{"pharmaceutical", "healthcare"},
	{"biotech", "healthcare"},
	{"retail", "retail"},
	{"ecommerce", "retail"},
	{"e-commerce", "retail"},
	{"consumer", "retail"},
	{"manufacturing", "manufacturing"},
	{"industrial", "manufacturing"},
	{"real estate", "real_estate"},
	{"realestate", "real_estate"},
	{"property", "real_estate"},
	{"energy", "energy"},
	{"education", "education"},
	{"edtech", "education"},
	{"media", "media_entertainment"},
	{"entertainment", "media_entertainment"},
	{"transportation", "transportation"},
	{"logistics", "transportation"},
	{"government", "government"},
	{"public sector", "government"},
	{"nonprofit", "nonprofit"},
	{"non-profit", "nonprofit"},
	{"ngo", "nonprofit"},
}

var (
	collapseSpaces = regexp.MustCompile(`\s+`)
	nonSectorChars = regexp.MustCompile(`[^a-z0-9_\s-]`)

	// Patterns are canonicalized the same way as inputs, so "Oil & Gas"
	// and the vocabulary key "oil & gas" meet on the same form.
	canonicalMappings = buildCanonicalMappings()
	sectorByPattern   = buildSectorIndex()
)

// canonicalizeLabel reduces a label to its comparable form: lowercased,
// special characters stripped, whitespace collapsed.
func canonicalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSectorChars.ReplaceAllString(s, "")
	s = collapseSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func buildCanonicalMappings() []sectorMapping {
	out := make([]sectorMapping, len(sectorMappings))
	for i, m := range sectorMappings {
		out[i] = sectorMapping{pattern: canonicalizeLabel(m.pattern), canonical: m.canonical}
	}
	return out
}

func buildSectorIndex() map[string]string {
	idx := make(map[string]string, len(canonicalMappings))
	for _, m := range canonicalMappings {
		if _, exists := idx[m.pattern]; !exists {
			idx[m.pattern] = m.canonical
		}
	}
	return idx
}

// NormalizeSectorLabel maps a raw sector label to its canonical token. It
// is a pure function; the Cleaner memoizes it per pass keyed by the raw
// string.
//
// Lookup proceeds: exact match against the vocabulary, then a first-match
// substring scan in table order (either direction), then a fallback to the
// cleaned label itself with spaces replaced by underscores, an unmapped
// but stable token, not a failure.
func NormalizeSectorLabel(raw string) string {
	normalized := canonicalizeLabel(raw)

	if canonical, ok := sectorByPattern[normalized]; ok {
		return canonical
	}
	for _, m := range canonicalMappings {
		if strings.Contains(normalized, m.pattern) || strings.Contains(m.pattern, normalized) {
			return m.canonical
		}
	}
	return strings.ReplaceAll(normalized, " ", "_")
}
