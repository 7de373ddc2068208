package enrich

import (
	"regexp"
	"strings"
	"unicode"

	"cotflow/internal/models"
)

// Engine derives friendly name, sector, exchange and short code from raw
// asset identifiers. The rule tables are plain data so new categories can
// be added without touching the matching logic.
type Engine struct {
	nameRules   []NameRule
	sectorRules []SectorRule
}

// NewEngine builds an engine from the given rule tables. Nil tables fall
// back to the built-in defaults.
func NewEngine(nameRules []NameRule, sectorRules []SectorRule) *Engine {
	if nameRules == nil {
		nameRules = DefaultNameRules
	}
	if sectorRules == nil {
		sectorRules = DefaultSectorRules
	}
	return &Engine{nameRules: nameRules, sectorRules: sectorRules}
}

var shortCodeRe = regexp.MustCompile(`\(([^)]+)\)`)

// exchangeDelimiter is the fixed separator between the asset name and the
// exchange of origin. The split happens on its last occurrence: exchange
// suffixes like "CME (GC)" never contain it, asset names sometimes do.
const exchangeDelimiter = " - "

// Enrich resolves all derived attributes for one raw identifier. The raw
// identifier itself is never modified; every output is a new value.
func (e *Engine) Enrich(assetIdentifier string) models.Enrichment {
	cleaned, exchange := splitExchange(assetIdentifier)
	friendly := e.friendlyName(assetIdentifier, cleaned)

	return models.Enrichment{
		FriendlyName: friendly,
		Sector:       e.sector(friendly),
		Exchange:     exchange,
		ShortCode:    shortCode(assetIdentifier),
	}
}

// shortCode extracts the text inside the first parenthetical group.
func shortCode(identifier string) string {
	m := shortCodeRe.FindStringSubmatch(identifier)
	if m == nil {
		return ShortCodeNA
	}
	return strings.TrimSpace(m[1])
}

// splitExchange separates the cleaned asset name from the exchange suffix
// on the last " - " occurrence.
func splitExchange(identifier string) (cleaned, exchange string) {
	idx := strings.LastIndex(identifier, exchangeDelimiter)
	if idx < 0 {
		return strings.TrimSpace(identifier), ExchangeOther
	}
	return strings.TrimSpace(identifier[:idx]), strings.TrimSpace(identifier[idx+len(exchangeDelimiter):])
}

func (e *Engine) friendlyName(identifier, cleaned string) string {
	upper := strings.ToUpper(identifier)
	for _, rule := range e.nameRules {
		if strings.Contains(upper, strings.ToUpper(rule.Keyword)) {
			return rule.Label
		}
	}
	return genericName(cleaned)
}

func (e *Engine) sector(friendlyName string) string {
	upper := strings.ToUpper(friendlyName)
	for _, rule := range e.sectorRules {
		if strings.Contains(upper, strings.ToUpper(rule.Keyword)) {
			return rule.Sector
		}
	}
	return SectorOther
}

// genericName is the fallback transform for identifiers no rule knows:
// drop everything after the first parenthetical, title-case the rest.
func genericName(cleaned string) string {
	if idx := strings.Index(cleaned, "("); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return titleCase(strings.TrimSpace(cleaned))
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && !prevLetter {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r) || r == '\''
	}
	return b.String()
}
