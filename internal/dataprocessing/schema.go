package dataprocessing

import (
	"strings"

	"rankpulse/pkg/contracts/domain"
)

// columnRule matches a normalised header to one canonical field
type columnRule struct {
	field    domain.CanonicalField
	keywords []string
}

// columnRules are evaluated in order and the first matching rule claims the
// header, so a header never maps to two fields. Metric rules come before the
// keyword rule: "Click-through rate query" is a CTR column.
var columnRules = []columnRule{
	{field: domain.FieldPosition, keywords: []string{"position"}},
	{field: domain.FieldImpressions, keywords: []string{"impressions"}},
	{field: domain.FieldClicks, keywords: []string{"clicks"}},
	{field: domain.FieldCTR, keywords: []string{"ctr", "click-through rate"}},
	{field: domain.FieldKeyword, keywords: []string{
		"query", "queries", "keyword", "keywords", "search query", "top query", "top queries",
	}},
}

// normalizeHeader lower-cases and trims a header, dropping a UTF-8 BOM left
// over from CSV round trips.
func normalizeHeader(header string) string {
	h := strings.TrimPrefix(header, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// matchField returns the canonical field claimed by header.
func matchField(header string) (domain.CanonicalField, bool) {
	h := normalizeHeader(header)
	if h == "" {
		return "", false
	}
	for _, rule := range columnRules {
		for _, kw := range rule.keywords {
			if strings.Contains(h, kw) {
				return rule.field, true
			}
		}
	}
	return "", false
}

// ResolveColumns maps raw headers onto the canonical schema. When several
// headers match the same field the last one wins. Position and Keyword are
// mandatory; without an impressions header the clicks header is used as the
// volume signal.
func ResolveColumns(headers []string) (domain.ColumnMapping, error) {
	mapping := domain.ColumnMapping{Columns: make(map[domain.CanonicalField]string)}

	for _, header := range headers {
		if field, ok := matchField(header); ok {
			mapping.Columns[field] = header
		}
	}

	var missing []domain.CanonicalField
	if !mapping.Has(domain.FieldPosition) {
		missing = append(missing, domain.FieldPosition)
	}
	if !mapping.Has(domain.FieldKeyword) {
		missing = append(missing, domain.FieldKeyword)
	}
	if len(missing) > 0 {
		available := make([]string, len(headers))
		copy(available, headers)
		return mapping, &SchemaResolutionError{Missing: missing, Available: available}
	}

	if !mapping.Has(domain.FieldImpressions) {
		if clicks, ok := mapping.Column(domain.FieldClicks); ok {
			mapping.Columns[domain.FieldImpressions] = clicks
			mapping.ImpressionsFromClicks = true
		}
	}

	return mapping, nil
}
