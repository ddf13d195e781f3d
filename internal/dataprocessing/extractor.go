package dataprocessing

import (
	"time"

	"rankpulse/pkg/contracts/domain"
)

// ExtractSnapshot turns a raw table into a Snapshot of top-10 keyword rows
// using a mapping built by ResolveColumns. Rows keep their filtered order.
// When date is non-nil every row is stamped with it.
func ExtractSnapshot(raw *domain.RawTable, mapping domain.ColumnMapping, date *time.Time) (*domain.Snapshot, error) {
	idx := func(field domain.CanonicalField) int {
		col, ok := mapping.Column(field)
		if !ok {
			return -1
		}
		return raw.ColumnIndex(col)
	}

	kwCol := idx(domain.FieldKeyword)
	posCol := idx(domain.FieldPosition)
	if kwCol == -1 || posCol == -1 {
		var missing []domain.CanonicalField
		if posCol == -1 {
			missing = append(missing, domain.FieldPosition)
		}
		if kwCol == -1 {
			missing = append(missing, domain.FieldKeyword)
		}
		return nil, &SchemaResolutionError{Source: raw.Name, Missing: missing, Available: raw.Headers}
	}
	imprCol := idx(domain.FieldImpressions)
	clicksCol := idx(domain.FieldClicks)
	ctrCol := idx(domain.FieldCTR)

	cols := domain.SnapshotColumns{
		HasImpressions:        imprCol != -1,
		HasClicks:             clicksCol != -1,
		HasCTR:                ctrCol != -1,
		ImpressionsFromClicks: mapping.ImpressionsFromClicks && imprCol != -1,
	}

	extras := passThroughColumns(raw, mapping)

	// 1. position filter
	var kept []int
	for i := range raw.Rows {
		pos, ok := parseNumber(raw.Cell(i, posCol))
		if !ok || pos < domain.MinPosition || pos > domain.MaxPosition {
			continue
		}
		if raw.Cell(i, kwCol) == "" {
			continue
		}
		kept = append(kept, i)
	}
	if len(kept) == 0 {
		return nil, &EmptySnapshotError{Source: raw.Name, Rows: raw.Len()}
	}

	snap := &domain.Snapshot{
		Source:       raw.Name,
		Date:         date,
		Mapping:      mapping,
		ExtraColumns: extras,
		Rows:         make([]domain.KeywordRow, 0, len(kept)),
	}

	for _, i := range kept {
		pos, _ := parseNumber(raw.Cell(i, posCol))
		row := domain.KeywordRow{
			Keyword:  raw.Cell(i, kwCol),
			Position: pos,
			Date:     date,
			Source:   raw.Name,
		}
		if imprCol != -1 {
			row.Impressions = parseCount(raw.Cell(i, imprCol))
		}
		if clicksCol != -1 {
			row.Clicks = parseCount(raw.Cell(i, clicksCol))
		}
		if ctrCol != -1 {
			cell := raw.Cell(i, ctrCol)
			row.CTR, _ = parseNumber(cell)
			if hasPercentSign(cell) {
				cols.CTRPercentText = true
			}
		}
		for _, name := range extras {
			if v, ok := parseNumber(raw.Cell(i, raw.ColumnIndex(name))); ok {
				if row.Extra == nil {
					row.Extra = make(map[string]float64, len(extras))
				}
				row.Extra[name] = v
			}
		}
		snap.Rows = append(snap.Rows, row)
	}

	// 2. derive CTR from real clicks and impressions
	if !cols.HasCTR && cols.HasClicks && cols.HasImpressions && !cols.ImpressionsFromClicks {
		DeriveCTR(snap.Rows)
		cols.HasCTR = true
		cols.CTRDerived = true
	}

	// 3. fractions to percentages; derived values and "0.5%" text are
	// already percentages
	if cols.HasCTR && !cols.CTRDerived && !cols.CTRPercentText {
		cols.CTRRescaled = RescaleCTR(snap.Rows)
	}

	snap.Columns = cols
	return snap, nil
}

// DeriveCTR sets CTR = round(clicks / impressions * 100, 2) on every row.
// Rows without impressions get a CTR of zero.
func DeriveCTR(rows []domain.KeywordRow) {
	for i := range rows {
		if rows[i].Impressions > 0 {
			rows[i].CTR = round2(float64(rows[i].Clicks) / float64(rows[i].Impressions) * 100)
		} else {
			rows[i].CTR = 0
		}
	}
}

// RescaleCTR converts a fraction-encoded CTR column to percentages when the
// largest value is at most 1, and reports whether it did. An all-zero column
// is "rescaled" to zeros, which leaves it unchanged.
func RescaleCTR(rows []domain.KeywordRow) bool {
	if len(rows) == 0 {
		return false
	}
	maxCTR := rows[0].CTR
	for _, r := range rows[1:] {
		if r.CTR > maxCTR {
			maxCTR = r.CTR
		}
	}
	if maxCTR > 1 {
		return false
	}
	for i := range rows {
		rows[i].CTR = round2(rows[i].CTR * 100)
	}
	return true
}

// passThroughColumns returns the unmapped headers whose non-empty cells are
// all numeric, in header order.
func passThroughColumns(raw *domain.RawTable, mapping domain.ColumnMapping) []string {
	var extras []string
	for col, header := range raw.Headers {
		if mapping.IsMapped(header) {
			continue
		}
		numeric, seen := true, false
		for i := range raw.Rows {
			cell := raw.Cell(i, col)
			if cell == "" {
				continue
			}
			seen = true
			if _, ok := parseNumber(cell); !ok {
				numeric = false
				break
			}
		}
		if numeric && seen {
			extras = append(extras, header)
		}
	}
	return extras
}
