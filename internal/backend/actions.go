// ABOUTME: Built-in model actions: delete, batch delete, count and spreadsheet export.
// ABOUTME: Also ranks select options for a field by edit distance to the query.

package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/xuri/excelize/v2"

	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

const (
	selectCandidates = 500
	selectLimit      = 20
	exportSheet      = "Sheet1"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *modelHandlers) deleteOne(ctx context.Context, pk string, params panel.Params) (any, error) {
	n, err := h.store().DeleteRecords(ctx, h.name, pk)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrRecordNotFound, h.name, pk)
	}
	return map[string]any{"deleted": n}, nil
}

func (h *modelHandlers) deleteMany(ctx context.Context, pks []string, params panel.Params) (any, error) {
	n, err := h.store().DeleteRecords(ctx, h.name, pks...)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": n}, nil
}

func (h *modelHandlers) count(ctx context.Context, params panel.Params) (any, error) {
	n, err := h.store().CountRecords(ctx, h.name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": n}, nil
}

// export writes every record matching the current search into an xlsx
// workbook with one column per list column, returned base64 encoded.
func (h *modelHandlers) export(ctx context.Context, params panel.Params) (any, error) {
	page, err := h.store().ListRecords(ctx, h.name, store.RecordQuery{
		Search:       searchTerm(params),
		SearchFields: h.def.Searchable,
	})
	if err != nil {
		return nil, err
	}

	columns := append([]string{"id"}, h.def.ListColumns()...)
	columns = append(columns, "created_at")

	f := excelize.NewFile()
	defer f.Close()

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, col); err != nil {
			return nil, fmt.Errorf("write export header: %w", err)
		}
	}
	for r, rec := range page.Records {
		row := rec.Flatten()
		for i, col := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, row[col]); err != nil {
				return nil, fmt.Errorf("write export row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	return map[string]any{
		"filename":     fmt.Sprintf("%s-%s.xlsx", h.name, time.Now().UTC().Format("20060102-150405")),
		"content_type": xlsxContentType,
		"rows":         len(page.Records),
		"content":      base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// SelectOption is one entry of a select query result
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// querySelect returns distinct values of field, values containing the query
// first, then by edit distance to it
func (h *modelHandlers) querySelect(ctx context.Context, field, query string) (any, error) {
	if !contains(h.def.FieldNames(), field) {
		return nil, &FieldError{Field: field, Reason: "unknown field"}
	}

	values, err := h.store().DistinctValues(ctx, h.name, field, selectCandidates)
	if err != nil {
		return nil, err
	}

	ranked := rankOptions(values, query)
	if len(ranked) > selectLimit {
		ranked = ranked[:selectLimit]
	}

	options := make([]SelectOption, 0, len(ranked))
	for _, v := range ranked {
		options = append(options, SelectOption{Value: v, Label: v})
	}
	return options, nil
}

func rankOptions(values []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	type scored struct {
		value    string
		contains bool
		distance int
	}

	items := make([]scored, 0, len(values))
	for _, v := range values {
		lower := strings.ToLower(v)
		items = append(items, scored{
			value:    v,
			contains: q == "" || strings.Contains(lower, q),
			distance: levenshtein.ComputeDistance(lower, q),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.contains != b.contains {
			return a.contains
		}
		if q != "" && a.distance != b.distance {
			return a.distance < b.distance
		}
		return a.value < b.value
	})

	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.value)
	}
	return out
}
