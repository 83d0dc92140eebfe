// ABOUTME: Model handlers backed by the record store.
// ABOUTME: List follows the DataTables server-side protocol; writes are checked against field rules.

package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

// buildModel creates a fresh ModelConfig from the active definition.
// It returns nil once the model has been removed from the definition.
func (b *Backend) buildModel(name string) *panel.ModelConfig {
	def, ok := b.modelDef(name)
	if !ok {
		return nil
	}

	component := def.Component
	if component == "" {
		component = defaultModelComponent
	}

	cfg := make(map[string]any, len(def.Config)+3)
	for k, v := range def.Config {
		cfg[k] = v
	}
	cfg["fields"] = fieldDescriptors(def.Fields)
	cfg["columns"] = def.ListColumns()
	cfg["searchable"] = def.Searchable

	h := &modelHandlers{backend: b, name: name, def: def}
	m := &panel.ModelConfig{
		Component:   component,
		Config:      cfg,
		Settings:    def.Settings,
		List:        h.list,
		Get:         h.get,
		Create:      h.create,
		Update:      h.update,
		QuerySelect: h.querySelect,
	}

	for _, action := range def.RecordActions() {
		switch action {
		case definition.ActionDelete:
			m.HandleAction(action, h.deleteOne)
		}
	}
	for _, action := range def.ModelActions() {
		switch action {
		case definition.ActionCount:
			m.HandleGlobalAction(action, h.count)
		case definition.ActionExport:
			m.HandleGlobalAction(action, h.export)
		}
	}
	for _, action := range def.ListActions() {
		switch action {
		case definition.ActionDelete:
			m.HandleBatchAction(action, h.deleteMany)
		}
	}

	return m
}

func fieldDescriptors(fields []definition.Field) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		d := map[string]any{
			"name":     f.Name,
			"label":    label,
			"type":     f.Type,
			"required": f.Required,
		}
		if len(f.Options) > 0 {
			d["options"] = f.Options
		}
		out = append(out, d)
	}
	return out
}

// modelHandlers serves one model from a snapshot of its definition
type modelHandlers struct {
	backend *Backend
	name    string
	def     definition.Model
}

func (h *modelHandlers) store() *store.Store {
	return h.backend.store
}

// list answers a DataTables server-side request. Both the flat form
// (search=..., order=-title) and the bracketed form DataTables sends
// (search[value]=..., order[0][column]=1, order[0][dir]=desc) are accepted.
func (h *modelHandlers) list(ctx context.Context, params panel.Params) (any, error) {
	q := store.RecordQuery{
		Offset:       paramInt(params, "start", 0),
		Limit:        paramInt(params, "length", 0),
		Search:       searchTerm(params),
		SearchFields: h.def.Searchable,
	}
	q.OrderBy, q.Desc = h.ordering(params)
	if q.Offset < 0 {
		q.Offset = 0
	}

	page, err := h.store().ListRecords(ctx, h.name, q)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(page.Records))
	for _, rec := range page.Records {
		rows = append(rows, rec.Flatten())
	}
	return map[string]any{
		"data":            rows,
		"recordsTotal":    page.Total,
		"recordsFiltered": page.Filtered,
	}, nil
}

func searchTerm(params panel.Params) string {
	switch v := params["search"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(paramString(params, "search[value]"))
}

// ordering returns the column to sort by and whether the sort is descending.
// Only list columns and record timestamps are sortable.
func (h *modelHandlers) ordering(params panel.Params) (string, bool) {
	field := paramString(params, "order")
	desc := false
	if strings.HasPrefix(field, "-") {
		field, desc = field[1:], true
	}

	if field == "" {
		if idx, ok := params["order[0][column]"]; ok {
			cols := h.def.ListColumns()
			i := toInt(idx, -1)
			if i >= 0 && i < len(cols) {
				field = cols[i]
			}
			desc = strings.EqualFold(paramString(params, "order[0][dir]"), "desc")
		}
	}

	if field == "" || !h.sortable(field) {
		return "", desc
	}
	return field, desc
}

func (h *modelHandlers) sortable(field string) bool {
	if field == "created_at" || field == "updated_at" {
		return true
	}
	for _, col := range h.def.ListColumns() {
		if col == field {
			return true
		}
	}
	return false
}

func (h *modelHandlers) get(ctx context.Context, pk string) (any, error) {
	rec, err := h.store().GetRecord(ctx, h.name, pk)
	if err != nil {
		return nil, err
	}
	return rec.Flatten(), nil
}

func (h *modelHandlers) create(ctx context.Context, attrs panel.Params) (any, error) {
	data, err := h.clean(attrs, true)
	if err != nil {
		return nil, err
	}
	rec, err := h.store().CreateRecord(ctx, h.name, data)
	if err != nil {
		return nil, err
	}
	return rec.Flatten(), nil
}

func (h *modelHandlers) update(ctx context.Context, pk string, attrs panel.Params) (any, error) {
	data, err := h.clean(attrs, false)
	if err != nil {
		return nil, err
	}
	rec, err := h.store().UpdateRecord(ctx, h.name, pk, data)
	if err != nil {
		return nil, err
	}
	return rec.Flatten(), nil
}

// clean keeps declared fields only and enforces required and option rules.
// Required fields are only checked for presence on create.
func (h *modelHandlers) clean(attrs panel.Params, creating bool) (map[string]any, error) {
	data := make(map[string]any, len(h.def.Fields))
	for _, f := range h.def.Fields {
		v, present := attrs[f.Name]
		if f.Required && (creating || present) && isBlank(v) {
			return nil, &FieldError{Field: f.Name, Reason: "is required"}
		}
		if !present {
			continue
		}
		if len(f.Options) > 0 && !isBlank(v) && !contains(f.Options, fmt.Sprint(v)) {
			return nil, &FieldError{Field: f.Name, Reason: fmt.Sprintf("must be one of %s", strings.Join(f.Options, ", "))}
		}
		data[f.Name] = v
	}
	return data, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func paramString(params panel.Params, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func paramInt(params panel.Params, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	return toInt(v, fallback)
}

func toInt(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return fallback
}
