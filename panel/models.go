// ABOUTME: Model lookup, model page descriptors and CRUD/action dispatch.
// ABOUTME: Dispatch adds only the not-found and unknown-action guards around host handlers.

package panel

import (
	"context"
	"encoding/json"
	"fmt"
)

// ModelConfig returns the model registered under name.
// Lazy models are produced again on every call.
func (r *Resolver) ModelConfig(name string) (*ModelConfig, bool) {
	v, ok := r.config.Models[name]
	if !ok || !v.IsSet() {
		return nil, false
	}
	m := v.Resolve()
	if m == nil {
		return nil, false
	}
	return m, true
}

// ModelPageConfig builds the {component, config} descriptor for a model page.
// Declared settings are replaced by their resolved definitions and
// config.model is set to name. Registered action names are listed under
// config.actions, config.globalActions and config.batchActions unless the
// model's own Config already sets those keys.
func (r *Resolver) ModelPageConfig(name string) (Page, bool) {
	m, ok := r.ModelConfig(name)
	if !ok {
		return Page{}, false
	}
	return r.modelPage(name, m), true
}

func (r *Resolver) modelPage(name string, m *ModelConfig) Page {
	cfg := copyMap(m.Config)
	if names := settingNames(m); len(names) > 0 {
		cfg["settings"] = r.config.Settings.Resolve(names)
	}
	setActionNames(cfg, "actions", &m.Actions)
	setActionNames(cfg, "globalActions", &m.GlobalActions)
	setActionNames(cfg, "batchActions", &m.BatchActions)
	cfg["model"] = name
	return Page{Component: m.Component, Config: cfg}
}

func setActionNames[F any](cfg map[string]any, key string, t *HandlerTable[F]) {
	if _, set := cfg[key]; set || t.Len() == 0 {
		return
	}
	cfg[key] = t.Names()
}

// settingNames prefers the typed Settings field and falls back to a
// "settings" list inside Config.
func settingNames(m *ModelConfig) []string {
	if len(m.Settings) > 0 {
		return m.Settings
	}
	switch v := m.Config["settings"].(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

func (r *Resolver) lookupModel(name string) (*ModelConfig, error) {
	m, ok := r.ModelConfig(name)
	if !ok {
		return nil, modelNotFound(name)
	}
	return m, nil
}

// ListModel calls the model's list handler, normalizes the result to a plain
// object and echoes params["draw"] into it.
func (r *Resolver) ListModel(ctx context.Context, model string, params Params) (map[string]any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	if m.List == nil {
		return nil, noHandler(model, "list")
	}

	result, err := m.List(ctx, params)
	if err != nil {
		return nil, err
	}

	out, err := normalizeResult(result)
	if err != nil {
		return nil, fmt.Errorf("normalize list result for %s: %w", model, err)
	}
	out["draw"] = params["draw"]
	return out, nil
}

// normalizeResult projects a handler result onto a JSON-style object.
// Results that are not objects end up under "data".
func normalizeResult(result any) (map[string]any, error) {
	switch v := result.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return copyMap(v), nil
	case Params:
		return copyMap(v), nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return obj, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return map[string]any{"data": data}, nil
}

// GetModel fetches one record
func (r *Resolver) GetModel(ctx context.Context, model, pk string) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	if m.Get == nil {
		return nil, noHandler(model, "get")
	}
	return m.Get(ctx, pk)
}

// CreateModel creates a record from attrs
func (r *Resolver) CreateModel(ctx context.Context, model string, attrs Params) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	if m.Create == nil {
		return nil, noHandler(model, "create")
	}
	return m.Create(ctx, attrs)
}

// UpdateModel updates the record identified by pk
func (r *Resolver) UpdateModel(ctx context.Context, model, pk string, attrs Params) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	if m.Update == nil {
		return nil, noHandler(model, "update")
	}
	return m.Update(ctx, pk, attrs)
}

// ActionModel runs a per-record action
func (r *Resolver) ActionModel(ctx context.Context, model, action, pk string, params Params) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	fn, ok := m.Actions.Lookup(action)
	if !ok {
		return nil, &UnknownActionError{Kind: ActionRecord, Model: model, Action: action}
	}
	return fn(ctx, pk, params)
}

// GlobalActionModel runs a model-wide action
func (r *Resolver) GlobalActionModel(ctx context.Context, model, action string, params Params) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	fn, ok := m.GlobalActions.Lookup(action)
	if !ok {
		return nil, &UnknownActionError{Kind: ActionGlobal, Model: model, Action: action}
	}
	return fn(ctx, params)
}

// BatchActionModel runs an action over several records
func (r *Resolver) BatchActionModel(ctx context.Context, model, action string, pks []string, params Params) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	fn, ok := m.BatchActions.Lookup(action)
	if !ok {
		return nil, &UnknownActionError{Kind: ActionBatch, Model: model, Action: action}
	}
	return fn(ctx, pks, params)
}

// QueryModelSelect asks the model for select options on field matching query
func (r *Resolver) QueryModelSelect(ctx context.Context, model, field, query string) (any, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	if m.QuerySelect == nil {
		return nil, noHandler(model, "select query")
	}
	return m.QuerySelect(ctx, field, query)
}
