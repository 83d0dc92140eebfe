// ABOUTME: Setting resolution and delegation to host settings storage.
// ABOUTME: Model settings are filtered through the model's declared setting list.

package panel

import "context"

// Settings reads setting values through the host GetSettings callback
func (r *Resolver) Settings(ctx context.Context, names []string) (any, error) {
	if r.config.GetSettings == nil {
		return nil, noHandler("", "get settings")
	}
	return r.config.GetSettings(ctx, names, r.config.Settings)
}

// UpdateSettings writes setting values through the host UpdateSettings callback
func (r *Resolver) UpdateSettings(ctx context.Context, values map[string]any) (any, error) {
	if r.config.UpdateSettings == nil {
		return nil, noHandler("", "update settings")
	}
	return r.config.UpdateSettings(ctx, values, r.config.Settings)
}

// ModelSettings reads the values of the settings shown on a model page
func (r *Resolver) ModelSettings(ctx context.Context, model string) (any, error) {
	names, err := r.modelSettingNames(model)
	if err != nil {
		return nil, err
	}
	return r.Settings(ctx, names)
}

// SetModelSettings writes values for a model page. Keys the model does not
// declare are dropped before reaching the host.
func (r *Resolver) SetModelSettings(ctx context.Context, model string, values map[string]any) (any, error) {
	names, err := r.modelSettingNames(model)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := values[name]; ok {
			allowed[name] = v
		}
	}
	return r.UpdateSettings(ctx, allowed)
}

// modelSettingNames returns the names of the model's resolvable settings, in order
func (r *Resolver) modelSettingNames(model string) ([]string, error) {
	m, err := r.lookupModel(model)
	if err != nil {
		return nil, err
	}
	defs := r.config.Settings.Resolve(settingNames(m))
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		if name, ok := def["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
