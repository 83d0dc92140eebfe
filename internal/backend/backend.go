// ABOUTME: Binds a panel definition and the sqlite store into a panel config.
// ABOUTME: Supplies menus, lazily built models, widgets and stored settings.

package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

const defaultModelComponent = "ModelTable"

// FieldError reports an attribute that failed a definition rule
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Backend serves panel models from the record store
type Backend struct {
	store *store.Store

	mu  sync.RWMutex
	def *definition.Definition

	resolver atomic.Pointer[panel.Resolver]
}

func New(s *store.Store, def *definition.Definition) *Backend {
	b := &Backend{store: s, def: def}
	b.resolver.Store(panel.New(b.Config()))
	return b
}

// Resolver returns the resolver built from the active definition
func (b *Backend) Resolver() *panel.Resolver {
	return b.resolver.Load()
}

// Definition returns the active definition
func (b *Backend) Definition() *definition.Definition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.def
}

// SetDefinition swaps the active definition and replaces the resolver with
// one built from it. Requests already holding the old resolver finish on it.
func (b *Backend) SetDefinition(def *definition.Definition) {
	b.mu.Lock()
	b.def = def
	b.mu.Unlock()
	b.resolver.Store(panel.New(b.Config()))
}

func (b *Backend) modelDef(name string) (definition.Model, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.def.Models[name]
	return m, ok
}

// Config builds the panel configuration served by a Resolver
func (b *Backend) Config() *panel.Config {
	def := b.Definition()

	cfg := &panel.Config{
		Menus:          menuNodes(def.Menus),
		Models:         make(map[string]panel.Value[*panel.ModelConfig], len(def.Models)),
		Widgets:        make(map[string]*panel.WidgetConfig, len(def.Widgets)),
		Settings:       make(panel.SettingDefs, len(def.Settings)),
		GetSettings:    b.getSettings,
		UpdateSettings: b.updateSettings,
	}

	for name := range def.Models {
		cfg.Models[name] = panel.Lazy(func() *panel.ModelConfig {
			return b.buildModel(name)
		})
	}
	for name, w := range def.Widgets {
		cfg.Widgets[name] = b.widget(w)
	}
	for name, attrs := range def.Settings {
		cfg.Settings[name] = panel.Literal(panel.SettingDef(attrs))
	}

	return cfg
}

func menuNodes(menus []definition.Menu) []panel.MenuNode {
	nodes := make([]panel.MenuNode, 0, len(menus))
	for _, m := range menus {
		node := panel.MenuNode{
			Name:       m.Name,
			Path:       m.Path,
			PageType:   m.PageType,
			Permission: m.Permission,
			Opened:     m.Opened,
			Model:      m.Model,
			Widget:     m.Widget,
			URL:        m.URL,
		}
		if m.PageConfig != nil {
			node.PageConfig = panel.Literal[any](m.PageConfig)
		}
		if m.IsGroup() {
			node.Children = menuNodes(m.Children)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// getSettings returns stored values for names, falling back to each
// definition's default
func (b *Backend) getSettings(ctx context.Context, names []string, defs panel.SettingDefs) (any, error) {
	if len(names) == 0 {
		return map[string]any{}, nil
	}

	stored, err := b.store.GetSettingValues(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	values := make(map[string]any, len(names))
	for _, name := range names {
		def, ok := defs.Lookup(name)
		if !ok {
			continue
		}
		if v, has := stored[name]; has {
			values[name] = v
		} else {
			values[name] = def["default"]
		}
	}
	return values, nil
}

// updateSettings persists values for defined settings and returns the
// resulting values
func (b *Backend) updateSettings(ctx context.Context, values map[string]any, defs panel.SettingDefs) (any, error) {
	if len(values) == 0 {
		return map[string]any{}, nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		if _, ok := defs.Lookup(name); !ok {
			return nil, &FieldError{Field: name, Reason: "unknown setting"}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if err := b.store.PutSettingValues(ctx, values); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return b.getSettings(ctx, names, defs)
}
