// ABOUTME: Resolver turns a panel Config into menus, page descriptors and dispatches.
// ABOUTME: Holds the configuration read-only; every lookup works on copies.

package panel

import (
	"sort"
	"strings"
)

// Resolver resolves navigation and dispatches model operations against a Config.
// It holds no mutable state, so concurrent use is safe as long as the host
// handlers are.
type Resolver struct {
	config *Config
}

// New creates a Resolver over cfg
func New(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Resolver{config: cfg}
}

// NewLazy invokes produce once, immediately, and resolves against its result
func NewLazy(produce func() *Config) *Resolver {
	return New(produce())
}

// MenuEntry is the display-safe projection of a MenuNode
type MenuEntry struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	PageType   string      `json:"pageType"`
	Permission string      `json:"permission"`
	Opened     bool        `json:"opened"`
	Children   []MenuEntry `json:"children,omitempty"`
}

// Page is a {component, config} descriptor for a UI renderer
type Page struct {
	Component string         `json:"component"`
	Config    map[string]any `json:"config"`
	Data      any            `json:"data,omitempty"`
}

// Menus returns the sanitized menu tree
func (r *Resolver) Menus() []MenuEntry {
	return prepareMenus(r.config.Menus)
}

func prepareMenus(nodes []MenuNode) []MenuEntry {
	entries := make([]MenuEntry, 0, len(nodes))
	for _, n := range nodes {
		entry := MenuEntry{
			Name:       n.Name,
			Path:       n.Path,
			PageType:   n.PageType,
			Permission: n.Permission,
			Opened:     n.Opened,
		}
		if n.IsGroup() {
			entry.Children = prepareMenus(n.Children)
		}
		entries = append(entries, entry)
	}
	return entries
}

// PageDef finds the first leaf whose path equals path, depth first.
// A lazy PageConfig is materialized on the returned copy.
func (r *Resolver) PageDef(path string) (MenuNode, bool) {
	path = "/" + strings.TrimLeft(path, "/")
	return searchMenu(path, r.config.Menus)
}

func searchMenu(path string, nodes []MenuNode) (MenuNode, bool) {
	for _, n := range nodes {
		if n.IsGroup() {
			if match, ok := searchMenu(path, n.Children); ok {
				return match, true
			}
			continue
		}
		if n.Path == path {
			n.PageConfig = n.PageConfig.Materialize()
			return n, true
		}
	}
	return MenuNode{}, false
}

// PageConfig resolves the page descriptor for the menu leaf at path
func (r *Resolver) PageConfig(path string) (Page, bool) {
	def, ok := r.PageDef(path)
	if !ok {
		return Page{}, false
	}

	switch strings.ToLower(def.PageType) {
	case PageTypeModelAdmin:
		page, ok := r.ModelPageConfig(def.Model)
		if !ok {
			return Page{}, false
		}
		return Page{Component: page.Component, Config: page.Config}, true

	case PageTypeWidget:
		w, ok := r.WidgetConfig(def.Widget)
		if !ok {
			return Page{}, false
		}
		data := w.Data.Resolve()
		cfg := copyMap(w.Config)
		cfg["data"] = data
		return Page{Component: w.Component, Config: cfg, Data: data}, true

	case PageTypeIFrame, PageTypeFrame:
		return Page{
			Component: "iframe",
			Config: map[string]any{
				"url": def.URL,
			},
		}, true
	}

	return Page{}, false
}

// WidgetConfig returns the widget registered under name
func (r *Resolver) WidgetConfig(name string) (*WidgetConfig, bool) {
	w, ok := r.config.Widgets[name]
	if !ok || w == nil {
		return nil, false
	}
	return w, true
}

// ModelNames returns registered model names, sorted
func (r *Resolver) ModelNames() []string {
	return sortedKeys(r.config.Models)
}

// WidgetNames returns registered widget names, sorted
func (r *Resolver) WidgetNames() []string {
	return sortedKeys(r.config.Widgets)
}

// SettingNames returns defined setting names, sorted
func (r *Resolver) SettingNames() []string {
	return sortedKeys(r.config.Settings)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
