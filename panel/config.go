// ABOUTME: Declarative panel configuration: menus, models, widgets and settings.
// ABOUTME: Hosts build a Config once and hand it to a Resolver.

package panel

import "context"

// Page types understood by PageConfig. Comparison is case-insensitive.
const (
	PageTypeModelAdmin = "modeladmin"
	PageTypeWidget     = "widget"
	PageTypeIFrame     = "iframe"
	PageTypeFrame      = "frame"
)

// Config is the root panel configuration
type Config struct {
	Menus    []MenuNode
	Models   map[string]Value[*ModelConfig]
	Widgets  map[string]*WidgetConfig
	Settings SettingDefs

	GetSettings    GetSettingsFunc
	UpdateSettings UpdateSettingsFunc
}

// Settings storage callbacks owned by the host
type (
	GetSettingsFunc    func(ctx context.Context, names []string, defs SettingDefs) (any, error)
	UpdateSettingsFunc func(ctx context.Context, values map[string]any, defs SettingDefs) (any, error)
)

// MenuNode is one entry of the navigation tree. A node with non-nil
// Children is a group; every other node is a leaf and needs a Path.
type MenuNode struct {
	Name       string     `json:"name"`
	Path       string     `json:"path,omitempty"`
	PageType   string     `json:"pageType,omitempty"`
	Permission string     `json:"permission,omitempty"`
	Opened     bool       `json:"opened"`
	Children   []MenuNode `json:"children,omitempty"`

	Model      string     `json:"model,omitempty"`
	Widget     string     `json:"widget,omitempty"`
	URL        string     `json:"url,omitempty"`
	PageConfig Value[any] `json:"pageConfig"`
}

// IsGroup reports whether the node carries children
func (m MenuNode) IsGroup() bool {
	return m.Children != nil
}

// ModelConfig describes one administrable model and the host handlers behind it
type ModelConfig struct {
	Component string
	Config    map[string]any
	Settings  []string // setting names shown on the model page, in order

	List        ListFunc
	Get         GetFunc
	Create      CreateFunc
	Update      UpdateFunc
	QuerySelect QuerySelectFunc

	Actions       HandlerTable[ActionFunc]
	GlobalActions HandlerTable[GlobalActionFunc]
	BatchActions  HandlerTable[BatchActionFunc]
}

// HandleAction registers a per-record action
func (m *ModelConfig) HandleAction(name string, fn ActionFunc) *ModelConfig {
	m.Actions.Register(name, fn)
	return m
}

// HandleGlobalAction registers a model-wide action
func (m *ModelConfig) HandleGlobalAction(name string, fn GlobalActionFunc) *ModelConfig {
	m.GlobalActions.Register(name, fn)
	return m
}

// HandleBatchAction registers an action over a list of primary keys
func (m *ModelConfig) HandleBatchAction(name string, fn BatchActionFunc) *ModelConfig {
	m.BatchActions.Register(name, fn)
	return m
}

// WidgetConfig describes a dashboard widget
type WidgetConfig struct {
	Component string         `json:"component"`
	Config    map[string]any `json:"config"`
	Data      Value[any]     `json:"data"`
}

// SettingDef holds the display attributes of a setting
type SettingDef map[string]any

// SettingDefs maps setting names to their definitions
type SettingDefs map[string]Value[SettingDef]

// Lookup resolves a definition and attaches its name.
// The stored definition is never modified.
func (d SettingDefs) Lookup(name string) (SettingDef, bool) {
	v, ok := d[name]
	if !ok || !v.IsSet() {
		return nil, false
	}
	def := v.Resolve()
	if def == nil {
		return nil, false
	}
	out := make(SettingDef, len(def)+1)
	for k, val := range def {
		out[k] = val
	}
	out["name"] = name
	return out, true
}

// Resolve looks up names in order, skipping unknown ones
func (d SettingDefs) Resolve(names []string) []SettingDef {
	result := make([]SettingDef, 0, len(names))
	for _, name := range names {
		def, ok := d.Lookup(name)
		if !ok {
			continue
		}
		result = append(result, def)
	}
	return result
}
