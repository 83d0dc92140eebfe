// ABOUTME: YAML panel definition: menus, models, widgets and settings.
// ABOUTME: Loads and validates the file the backend binds into a panel config.

package definition

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Built-in action names the backend knows how to serve
const (
	ActionDelete = "delete"
	ActionExport = "export"
	ActionCount  = "count"
)

var (
	builtinActions       = []string{ActionDelete}
	builtinGlobalActions = []string{ActionCount, ActionExport}
	builtinBatchActions  = []string{ActionDelete}
)

// Definition is the root of a panel definition file
type Definition struct {
	Title    string                    `yaml:"title"`
	Menus    []Menu                    `yaml:"menus"`
	Models   map[string]Model          `yaml:"models"`
	Widgets  map[string]Widget         `yaml:"widgets"`
	Settings map[string]map[string]any `yaml:"settings"`
}

// Menu is one navigation entry. Entries with a children key are groups.
type Menu struct {
	Name       string         `yaml:"name"`
	Path       string         `yaml:"path"`
	PageType   string         `yaml:"page_type"`
	Permission string         `yaml:"permission"`
	Opened     bool           `yaml:"opened"`
	Model      string         `yaml:"model"`
	Widget     string         `yaml:"widget"`
	URL        string         `yaml:"url"`
	PageConfig map[string]any `yaml:"page_config"`
	Children   []Menu         `yaml:"children"`
}

// IsGroup reports whether the entry declared children
func (m Menu) IsGroup() bool {
	return m.Children != nil
}

// Model describes a stored model and how it is administered
type Model struct {
	Component  string         `yaml:"component"`
	Config     map[string]any `yaml:"config"`
	Settings   []string       `yaml:"settings"`
	Fields     []Field        `yaml:"fields"`
	Searchable []string       `yaml:"searchable"`
	Columns    []string       `yaml:"columns"`

	// Nil means every built-in action of that kind
	Actions       []string `yaml:"actions"`
	GlobalActions []string `yaml:"global_actions"`
	BatchActions  []string `yaml:"batch_actions"`
}

// Field is one attribute of a model record
type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
}

// FieldNames returns the model's field names in declaration order
func (m Model) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ListColumns returns Columns, or every field when none are declared
func (m Model) ListColumns() []string {
	if len(m.Columns) > 0 {
		return m.Columns
	}
	return m.FieldNames()
}

// RecordActions returns the enabled per-record actions
func (m Model) RecordActions() []string { return orDefault(m.Actions, builtinActions) }

// ModelActions returns the enabled model-wide actions
func (m Model) ModelActions() []string { return orDefault(m.GlobalActions, builtinGlobalActions) }

// ListActions returns the enabled batch actions
func (m Model) ListActions() []string { return orDefault(m.BatchActions, builtinBatchActions) }

func orDefault(names, builtin []string) []string {
	if names == nil {
		return builtin
	}
	return names
}

// Widget is a dashboard widget. Source, when set, replaces Data with a
// value computed at render time: "count:<model>" or "recent:<model>".
type Widget struct {
	Component string         `yaml:"component"`
	Config    map[string]any `yaml:"config"`
	Data      any            `yaml:"data"`
	Source    string         `yaml:"source"`
}

// ParseSource splits a widget source into its kind and model
func (w Widget) ParseSource() (kind, model string, ok bool) {
	kind, model, ok = strings.Cut(w.Source, ":")
	if !ok || kind == "" || model == "" {
		return "", "", false
	}
	return kind, model, true
}

// Load reads and validates a definition file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded demo definition
func Default() (*Definition, error) {
	return Parse(defaultYAML)
}

// Parse decodes and validates a YAML definition
func Parse(data []byte) (*Definition, error) {
	def := &Definition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validating definition: %w", err)
	}
	return def, nil
}

// Validate checks menus reference known models and widgets, and that every
// model only enables actions the backend can serve.
func (d *Definition) Validate() error {
	if err := d.validateMenus(d.Menus, ""); err != nil {
		return err
	}

	for name, m := range d.Models {
		if len(m.Fields) == 0 {
			return fmt.Errorf("model %s: at least one field is required", name)
		}
		known := make(map[string]bool, len(m.Fields))
		for _, f := range m.Fields {
			if f.Name == "" {
				return fmt.Errorf("model %s: field without name", name)
			}
			known[f.Name] = true
		}
		for _, col := range append(append([]string{}, m.Columns...), m.Searchable...) {
			if !known[col] {
				return fmt.Errorf("model %s: unknown field %q", name, col)
			}
		}
		if err := checkActions(name, "action", m.Actions, builtinActions); err != nil {
			return err
		}
		if err := checkActions(name, "global action", m.GlobalActions, builtinGlobalActions); err != nil {
			return err
		}
		if err := checkActions(name, "batch action", m.BatchActions, builtinBatchActions); err != nil {
			return err
		}
	}

	for name, w := range d.Widgets {
		if w.Source == "" {
			continue
		}
		kind, model, ok := w.ParseSource()
		if !ok || (kind != "count" && kind != "recent") {
			return fmt.Errorf("widget %s: invalid source %q", name, w.Source)
		}
		if _, exists := d.Models[model]; !exists {
			return fmt.Errorf("widget %s: unknown model %q", name, model)
		}
	}

	return nil
}

func (d *Definition) validateMenus(menus []Menu, parent string) error {
	for _, m := range menus {
		label := parent + "/" + m.Name
		if m.IsGroup() {
			if err := d.validateMenus(m.Children, label); err != nil {
				return err
			}
			continue
		}
		if m.Path == "" {
			return fmt.Errorf("menu %s: path is required", label)
		}
		switch strings.ToLower(m.PageType) {
		case "modeladmin":
			if _, ok := d.Models[m.Model]; !ok {
				return fmt.Errorf("menu %s: unknown model %q", label, m.Model)
			}
		case "widget":
			if _, ok := d.Widgets[m.Widget]; !ok {
				return fmt.Errorf("menu %s: unknown widget %q", label, m.Widget)
			}
		case "iframe", "frame":
			if m.URL == "" {
				return fmt.Errorf("menu %s: url is required", label)
			}
		}
	}
	return nil
}

func checkActions(model, kind string, names, builtin []string) error {
	for _, name := range names {
		found := false
		for _, b := range builtin {
			if b == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("model %s: unsupported %s %q", model, kind, name)
		}
	}
	return nil
}
