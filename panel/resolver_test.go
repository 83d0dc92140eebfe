// ABOUTME: Tests for menu sanitizing, page definition search and page descriptors.
// ABOUTME: Covers depth-first lookup, lazy page configs and each page type.

package panel

import (
	"encoding/json"
	"strings"
	"testing"
)

func testMenus() []MenuNode {
	return []MenuNode{
		{Name: "Home", Path: "/a", PageType: "widget", Widget: "stats", Permission: "home.view"},
		{
			Name:   "g",
			Opened: true,
			Children: []MenuNode{
				{Name: "Users", Path: "/b", PageType: "ModelAdmin", Model: "users", Permission: "users.admin"},
				{
					Name: "nested",
					Children: []MenuNode{
						{Name: "Docs", Path: "/docs", PageType: "iframe", URL: "https://example.com/docs"},
					},
				},
			},
		},
		{Name: "Frame", Path: "/frame", PageType: "FRAME", URL: "https://example.com/frame"},
		{Name: "Broken", Path: "/broken", PageType: "modeladmin", Model: "missing"},
		{Name: "Odd", Path: "/odd", PageType: "chart"},
		{Name: "Dup", Path: "/b", PageType: "iframe", URL: "https://example.com/late"},
	}
}

func TestPageDefDepthFirst(t *testing.T) {
	r := New(&Config{Menus: testMenus()})

	tests := []struct {
		name     string
		path     string
		wantName string
		found    bool
	}{
		{name: "top level leaf", path: "/a", wantName: "Home", found: true},
		{name: "nested leaf", path: "/b", wantName: "Users", found: true},
		{name: "doubly nested leaf", path: "/docs", wantName: "Docs", found: true},
		{name: "missing leading slash", path: "b", wantName: "Users", found: true},
		{name: "extra leading slashes", path: "///docs", wantName: "Docs", found: true},
		{name: "unknown path", path: "/x", found: false},
		{name: "group name is not a path", path: "/g", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := r.PageDef(tt.path)
			if ok != tt.found {
				t.Fatalf("PageDef(%q) found = %v, want %v", tt.path, ok, tt.found)
			}
			if !ok {
				return
			}
			if def.Name != tt.wantName {
				t.Errorf("PageDef(%q) name = %q, want %q", tt.path, def.Name, tt.wantName)
			}
			if def.Path != "/"+strings.TrimLeft(tt.path, "/") {
				t.Errorf("PageDef(%q) path = %q", tt.path, def.Path)
			}
		})
	}
}

func TestPageDefMaterializesPageConfig(t *testing.T) {
	calls := 0
	menus := []MenuNode{
		{
			Name: "Report",
			Path: "/report",
			PageConfig: Lazy(func() any {
				calls++
				return map[string]any{"title": "Monthly"}
			}),
		},
		{Name: "Plain", Path: "/plain", PageConfig: Literal[any]("static")},
	}
	r := New(&Config{Menus: menus})

	if calls != 0 {
		t.Fatalf("producer invoked before lookup: %d calls", calls)
	}

	def, ok := r.PageDef("/report")
	if !ok {
		t.Fatal("expected /report to be found")
	}
	if def.PageConfig.IsLazy() {
		t.Error("expected page config to be materialized")
	}
	cfg, _ := def.PageConfig.Resolve().(map[string]any)
	if cfg["title"] != "Monthly" {
		t.Errorf("unexpected page config %v", def.PageConfig.Resolve())
	}
	if calls != 1 {
		t.Errorf("expected 1 producer call, got %d", calls)
	}

	// the stored node keeps its producer
	if !menus[0].PageConfig.IsLazy() {
		t.Error("configuration was mutated by PageDef")
	}
	r.PageDef("/report")
	if calls != 2 {
		t.Errorf("expected producer to run per lookup, got %d calls", calls)
	}

	plain, _ := r.PageDef("/plain")
	if plain.PageConfig.Resolve() != "static" {
		t.Errorf("expected literal page config, got %v", plain.PageConfig.Resolve())
	}
}

func TestMenusStripOperationalFields(t *testing.T) {
	r := New(&Config{Menus: testMenus()})
	menus := r.Menus()

	if len(menus) != 6 {
		t.Fatalf("expected 6 top level entries, got %d", len(menus))
	}
	if menus[1].Name != "g" || !menus[1].Opened {
		t.Errorf("unexpected group entry %+v", menus[1])
	}
	if len(menus[1].Children) != 2 || menus[1].Children[0].Permission != "users.admin" {
		t.Errorf("unexpected children %+v", menus[1].Children)
	}
	if got := menus[1].Children[1].Children[0].Path; got != "/docs" {
		t.Errorf("expected nested path /docs, got %q", got)
	}

	raw, err := json.Marshal(menus)
	if err != nil {
		t.Fatalf("marshal menus: %v", err)
	}
	for _, key := range []string{`"model"`, `"widget"`, `"url"`, `"pageConfig"`, "example.com"} {
		if strings.Contains(string(raw), key) {
			t.Errorf("menu listing leaked %s: %s", key, raw)
		}
	}
}

func TestPageConfig(t *testing.T) {
	widgetCalls := 0
	cfg := &Config{
		Menus: testMenus(),
		Models: map[string]Value[*ModelConfig]{
			"users": Literal(&ModelConfig{
				Component: "model-table",
				Config:    map[string]any{"title": "Users"},
			}),
		},
		Widgets: map[string]*WidgetConfig{
			"stats": {
				Component: "stat-card",
				Config:    map[string]any{"label": "Signups"},
				Data: Lazy(func() any {
					widgetCalls++
					return 42
				}),
			},
		},
	}
	r := New(cfg)

	t.Run("modeladmin is case-insensitive", func(t *testing.T) {
		page, ok := r.PageConfig("/b")
		if !ok {
			t.Fatal("expected model page")
		}
		if page.Component != "model-table" {
			t.Errorf("component = %q", page.Component)
		}
		if page.Config["model"] != "users" || page.Config["title"] != "Users" {
			t.Errorf("unexpected config %v", page.Config)
		}
		if page.Data != nil {
			t.Errorf("model page should not carry data, got %v", page.Data)
		}
	})

	t.Run("widget data is materialized", func(t *testing.T) {
		page, ok := r.PageConfig("/a")
		if !ok {
			t.Fatal("expected widget page")
		}
		if page.Component != "stat-card" || page.Config["label"] != "Signups" {
			t.Errorf("unexpected widget page %+v", page)
		}
		if page.Config["data"] != 42 || page.Data != 42 {
			t.Errorf("expected data 42, got config=%v data=%v", page.Config["data"], page.Data)
		}
		if _, leaked := cfg.Widgets["stats"].Config["data"]; leaked {
			t.Error("widget config was mutated")
		}
		if widgetCalls != 1 {
			t.Errorf("expected 1 data call, got %d", widgetCalls)
		}
	})

	t.Run("iframe and frame", func(t *testing.T) {
		for path, url := range map[string]string{"/docs": "https://example.com/docs", "/frame": "https://example.com/frame"} {
			page, ok := r.PageConfig(path)
			if !ok {
				t.Fatalf("expected frame page for %s", path)
			}
			if page.Component != "iframe" || page.Config["url"] != url {
				t.Errorf("%s: unexpected page %+v", path, page)
			}
		}
	})

	t.Run("not found cases", func(t *testing.T) {
		for _, path := range []string{"/x", "/broken", "/odd"} {
			if _, ok := r.PageConfig(path); ok {
				t.Errorf("expected %s to be not found", path)
			}
		}
	})
}

func TestWidgetPageWithLiteralData(t *testing.T) {
	r := New(&Config{
		Menus: []MenuNode{{Name: "w", Path: "/w", PageType: "Widget", Widget: "notes"}},
		Widgets: map[string]*WidgetConfig{
			"notes": {Component: "markdown", Data: Literal[any]("# hi")},
		},
	})

	page, ok := r.PageConfig("/w")
	if !ok {
		t.Fatal("expected widget page")
	}
	if page.Config["data"] != "# hi" {
		t.Errorf("expected literal data, got %v", page.Config["data"])
	}
}

func TestWidgetConfigMissing(t *testing.T) {
	r := New(&Config{})
	if _, ok := r.WidgetConfig("nope"); ok {
		t.Error("expected missing widget")
	}
	if _, ok := r.PageConfig("/anything"); ok {
		t.Error("expected empty config to resolve nothing")
	}
}

func TestNewLazyInvokesProducerOnce(t *testing.T) {
	calls := 0
	r := NewLazy(func() *Config {
		calls++
		return &Config{Menus: []MenuNode{{Name: "a", Path: "/a"}}}
	})
	if calls != 1 {
		t.Fatalf("expected producer to run at construction, got %d calls", calls)
	}

	r.Menus()
	r.PageDef("/a")
	if calls != 1 {
		t.Errorf("expected producer to run exactly once, got %d calls", calls)
	}
}

func TestNames(t *testing.T) {
	r := New(&Config{
		Models: map[string]Value[*ModelConfig]{
			"posts": Literal(&ModelConfig{}),
			"authors": Lazy(func() *ModelConfig {
				return &ModelConfig{}
			}),
		},
		Widgets: map[string]*WidgetConfig{"z": {}, "a": {}},
		Settings: SettingDefs{
			"theme":     Literal(SettingDef{}),
			"page_size": Literal(SettingDef{}),
		},
	})

	if got := strings.Join(r.ModelNames(), ","); got != "authors,posts" {
		t.Errorf("ModelNames() = %s", got)
	}
	if got := strings.Join(r.WidgetNames(), ","); got != "a,z" {
		t.Errorf("WidgetNames() = %s", got)
	}
	if got := strings.Join(r.SettingNames(), ","); got != "page_size,theme" {
		t.Errorf("SettingNames() = %s", got)
	}
}
