// ABOUTME: Dashboard widgets with static data or data computed from stored records.
// ABOUTME: Computed widgets are lazy so each page render sees current counts.

package backend

import (
	"context"
	"log"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

const recentLimit = 5

func (b *Backend) widget(w definition.Widget) *panel.WidgetConfig {
	cfg := &panel.WidgetConfig{
		Component: w.Component,
		Config:    w.Config,
	}

	kind, model, ok := w.ParseSource()
	switch {
	case ok && kind == "count":
		cfg.Data = panel.Lazy(func() any { return b.countWidget(model) })
	case ok && kind == "recent":
		cfg.Data = panel.Lazy(func() any { return b.recentWidget(model) })
	case w.Data != nil:
		cfg.Data = panel.Literal(w.Data)
	}
	return cfg
}

func (b *Backend) countWidget(model string) any {
	n, err := b.store.CountRecords(context.Background(), model)
	if err != nil {
		log.Printf("Widget count for %s failed: %v", model, err)
		return nil
	}
	return map[string]any{"model": model, "count": n}
}

func (b *Backend) recentWidget(model string) any {
	page, err := b.store.ListRecords(context.Background(), model, store.RecordQuery{
		OrderBy: "created_at",
		Desc:    true,
		Limit:   recentLimit,
	})
	if err != nil {
		log.Printf("Widget recent records for %s failed: %v", model, err)
		return nil
	}
	rows := make([]map[string]any, 0, len(page.Records))
	for _, rec := range page.Records {
		rows = append(rows, rec.Flatten())
	}
	return rows
}
