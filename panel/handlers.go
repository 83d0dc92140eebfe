// ABOUTME: Handler function types and name-keyed handler tables for model dispatch.
// ABOUTME: Tables are filled at configuration time; duplicate names panic.

package panel

import (
	"context"
	"fmt"
	"sort"
)

// Params carries request parameters or record attributes
type Params map[string]any

// Handler signatures for the operations a model can expose
type (
	ListFunc         func(ctx context.Context, params Params) (any, error)
	GetFunc          func(ctx context.Context, pk string) (any, error)
	CreateFunc       func(ctx context.Context, attrs Params) (any, error)
	UpdateFunc       func(ctx context.Context, pk string, attrs Params) (any, error)
	ActionFunc       func(ctx context.Context, pk string, params Params) (any, error)
	GlobalActionFunc func(ctx context.Context, params Params) (any, error)
	BatchActionFunc  func(ctx context.Context, pks []string, params Params) (any, error)
	QuerySelectFunc  func(ctx context.Context, field, query string) (any, error)
)

// HandlerTable maps action names to handlers of one kind.
// It is not safe for concurrent registration; register everything while
// building the Config and treat the table as read-only afterwards.
type HandlerTable[F any] struct {
	handlers map[string]F
}

// Register adds a handler under name
func (t *HandlerTable[F]) Register(name string, fn F) {
	if t.handlers == nil {
		t.handlers = make(map[string]F)
	}
	if _, exists := t.handlers[name]; exists {
		panic(fmt.Sprintf("action %q already registered", name))
	}
	t.handlers[name] = fn
}

// Lookup retrieves a handler by name
func (t *HandlerTable[F]) Lookup(name string) (F, bool) {
	fn, ok := t.handlers[name]
	return fn, ok
}

// Len returns the number of registered handlers
func (t *HandlerTable[F]) Len() int {
	return len(t.handlers)
}

// Names returns all registered names, sorted
func (t *HandlerTable[F]) Names() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
