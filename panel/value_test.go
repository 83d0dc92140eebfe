// ABOUTME: Tests for the literal-or-lazy Value wrapper and handler tables.
// ABOUTME: Validates resolution, JSON encoding and duplicate registration.

package panel

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestValue(t *testing.T) {
	var unset Value[int]
	if unset.IsSet() || unset.IsLazy() || unset.Resolve() != 0 {
		t.Error("zero Value should be unset and resolve to zero")
	}

	lit := Literal(5)
	if !lit.IsSet() || lit.IsLazy() || lit.Resolve() != 5 {
		t.Error("literal should resolve to its value")
	}

	calls := 0
	lazy := Lazy(func() int {
		calls++
		return calls * 10
	})
	if !lazy.IsLazy() {
		t.Error("expected lazy value")
	}
	if lazy.Resolve() != 10 || lazy.Resolve() != 20 {
		t.Error("lazy value should be produced on every resolve")
	}

	frozen := lazy.Materialize()
	if frozen.IsLazy() || frozen.Resolve() != 30 || frozen.Resolve() != 30 {
		t.Error("materialized value should be a fixed literal")
	}

	if Lazy[int](nil).IsSet() {
		t.Error("nil producer should give an unset value")
	}
	if unset.Materialize().IsSet() {
		t.Error("materializing an unset value should keep it unset")
	}
}

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value[any]
		want  string
	}{
		{"unset", Value[any]{}, "null"},
		{"literal", Literal[any](map[string]any{"a": 1}), `{"a":1}`},
		{"lazy", Lazy(func() any { return []int{1, 2} }), `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(raw) != tt.want {
				t.Errorf("got %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestHandlerTable(t *testing.T) {
	var table HandlerTable[GlobalActionFunc]

	if _, ok := table.Lookup("x"); ok {
		t.Error("empty table should find nothing")
	}

	noop := func(ctx context.Context, params Params) (any, error) { return nil, nil }
	table.Register("zeta", noop)
	table.Register("alpha", noop)

	if table.Len() != 2 {
		t.Errorf("expected 2 handlers, got %d", table.Len())
	}
	if got := strings.Join(table.Names(), ","); got != "alpha,zeta" {
		t.Errorf("Names() = %s", got)
	}
	if _, ok := table.Lookup("alpha"); !ok {
		t.Error("expected alpha to be registered")
	}
}

func TestHandlerTableDuplicatePanic(t *testing.T) {
	m := &ModelConfig{}
	m.HandleAction("approve", func(ctx context.Context, pk string, params Params) (any, error) { return nil, nil })

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration, but didn't panic")
		}
	}()

	m.HandleAction("approve", func(ctx context.Context, pk string, params Params) (any, error) { return nil, nil })
}
