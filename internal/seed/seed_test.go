// ABOUTME: Tests for demo record generation and seeding.
// ABOUTME: Runs without an OpenAI key so only the static fallback is exercised.

package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
)

func TestGenerateStatic(t *testing.T) {
	def, err := definition.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	g := &Generator{}

	users := g.Generate(context.Background(), "users", def.Models["users"], 4)
	if len(users) != 4 {
		t.Fatalf("expected 4 users, got %d", len(users))
	}
	for _, u := range users {
		email, _ := u["email"].(string)
		if !strings.HasSuffix(email, "@example.com") {
			t.Errorf("unexpected email %q", email)
		}
		if !contains([]string{"admin", "editor", "viewer"}, u["role"].(string)) {
			t.Errorf("role %v outside options", u["role"])
		}
	}
	if users[0]["role"] == users[1]["role"] {
		t.Error("expected options to rotate")
	}

	if rows := g.Generate(context.Background(), "users", def.Models["users"], 0); rows != nil {
		t.Errorf("expected no rows for zero count, got %v", rows)
	}
}

func TestConform(t *testing.T) {
	m := definition.Model{Fields: []definition.Field{
		{Name: "title", Required: true},
		{Name: "status", Options: []string{"draft", "published"}},
		{Name: "body"},
	}}

	rows := conform(m, []map[string]any{
		{"title": "Kept", "status": "deleted", "extra": "dropped"},
		{"status": "published", "body": "text"},
	})

	if _, has := rows[0]["extra"]; has {
		t.Error("undeclared keys should be dropped")
	}
	if rows[0]["status"] != "draft" {
		t.Errorf("invalid option should be replaced, got %v", rows[0]["status"])
	}
	if _, has := rows[0]["body"]; has {
		t.Error("missing optional fields should stay missing")
	}
	if rows[1]["title"] == nil || rows[1]["status"] != "published" {
		t.Errorf("unexpected row %v", rows[1])
	}
}

func TestSeed(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	def, _ := definition.Default()
	g := &Generator{}
	ctx := context.Background()

	results, err := g.Seed(ctx, s, def, nil, 3)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if len(results) != len(def.Models) {
		t.Errorf("expected a result per model, got %d", len(results))
	}
	for _, res := range results {
		if res.Err != nil || res.Created != 3 {
			t.Errorf("result %+v", res)
		}
		if n, _ := s.CountRecords(ctx, res.Model); n != 3 {
			t.Errorf("%s has %d records", res.Model, n)
		}
	}

	if _, err := g.Seed(ctx, s, def, []string{"ghosts"}, 1); err == nil {
		t.Error("expected error for unknown model")
	}
}
