// ABOUTME: Tests for setting value storage.
// ABOUTME: Verifies JSON round-trips, upserts and missing names.

package store

import (
	"context"
	"reflect"
	"testing"
)

func TestSettingValues(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()
	ctx := context.Background()

	empty, err := s.GetSettingValues(ctx, []string{"site_title"})
	if err != nil {
		t.Fatalf("GetSettingValues() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no stored values, got %v", empty)
	}

	err = s.PutSettingValues(ctx, map[string]any{
		"site_title": "Panel",
		"page_size":  25,
		"features":   []any{"export", "search"},
		"maintenance": false,
	})
	if err != nil {
		t.Fatalf("PutSettingValues() error = %v", err)
	}

	got, err := s.GetSettingValues(ctx, []string{"site_title", "page_size", "features", "maintenance", "missing"})
	if err != nil {
		t.Fatalf("GetSettingValues() error = %v", err)
	}
	want := map[string]any{
		"site_title":  "Panel",
		"page_size":   float64(25),
		"features":    []any{"export", "search"},
		"maintenance": false,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetSettingValues() = %v, want %v", got, want)
	}

	if err := s.PutSettingValues(ctx, map[string]any{"site_title": "Renamed"}); err != nil {
		t.Fatalf("PutSettingValues() upsert error = %v", err)
	}
	got, _ = s.GetSettingValues(ctx, []string{"site_title"})
	if got["site_title"] != "Renamed" {
		t.Errorf("expected upserted value, got %v", got["site_title"])
	}

	if err := s.PutSettingValues(ctx, nil); err != nil {
		t.Errorf("PutSettingValues(nil) error = %v", err)
	}
}
