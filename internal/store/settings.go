// ABOUTME: Setting value storage keyed by setting name.
// ABOUTME: Values are stored JSON-encoded so any scalar or structure round-trips.

package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetSettingValues returns stored values for names. Names with no stored
// value are absent from the result.
func (s *Store) GetSettingValues(ctx context.Context, names []string) (map[string]any, error) {
	values := make(map[string]any, len(names))
	if len(names) == 0 {
		return values, nil
	}

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, value FROM settings WHERE name IN ("+placeholders(len(names))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode setting %s: %w", name, err)
		}
		values[name] = v
	}
	return values, rows.Err()
}

// PutSettingValues upserts every value in one transaction
func (s *Store) PutSettingValues(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := timestamp()
	for name, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode setting %s: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, name, string(raw), now); err != nil {
			return fmt.Errorf("save setting %s: %w", name, err)
		}
	}

	return tx.Commit()
}
