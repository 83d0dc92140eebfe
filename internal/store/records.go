// ABOUTME: Record storage for panel models, one JSON document per row.
// ABOUTME: Supports paged listing with search and ordering, CRUD and distinct field values.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRecordNotFound is returned when a record id does not exist for a model
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidField is returned for field names that are not plain identifiers
	ErrInvalidField = errors.New("invalid field name")
)

// Record is one stored model row
type Record struct {
	ID        string
	Model     string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Flatten returns the record data with id and timestamps merged in
func (r *Record) Flatten() map[string]any {
	out := make(map[string]any, len(r.Data)+3)
	for k, v := range r.Data {
		out[k] = v
	}
	out["id"] = r.ID
	out["created_at"] = r.CreatedAt.Format(time.RFC3339)
	out["updated_at"] = r.UpdatedAt.Format(time.RFC3339)
	return out
}

// RecordQuery represents paging, search and ordering for ListRecords
type RecordQuery struct {
	Offset       int
	Limit        int
	Search       string
	SearchFields []string
	OrderBy      string
	Desc         bool
}

// RecordPage is one page of records plus the counts a data table needs
type RecordPage struct {
	Records  []*Record
	Total    int
	Filtered int
}

// recordColumns are stored as real columns rather than inside data
var recordColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func timestamp() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// CreateRecord stores data as a new record and returns it
func (s *Store) CreateRecord(ctx context.Context, model string, data map[string]any) (*Record, error) {
	clean := stripColumns(data)
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	now := timestamp()
	rec := &Record{
		ID:        uuid.New().String(),
		Model:     model,
		Data:      clean,
		CreatedAt: parseTimestamp(now),
		UpdatedAt: parseTimestamp(now),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, model, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, model, string(raw), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// GetRecord loads one record of model
func (s *Store) GetRecord(ctx context.Context, model, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, data, created_at, updated_at
		FROM records WHERE model = ? AND id = ?
	`, model, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, model, id)
	}
	return rec, err
}

// UpdateRecord merges attrs into the stored data
func (s *Store) UpdateRecord(ctx context.Context, model, id string, attrs map[string]any) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, model, data, created_at, updated_at
		FROM records WHERE model = ? AND id = ?
	`, model, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, model, id)
	}
	if err != nil {
		return nil, err
	}

	for k, v := range stripColumns(attrs) {
		rec.Data[k] = v
	}
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	now := timestamp()
	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET data = ?, updated_at = ? WHERE model = ? AND id = ?
	`, string(raw), now, model, id); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	rec.UpdatedAt = parseTimestamp(now)
	return rec, nil
}

// DeleteRecords removes the given ids of model and returns how many were deleted
func (s *Store) DeleteRecords(ctx context.Context, model string, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, model)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE model = ? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountRecords returns the number of records stored for model
func (s *Store) CountRecords(ctx context.Context, model string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE model = ?", model).Scan(&count)
	return count, err
}

// ListRecords returns one page of records with total and filtered counts
func (s *Store) ListRecords(ctx context.Context, model string, q RecordQuery) (*RecordPage, error) {
	total, err := s.CountRecords(ctx, model)
	if err != nil {
		return nil, err
	}

	where := " WHERE model = ?"
	args := []any{model}

	if q.Search != "" && len(q.SearchFields) > 0 {
		clauses := make([]string, 0, len(q.SearchFields))
		pattern := "%" + escapeSQLLike(q.Search) + "%"
		for _, field := range q.SearchFields {
			expr, fieldArgs, err := fieldExpr(field)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, expr+" LIKE ? ESCAPE '\\'")
			args = append(args, fieldArgs...)
			args = append(args, pattern)
		}
		where += " AND (" + strings.Join(clauses, " OR ") + ")"
	}

	filtered := total
	if q.Search != "" && len(q.SearchFields) > 0 {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records"+where, args...).Scan(&filtered); err != nil {
			return nil, err
		}
	}

	order := "created_at"
	var orderArgs []any
	if q.OrderBy != "" {
		expr, fieldArgs, err := fieldExpr(q.OrderBy)
		if err != nil {
			return nil, err
		}
		order = expr
		orderArgs = fieldArgs
	}
	direction := " ASC"
	if q.Desc {
		direction = " DESC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	query := "SELECT id, model, data, created_at, updated_at FROM records" + where +
		" ORDER BY " + order + direction + ", id" + direction + " LIMIT ? OFFSET ?"
	args = append(args, orderArgs...)
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := &RecordPage{Total: total, Filtered: filtered, Records: []*Record{}}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		page.Records = append(page.Records, rec)
	}
	return page, rows.Err()
}

// DistinctValues returns up to limit distinct non-null values of field across model records
func (s *Store) DistinctValues(ctx context.Context, model, field string, limit int) ([]string, error) {
	expr, fieldArgs, err := fieldExpr(field)
	if err != nil {
		return nil, err
	}

	args := append([]any{}, fieldArgs...)
	args = append(args, model)
	args = append(args, fieldArgs...)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT "+expr+" FROM records WHERE model = ? AND "+expr+" IS NOT NULL LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		values = append(values, fmt.Sprint(v))
	}
	return values, rows.Err()
}

// fieldExpr returns a SQL expression selecting field, plus its bind arguments
func fieldExpr(field string) (string, []any, error) {
	if recordColumns[field] {
		return field, nil, nil
	}
	path, err := jsonPath(field)
	if err != nil {
		return "", nil, err
	}
	return "json_extract(data, ?)", []any{path}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var data, created, updated string
	if err := row.Scan(&rec.ID, &rec.Model, &data, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	rec.CreatedAt = parseTimestamp(created)
	rec.UpdatedAt = parseTimestamp(updated)
	return rec, nil
}

func stripColumns(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if recordColumns[k] {
			continue
		}
		out[k] = v
	}
	return out
}
