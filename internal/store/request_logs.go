// ABOUTME: Request log storage operations for the panel API.
// ABOUTME: Handles inserting, filtering and aggregating HTTP request logs per model.

package store

import (
	"context"
	"time"
)

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ModelName    string    `json:"model,omitempty"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	StatusCode   int       `json:"status"`
	DurationMs   int       `json:"duration_ms"`
	UserID       string    `json:"user,omitempty"`
	IPAddress    string    `json:"ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Error        string    `json:"error,omitempty"`
	RequestBody  string    `json:"request_body,omitempty"`
	ResponseBody string    `json:"response_body,omitempty"`
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(log *RequestLog) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (model_name, method, path, status_code, duration_ms, user_id, ip_address, user_agent, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ModelName, log.Method, log.Path, log.StatusCode, log.DurationMs, log.UserID, log.IPAddress, log.UserAgent, log.Error, log.RequestBody, log.ResponseBody)
	return err
}

// RequestLogQuery represents filters for request logs
type RequestLogQuery struct {
	Limit      int
	Offset     int
	ModelName  string
	Method     string
	PathPrefix string
	StatusCode int
}

// RequestLogStats represents aggregate statistics for one model or all traffic
type RequestLogStats struct {
	TotalRequests int     `json:"total"`
	ErrorRequests int     `json:"errors"`
	ErrorRate     float64 `json:"error_rate"`
	AvgDurationMs int     `json:"avg_duration_ms"`
}

// EndpointCount is one row of GetTopEndpoints
type EndpointCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
	AvgMs int    `json:"avg_ms"`
}

// GetRequestLogs retrieves request logs with filtering, newest first
func (s *Store) GetRequestLogs(ctx context.Context, q *RequestLogQuery) ([]*RequestLog, error) {
	query := `SELECT id, timestamp, COALESCE(model_name, ''), method, path, status_code, duration_ms,
	          COALESCE(user_id, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(error, ''),
	          COALESCE(request_body, ''), COALESCE(response_body, '')
	          FROM request_logs WHERE 1=1`
	args := []any{}

	if q.ModelName != "" {
		query += " AND model_name = ?"
		args = append(args, q.ModelName)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += " AND path LIKE ? ESCAPE '\\'"
		args = append(args, escapeSQLLike(q.PathPrefix)+"%")
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*RequestLog{}
	for rows.Next() {
		log := &RequestLog{}
		var ts string
		if err := rows.Scan(&log.ID, &ts, &log.ModelName, &log.Method, &log.Path, &log.StatusCode,
			&log.DurationMs, &log.UserID, &log.IPAddress, &log.UserAgent, &log.Error,
			&log.RequestBody, &log.ResponseBody); err != nil {
			return nil, err
		}
		log.Timestamp = parseLogTimestamp(ts)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// parseLogTimestamp accepts both the CURRENT_TIMESTAMP format and RFC 3339,
// which is what the driver writes for time.Time arguments.
func parseLogTimestamp(ts string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetRequestLogStats returns aggregate statistics since a given time.
// An empty modelName aggregates over every request.
func (s *Store) GetRequestLogStats(ctx context.Context, modelName string, since time.Time) (*RequestLogStats, error) {
	query := `SELECT COUNT(*),
	          COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0),
	          COALESCE(AVG(duration_ms), 0)
	          FROM request_logs WHERE timestamp >= ?`
	args := []any{since.UTC().Format("2006-01-02 15:04:05")}
	if modelName != "" {
		query += " AND model_name = ?"
		args = append(args, modelName)
	}

	stats := &RequestLogStats{}
	var avg float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalRequests, &stats.ErrorRequests, &avg); err != nil {
		return nil, err
	}
	stats.AvgDurationMs = int(avg)
	if stats.TotalRequests > 0 {
		stats.ErrorRate = float64(stats.ErrorRequests) / float64(stats.TotalRequests) * 100.0
	}
	return stats, nil
}

// GetTopEndpoints returns the most frequently requested endpoints
func (s *Store) GetTopEndpoints(ctx context.Context, limit int) ([]EndpointCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM request_logs
		GROUP BY path
		ORDER BY count DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endpoints := []EndpointCount{}
	for rows.Next() {
		var e EndpointCount
		var avgMs float64
		if err := rows.Scan(&e.Path, &e.Count, &avgMs); err != nil {
			return nil, err
		}
		e.AvgMs = int(avgMs)
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}
