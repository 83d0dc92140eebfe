// ABOUTME: SQL helper functions for query construction.
// ABOUTME: Escapes LIKE patterns and builds safe JSON paths for record fields.

package store

import (
	"fmt"
	"regexp"
	"strings"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// escapeSQLLike escapes SQL LIKE pattern special characters.
// The backslash must be escaped first to avoid double-escaping.
func escapeSQLLike(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "\\", "\\\\")
	pattern = strings.ReplaceAll(pattern, "%", "\\%")
	pattern = strings.ReplaceAll(pattern, "_", "\\_")
	return pattern
}

// jsonPath returns the json_extract path for a record field.
// Field names are restricted to identifiers so they can never escape the path.
func jsonPath(field string) (string, error) {
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return "$." + field, nil
}

// placeholders returns n comma separated bind parameters
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
