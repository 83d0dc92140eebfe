// ABOUTME: Operator identification middleware for panel API requests.
// ABOUTME: Reads a bearer token or operator header and stores the operator in the request context.

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const operatorContextKey contextKey = "operator"

// Anonymous is the operator recorded when a request carries no identity
const Anonymous = "anonymous"

// OperatorHeader names an operator directly, taking precedence over the token
const OperatorHeader = "X-Panel-Operator"

// Middleware attaches the operator to the context. It never rejects a
// request; permissions in the panel definition are metadata for the UI.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operator == "" {
			operator = extractOperator(r.Header.Get("Authorization"))
		}
		ctx := context.WithValue(r.Context(), operatorContextKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorFromContext returns the operator set by Middleware
func OperatorFromContext(ctx context.Context) string {
	operator, ok := ctx.Value(operatorContextKey).(string)
	if !ok || operator == "" {
		return Anonymous
	}
	return operator
}

func extractOperator(authHeader string) string {
	if authHeader == "" {
		return Anonymous
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return Anonymous
	}
	token = strings.TrimSpace(token)

	// "operator:<name>" names the operator explicitly; any other token is
	// only known to be authenticated.
	if name, ok := strings.CutPrefix(token, "operator:"); ok && name != "" {
		return name
	}
	if token == "" {
		return Anonymous
	}
	return "token"
}
