// ABOUTME: Model detection for request logging.
// ABOUTME: Extracts the model a panel API request targets from its URL path.

package logging

import "strings"

const modelsPrefix = "/api/models/"

// GetModelFromPath returns the model segment of /api/models/{model}/... paths,
// or "" for any other path
func GetModelFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, modelsPrefix)
	if !ok {
		return ""
	}
	model, _, _ := strings.Cut(rest, "/")
	return model
}
