// ABOUTME: Database path defaults and validation for the panel CLI.
// ABOUTME: Resolves PANEL_DB_PATH, a local panel.db or the XDG data directory.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const localDBPath = "./panel.db"

// validateAndCleanDBPath validates and cleans a database path.
// Handles Unix/Linux, macOS, and Windows paths (including UNC and drive letters).
func validateAndCleanDBPath(path string) (string, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))

	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}

	// Windows: reject bare drive letters (e.g., "C:", "D:")
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range []string{".git", ".svn", "node_modules", ".env", "credentials", "secret"} {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("database path cannot contain '%s' directory", pattern)
		}
	}

	return cleanPath, nil
}

// getDefaultDBPath returns the default database path.
// Priority: PANEL_DB_PATH > existing ./panel.db > XDG_DATA_HOME/panel/panel.db
func getDefaultDBPath() string {
	if envPath := strings.TrimSpace(os.Getenv("PANEL_DB_PATH")); envPath != "" {
		if cleaned := filepath.Clean(envPath); cleaned != "." {
			return cleaned
		}
		log.Printf("Warning: PANEL_DB_PATH is invalid, using default path")
	}

	if _, err := os.Stat(localDBPath); err == nil {
		return localDBPath
	}

	dataHome, err := dataHomeDir()
	if err != nil {
		log.Printf("Warning: %v, using %s", err, localDBPath)
		return localDBPath
	}

	dataDir := filepath.Join(dataHome, "panel")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Printf("Warning: Could not create data directory %s: %v, using %s", dataDir, err, localDBPath)
		return localDBPath
	}
	if !writable(dataDir) {
		log.Printf("Warning: Cannot write to data directory %s, using %s", dataDir, localDBPath)
		return localDBPath
	}

	return filepath.Join(dataDir, "panel.db")
}

// dataHomeDir follows XDG_DATA_HOME, with the platform default when unset
func dataHomeDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return dataHome, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" || homeDir == "/" {
		return "", fmt.Errorf("could not determine valid home directory (%q): %v", homeDir, err)
	}

	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return local, nil
		}
		return filepath.Join(homeDir, "AppData", "Local"), nil
	}
	return filepath.Join(homeDir, ".local", "share"), nil
}

func writable(dir string) bool {
	testFile := filepath.Join(dir, ".write-test")
	f, err := os.Create(testFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(testFile)
	return true
}
