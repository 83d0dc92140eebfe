// ABOUTME: Entry point for the panel admin backend server.
// ABOUTME: Defines the serve, seed, reset and menus CLI commands.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/panel/internal/backend"
	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/seed"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

var (
	port       string
	dbPath     string
	configPath string
	seedCount  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "panel",
		Short: "Panel - configuration-driven admin backend",
		Long: `Panel serves an admin backend described by a YAML definition.

The definition declares menus, models, widgets and settings. Panel resolves
the navigation tree and page descriptors for a UI, and dispatches list, CRUD,
action and select requests for every model to a SQLite record store.

Quick Start:
  panel seed          # Generate demo records
  panel serve         # Start server on port 9100
  panel menus         # Print the menu tree
  panel reset         # Wipe and reseed database`,
	}

	defaultDBPath := getDefaultDBPath()
	defaultConfig := getEnv("PANEL_CONFIG", "")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the panel JSON API on the specified port.

The server provides:
  • Menus, page and model descriptors under /api
  • Record listing (DataTables protocol), CRUD and actions per model
  • Request logs at /api/logs
  • Health check at /healthz

Send SIGHUP to reload the definition file without restarting.

Environment Variables:
  PANEL_PORT        Server port (default: 9100)
  PANEL_DB_PATH     Database path
  PANEL_CONFIG      Panel definition file (default: built-in demo)`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", getEnv("PANEL_PORT", "9100"), "Port to listen on")

	seedCmd := &cobra.Command{
		Use:   "seed [model]",
		Short: "Seed the database with demo records",
		Long: `Seed the database with demo records for every model or a specific one.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate records with OpenAI from each model's fields.
  Falls back to static demo data if no API key is provided.

Usage:
  panel seed            # Seed all models
  panel seed posts      # Seed only the posts model

Note: Seed is not idempotent. Use 'panel reset' to clear data before reseeding.`,
		RunE: runSeed,
		Args: cobra.MaximumNArgs(1),
	}
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 10, "Records to create per model")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database (wipe and reseed)",
		Long: `Delete the database file and create a fresh one with new demo records.

Warning: This permanently deletes all data in the database!`,
		RunE: runReset,
	}
	resetCmd.Flags().IntVarP(&seedCount, "count", "n", 10, "Records to create per model")

	menusCmd := &cobra.Command{
		Use:   "menus",
		Short: "Print the menu tree as JSON",
		RunE:  runMenus,
	}

	for _, cmd := range []*cobra.Command{serveCmd, seedCmd, resetCmd} {
		cmd.Flags().StringVarP(&dbPath, "db", "d", defaultDBPath, "Database path")
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "Panel definition file (YAML)")

	rootCmd.AddCommand(serveCmd, seedCmd, resetCmd, menusCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDefinition reads the definition file, or the built-in demo when path is empty
func loadDefinition(path string) (*definition.Definition, error) {
	if path == "" {
		return definition.Default()
	}
	return definition.Load(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	def, err := loadDefinition(configPath)
	if err != nil {
		return err
	}

	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	b := backend.New(s, def)
	logDefinition("Definition loaded", b.Resolver())
	go reloadOnHangup(b, configPath)

	addr := ":" + port
	log.Printf("Panel server listening on %s", addr)
	log.Printf("Database: %s", dbPath)
	return http.ListenAndServe(addr, newServer(s, b))
}

// reloadOnHangup re-reads the definition on SIGHUP. A file that fails to
// load or validate leaves the running definition in place.
func reloadOnHangup(b *backend.Backend, path string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		def, err := loadDefinition(path)
		if err != nil {
			log.Printf("Definition reload failed: %v", err)
			continue
		}
		b.SetDefinition(def)
		logDefinition("Definition reloaded", b.Resolver())
	}
}

func logDefinition(prefix string, r *panel.Resolver) {
	log.Printf("%s: models %v, widgets %v", prefix, r.ModelNames(), r.WidgetNames())
}

func runSeed(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	def, err := loadDefinition(configPath)
	if err != nil {
		return err
	}

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return seedData(s, def, args)
}

func runReset(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	def, err := loadDefinition(configPath)
	if err != nil {
		return err
	}

	// Remove existing database - ignore if file doesn't exist
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return seedData(s, def, nil)
}

func seedData(s *store.Store, def *definition.Definition, models []string) error {
	if len(models) > 0 {
		log.Printf("Seeding database with demo records for model: %s", models[0])
	} else {
		log.Println("Seeding database with demo records...")
	}

	results, err := seed.NewGenerator().Seed(context.Background(), s, def, models, seedCount)
	if err != nil {
		log.Println("\nAvailable models:")
		for _, name := range backend.New(s, def).Resolver().ModelNames() {
			log.Printf("  - %s", name)
		}
		return err
	}

	total := 0
	var failed []string
	for _, res := range results {
		total += res.Created
		if res.Err != nil {
			failed = append(failed, res.Model)
		}
	}

	log.Printf("\nSeeding complete! Created %d records across %d models", total, len(results))
	if len(failed) > 0 {
		return fmt.Errorf("seeding failed for %v", failed)
	}
	return nil
}

func runMenus(cmd *cobra.Command, args []string) error {
	def, err := loadDefinition(configPath)
	if err != nil {
		return err
	}

	resolver := backend.New(nil, def).Resolver()
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resolver.Menus())
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
