package main

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/repository/postgres"
	"github.com/sanjeevceligo/rollout-insights/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrations table: %v\n", err)
		os.Exit(1)
	}

	files, err := fs.Glob(migrations.GetFS(), "*.sql")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list migrations: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Println("No migration files found")
		return
	}

	for _, filename := range files {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE name = $1", filename).Scan(&count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to check migration status: %v\n", err)
			os.Exit(1)
		}

		if count > 0 {
			fmt.Printf("Skipping %s (already executed)\n", filename)
			continue
		}

		content, err := fs.ReadFile(migrations.GetFS(), filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read migration file %s: %v\n", filename, err)
			os.Exit(1)
		}

		fmt.Printf("Running migration: %s\n", filename)
		if _, err := db.Exec(string(content)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to execute migration %s: %v\n", filename, err)
			os.Exit(1)
		}

		if _, err := db.Exec("INSERT INTO schema_migrations (name) VALUES ($1)", filename); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record migration %s: %v\n", filename, err)
			os.Exit(1)
		}

		fmt.Printf("Migration %s completed\n", filename)
	}

	fmt.Println("All migrations completed successfully")
}
