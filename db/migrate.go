// Command migrate manages the deferred-publish queue schema. The API server
// applies pending migrations itself at startup; this tool exists for rolling
// the schema back and for applying it to a database the server never touches.
// Run it from the repo root so the file source resolves:
//
//	go run ./db -direction up
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/config"
)

func main() {
	msg, err := run(os.Args[1:], defaultDeps())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(msg)
}

type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
}

// deps is swapped out in tests so no real Postgres is needed.
type deps struct {
	loadEnv     func(...string) error
	databaseURL func() string
	openDB      func(driverName, dataSourceName string) (*sql.DB, error)
	newMigrator func(db *sql.DB) (migrator, error)
}

func defaultDeps() deps {
	return deps{
		loadEnv:     godotenv.Load,
		databaseURL: func() string { return config.FromEnv().DatabaseURL },
		openDB:      sql.Open,
		newMigrator: newQueueMigrator,
	}
}

func newQueueMigrator(db *sql.DB) (migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("Failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://db/migrations", "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("Failed to create migrate instance: %w", err)
	}
	return m, nil
}

type options struct {
	direction string
	steps     int
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	var o options
	fs.StringVar(&o.direction, "direction", "up", "Migration direction: up or down")
	fs.IntVar(&o.steps, "steps", 0, "Number of migration steps (0 = all)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch o.direction {
	case "up", "down":
		return o, nil
	default:
		return options{}, fmt.Errorf("Invalid direction: %s (must be 'up' or 'down')", o.direction)
	}
}

func run(args []string, d deps) (string, error) {
	o, err := parseArgs(args)
	if err != nil {
		return "", err
	}

	if d.loadEnv != nil {
		_ = d.loadEnv()
	}

	databaseURL := d.databaseURL()
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := d.openDB("postgres", databaseURL)
	if err != nil {
		return "", fmt.Errorf("Failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := d.newMigrator(db)
	if err != nil {
		return "", err
	}

	err = applyDirection(m, o.direction, o.steps)
	if err == migrate.ErrNoChange {
		return "No migrations to apply", nil
	}
	if err != nil {
		return "", fmt.Errorf("Migration failed: %w", err)
	}
	return fmt.Sprintf("Migration %s completed successfully", o.direction), nil
}

func applyDirection(m migrator, direction string, steps int) error {
	switch direction {
	case "up":
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case "down":
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	default:
		return fmt.Errorf("Invalid direction: %s (must be 'up' or 'down')", direction)
	}
}
