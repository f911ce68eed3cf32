package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// driverName is go-sqlite3 with a casefold(text) SQL function. SQLite's own
// LOWER() only folds ASCII.
const driverName = "sqlite3_fitness"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", caseFold, true)
		},
	})
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// caseFold is applied to both the stored column and the search text.
func caseFold(s string) string {
	return strings.ToLower(s)
}

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
	*sqlx.DB
}

// Open connects to the database at path and applies pending migrations.
func Open(path string) (*DB, error) {
	d, err := Connect(path)
	if err != nil {
		return nil, err
	}

	if err := d.Migrate(context.Background()); err != nil {
		d.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Connect opens the database at path without touching its schema.
func Connect(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sqlx.Open(driverName, path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{conn}, nil
}

// Migrate applies every pending embedded migration.
func (db *DB) Migrate(ctx context.Context) error {
	if err := configureGoose(goose.NopLogger()); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB.DB, "migrations")
}

// MigrationStatus prints the applied state of each embedded migration to stdout.
func (db *DB) MigrationStatus(ctx context.Context) error {
	if err := configureGoose(log.New(os.Stdout, "", 0)); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB.DB, "migrations")
}

func configureGoose(logger goose.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	return nil
}

// Queries returns the repositories bound to this database.
func (db *DB) Queries() *Queries {
	return &Queries{
		Users:     NewUserRepository(db),
		Exercises: NewExerciseRepository(db),
		Plans:     NewPlanRepository(db),
	}
}

type Queries struct {
	Users     *UserRepository
	Exercises *ExerciseRepository
	Plans     *PlanRepository
}
