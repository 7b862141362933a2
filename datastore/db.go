package datastore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed postgres_schema.sql
var postgresSchemaSQL string

// ErrDatabaseExists is returned when the target file already holds tables.
var ErrDatabaseExists = errors.New("database already contains a schema")

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// sqliteDSN enables foreign-key enforcement on every connection.
func sqliteDSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// CreateSchema opens (creating if needed) the SQLite file at path and
// creates every table and index. It fails with ErrDatabaseExists if the file
// already has tables; there is no migration path.
func CreateSchema(ctx context.Context, path string, logger *slog.Logger) (*SQLiteDataStore, error) {
	db, err := sqlx.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("Error opening database %s: %w", path, err)
	}
	// One connection: a single writer owns the file for the whole run.
	db.SetMaxOpenConns(1)

	var tables int
	if err := db.GetContext(ctx, &tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'"); err != nil {
		db.Close()
		return nil, fmt.Errorf("Error inspecting database %s: %w", path, err)
	}
	if tables > 0 {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrDatabaseExists)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("Error creating schema in %s: %w", path, err)
	}

	return NewSQLiteDataStore(db, logger), nil
}

// Initialize a SQLiteDataStore around an open handle.
func NewSQLiteDataStore(db *sqlx.DB, logger *slog.Logger) *SQLiteDataStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteDataStore{db: db, logger: logger}
}

/*-------------------------------------------------------------------------------------------------*/

// Config creates pgxpool.Config with default settings for the mirror.
func Config(dsn string) (*pgxpool.Config, error) {
	const defaultMaxConns = int32(4)
	const defaultMinConns = int32(0)
	const defaultMaxConnLifetime = time.Minute * 10
	const defaultMaxIdletime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("Error parsing dsn to config: %w", err)
	}

	config.MaxConns = defaultMaxConns
	config.MinConns = defaultMinConns
	config.MaxConnLifetime = defaultMaxConnLifetime
	config.MaxConnIdleTime = defaultMaxIdletime
	config.HealthCheckPeriod = defaultHealthCheckPeriod
	config.ConnConfig.ConnectTimeout = defaultConnectTimeout
	return config, nil
}

// NewDBPool creates a new PostgreSQL connection pool from config.
func NewDBPool(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	cp, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("Error in NewDBPool: %w", err)
	}
	return cp, nil
}

// Initialize a new PostgresDataStore with a connection pool.
func NewPostgresDataStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresDataStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDataStore{cp: pool, logger: logger}
}
