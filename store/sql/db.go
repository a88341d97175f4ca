package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Config is the subset of the persistence configuration the open
// helpers need. GetServer carries the driver DSN.
type Config interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// Open builds a persistence client for the configured driver.
func Open(cfg Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: config is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.GetDriver())) {
	case "postgres", "postgresql", "pg":
		return OpenPostgres(cfg)
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.GetDriver())
	}
}

// OpenPostgres opens a lib/pq backed persistence client.
func OpenPostgres(cfg Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: config is required")
	}
	sqlDB, err := sql.Open("postgres", cfg.GetServer())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// OpenSQLite opens a mattn/go-sqlite3 backed persistence client.
// Shared in-memory databases are pinned to a single connection so every
// session sees the same schema.
func OpenSQLite(cfg Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: config is required")
	}
	dsn := cfg.GetServer()
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	if strings.Contains(dsn, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}
