package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"modernc.org/sqlite"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/query"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// DBFileName is the SQLite file created under the base directory.
const DBFileName = "promptbase.db"

func init() {
	// SQLite's built-in lower() folds ASCII only
	sqlite.MustRegisterDeterministicScalarFunction(query.FoldFunc, 1, foldLower)
}

// foldLower lowercases text values with full Unicode rules. NULL stays NULL.
func foldLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Store is the prompts table behind either SQLite or PostgreSQL.
type Store struct {
	db      *sql.DB
	dialect query.Dialect
	log     *zap.Logger
}

// Open picks the backend from cfg: PostgreSQL when DatabaseURL is set,
// otherwise SQLite under baseDir. Pool settings from cfg are applied.
func Open(ctx context.Context, cfg *config.Config, baseDir string, log *zap.Logger) (*Store, error) {
	var (
		s   *Store
		err error
	)
	if cfg != nil && cfg.DatabaseURL != "" {
		s, err = OpenPostgres(ctx, cfg.DatabaseURL, log)
	} else {
		s, err = OpenSQLite(baseDir, log)
	}
	if err != nil {
		return nil, err
	}
	ConfigurePool(s.db, cfg)
	return s, nil
}

// OpenSQLite initializes the SQLite database at baseDir/promptbase.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.promptbase.
func OpenSQLite(baseDir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the DSN apply to every pooled connection
	dbPath := filepath.Join(baseDir, DBFileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	log.Debug("store opened", zap.String("dialect", "sqlite"), zap.String("path", dbPath))
	return &Store{db: db, dialect: query.DialectSQLite, log: log}, nil
}

// OpenPostgres connects through pgx's database/sql driver and migrates.
func OpenPostgres(ctx context.Context, url string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	connCfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := migratePostgres(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("store opened",
		zap.String("dialect", "postgres"),
		zap.String("host", connCfg.Host),
		zap.String("database", connCfg.Database))
	return &Store{db: db, dialect: query.DialectPostgres, log: log}, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// Dialect reports the placeholder style of the backend.
func (s *Store) Dialect() query.Dialect { return s.dialect }

// DB exposes the underlying handle for tests and diagnostics.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

const sqliteSchemaV1 = `
CREATE TABLE IF NOT EXISTS prompts (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  title       TEXT NOT NULL CHECK (length(trim(title)) > 0),
  body        TEXT NOT NULL CHECK (length(trim(body)) > 0),
  is_favorite INTEGER NOT NULL DEFAULT 0 CHECK (is_favorite IN (0, 1)),
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompts_created_at ON prompts(created_at DESC, id DESC);

CREATE INDEX IF NOT EXISTS idx_prompts_favorite ON prompts(created_at DESC)
WHERE is_favorite = 1;
`

const postgresSchemaV1 = `
CREATE TABLE IF NOT EXISTS prompts (
  id          BIGSERIAL PRIMARY KEY,
  title       TEXT NOT NULL CHECK (length(trim(title)) > 0),
  body        TEXT NOT NULL CHECK (length(trim(body)) > 0),
  is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
  created_at  BIGINT NOT NULL,
  updated_at  BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompts_created_at ON prompts(created_at DESC, id DESC);

CREATE INDEX IF NOT EXISTS idx_prompts_favorite ON prompts(created_at DESC)
WHERE is_favorite;
`

// postgresFoldFunc is recreated on every open. lower() is already
// Unicode-aware under a UTF-8 database encoding.
const postgresFoldFunc = `CREATE OR REPLACE FUNCTION ` + query.FoldFunc + `(s text) RETURNS text
LANGUAGE sql IMMUTABLE STRICT PARALLEL SAFE AS 'SELECT lower(s)'`

// migrateSQLite applies schema migrations based on user_version.
func migrateSQLite(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		if _, err := db.Exec(sqliteSchemaV1); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// migratePostgres tracks the version in a one-column schema_version table.
func migratePostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema_version: %w", err)
	}

	if version < 1 {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		defer tx.Rollback()

		for _, stmt := range splitStatements(postgresSchemaV1) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration 1 failed: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, 1); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, postgresFoldFunc); err != nil {
		return fmt.Errorf("failed to create %s: %w", query.FoldFunc, err)
	}
	return nil
}

// splitStatements splits a schema script on ";" for drivers that run one
// statement per Exec.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
