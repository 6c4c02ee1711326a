package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the game's event journal in one SQLite file.
type Store struct {
	db     *sql.DB
	drv    *entsql.Driver
	events *Events
}

// Open connects to the SQLite database at dsn, creating or upgrading the
// event tables as needed.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	ctx := context.Background()
	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := openJournal(ctx, db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		drv:    drv,
		events: &Events{db: db, seq: seq},
	}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, append(Tables, journalSequenceTable)...)
}

// DB is the raw connection, for queries the event log does not offer.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Events() *Events {
	return s.events
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// WAL lets `rpscam llm` and `rpscam history` read while a game is writing.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

func applyPragmas(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath is RPSCAM_DB when set, else rpscam.db in DataDir. The parent
// directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("RPSCAM_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "rpscam.db")
	return p, EnsureDir(p)
}

// DataDir is $XDG_DATA_HOME/rpscam, falling back to ~/.local/share/rpscam.
// The TUI log file lives here too.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "rpscam"), nil
}

// EnsureDir creates the directory path will live in.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
