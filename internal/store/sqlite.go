package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MaxInvocations is how many journal rows are kept; older rows are pruned
// on insert.
const MaxInvocations = 1000

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// Hooks run concurrently as separate processes; a short busy timeout
	// keeps a locked journal from eating into the hook budget.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(200)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS configuration (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS invocations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			operation TEXT NOT NULL,
			outcome TEXT NOT NULL,
			fault TEXT,
			exit_code INTEGER,
			duration_ms INTEGER,
			detail TEXT,
			created_at INTEGER NOT NULL
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Configuration Implementation

func (s *SQLiteStore) SetConfig(key, value string) error {
	query := `INSERT INTO configuration (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := s.db.Exec(query, key, value)
	return err
}

func (s *SQLiteStore) GetConfig(key string) (string, error) {
	query := `SELECT value FROM configuration WHERE key = ?`
	row := s.db.QueryRow(query, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) ListConfig() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM configuration ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, rows.Err()
}

// Invocation Journal Implementation

func (s *SQLiteStore) RecordInvocation(inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	query := `INSERT INTO invocations (id, operation, outcome, fault, exit_code, duration_ms, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.Exec(query, inv.ID, inv.Operation, inv.Outcome, inv.Fault, inv.ExitCode, inv.DurationMs, inv.Detail, inv.CreatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}

	prune := `DELETE FROM invocations WHERE seq <= (SELECT MAX(seq) FROM invocations) - ?`
	if _, err := s.db.Exec(prune, MaxInvocations); err != nil {
		return fmt.Errorf("failed to prune journal: %w", err)
	}
	return nil
}

// ListInvocations returns the newest invocations first.
func (s *SQLiteStore) ListInvocations(limit int) ([]*Invocation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, operation, outcome, fault, exit_code, duration_ms, detail, created_at FROM invocations ORDER BY seq DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invocations []*Invocation
	for rows.Next() {
		var inv Invocation
		var fault, detail sql.NullString
		var createdAt int64
		if err := rows.Scan(&inv.ID, &inv.Operation, &inv.Outcome, &fault, &inv.ExitCode, &inv.DurationMs, &detail, &createdAt); err != nil {
			return nil, err
		}
		inv.Fault = fault.String
		inv.Detail = detail.String
		inv.CreatedAt = time.UnixMilli(createdAt)
		invocations = append(invocations, &inv)
	}
	return invocations, rows.Err()
}
