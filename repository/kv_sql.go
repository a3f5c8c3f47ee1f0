package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// SQLDialect selects placeholder and upsert syntax for a SQL key-value store
type SQLDialect int

const (
	DialectSQLite SQLDialect = iota
	DialectPostgres
)

// SQLKeyValueStore stores documents in a fee_documents table.
// It serves both the SQLite (modernc.org/sqlite) and PostgreSQL (pgx) backends.
type SQLKeyValueStore struct {
	db      *sql.DB
	dialect SQLDialect
}

// Ensure SQLKeyValueStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*SQLKeyValueStore)(nil)

// NewSQLKeyValueStore creates the fee_documents table if needed
func NewSQLKeyValueStore(ctx context.Context, conn *sql.DB, dialect SQLDialect) (*SQLKeyValueStore, error) {
	store := &SQLKeyValueStore{db: conn, dialect: dialect}
	if err := store.migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLKeyValueStore) migrate(ctx context.Context) error {
	valueType := "BLOB"
	if s.dialect == DialectPostgres {
		valueType = "BYTEA"
	}
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS fee_documents (
			key TEXT PRIMARY KEY,
			value %s NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`, valueType)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create fee_documents table: %w", err)
	}
	return nil
}

func (s *SQLKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM fee_documents WHERE key = ?`
	if s.dialect == DialectPostgres {
		query = `SELECT value FROM fee_documents WHERE key = $1`
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fee document: %w", err)
	}
	return value, nil
}

func (s *SQLKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO fee_documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if s.dialect == DialectPostgres {
		query = `
			INSERT INTO fee_documents (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`
	}

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		log.Printf("❌ PutFeeDocument: Error writing key=%s: %v", key, err)
		return fmt.Errorf("failed to write fee document: %w", err)
	}
	return nil
}
