package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the credential as rows of a key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load() (entity.Credential, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT key, value FROM kv WHERE key IN (?, ?, ?)`, KeyToken, KeyUsername, KeyEmail)
	if err != nil {
		return entity.Credential{}, fmt.Errorf("query credential: %w", err)
	}
	defer rows.Close()

	var cred entity.Credential
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return entity.Credential{}, fmt.Errorf("scan credential: %w", err)
		}
		switch key {
		case KeyToken:
			cred.Token = value
		case KeyUsername:
			cred.Username = value
		case KeyEmail:
			cred.Email = value
		}
	}
	if err := rows.Err(); err != nil {
		return entity.Credential{}, fmt.Errorf("iterate credential: %w", err)
	}
	if cred.IsZero() {
		return entity.Credential{}, nil
	}
	return cred, nil
}

// Save replaces every credential key in one transaction.
func (s *SQLiteStore) Save(cred entity.Credential) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?, ?)`, KeyToken, KeyUsername, KeyEmail); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	for key, value := range map[string]string{KeyToken: cred.Token, KeyUsername: cred.Username, KeyEmail: cred.Email} {
		if value == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.ExecContext(context.Background(),
		`DELETE FROM kv WHERE key IN (?, ?, ?)`, KeyToken, KeyUsername, KeyEmail); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
