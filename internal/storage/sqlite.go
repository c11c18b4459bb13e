package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/checksum"
	"github.com/starford/lotpad/internal/models"
)

const filesSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite implements Provider on a single SQLite table.
type SQLite struct {
	conn *sql.DB
}

var _ Provider = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(filesSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) List() ([]models.FileInfo, error) {
	rows, err := s.conn.Query(`SELECT name, checksum, length(CAST(content AS BLOB)), updated_at FROM files ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w: %w", apperr.ErrPersistence, err)
	}
	defer rows.Close()

	out := []models.FileInfo{}
	for rows.Next() {
		var fi models.FileInfo
		if err := rows.Scan(&fi.Name, &fi.Checksum, &fi.Size, &fi.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan: %w: %w", apperr.ErrPersistence, err)
		}
		out = append(out, fi)
	}
	return out, rows.Err()
}

func (s *SQLite) Read(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	var content string
	err := s.conn.QueryRow(`SELECT content FROM files WHERE name = ?`, name).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: read %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return content, nil
}

func (s *SQLite) Write(name, content string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	_, err := s.conn.Exec(`
		INSERT INTO files (name, content, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content    = excluded.content,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, name, content, checksum.String(content), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: write %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return nil
}

func (s *SQLite) Delete(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	res, err := s.conn.Exec(`DELETE FROM files WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
	}
	return nil
}
