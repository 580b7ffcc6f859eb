// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists per-file upload outcomes in a SQLite database so
// repeated batch runs leave an auditable history.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dify-kb/internal/upload"
)

// Store manages the upload ledger SQLite database.
type Store struct {
	db *sql.DB

	// sourceDir, when set, is where recorded files are hashed from.
	sourceDir string
}

// Open opens or creates the ledger database at path, creating parent
// directories as needed. sourceDir may be empty; without it recorded
// entries carry no content hash.
func Open(path, sourceDir string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db, sourceDir: sourceDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT NOT NULL,
			sha256 TEXT,
			document_id TEXT,
			batch TEXT,
			status TEXT NOT NULL,
			error TEXT,
			uploaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_file ON uploads(file)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one outcome row. Implements upload.Recorder.
func (s *Store) Record(ctx context.Context, o upload.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (file, sha256, document_id, batch, status, error, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.File, s.hashFile(o.File), o.DocumentID, o.Batch, o.Status, o.Error,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting ledger row: %w", err)
	}
	return nil
}

// hashFile returns the hex SHA-256 of sourceDir/name, or "" when the file
// cannot be read.
func (s *Store) hashFile(name string) string {
	if s.sourceDir == "" || name == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(s.sourceDir, name))
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is one recorded upload outcome.
type Entry struct {
	File       string    `json:"file" yaml:"file"`
	SHA256     string    `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	DocumentID string    `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Batch      string    `json:"batch,omitempty" yaml:"batch,omitempty"`
	Status     string    `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// List returns entries newest first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT file, sha256, document_id, batch, status, error, uploaded_at
		FROM uploads ORDER BY rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var sha, docID, batch, errMsg sql.NullString
		var uploadedAt string
		if err := rows.Scan(&e.File, &sha, &docID, &batch, &e.Status, &errMsg, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		e.SHA256 = sha.String
		e.DocumentID = docID.String
		e.Batch = batch.String
		e.Error = errMsg.String
		if t, err := time.Parse(time.RFC3339Nano, uploadedAt); err == nil {
			e.UploadedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes all entries to path as a YAML list, newest first.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.List(ctx, 0)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
