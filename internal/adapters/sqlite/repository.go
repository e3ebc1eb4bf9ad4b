package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database. Schema migrations are managed by dbmate
// (DBMATE_MIGRATIONS_DIR=internal/adapters/sqlite/migrations); Migrate
// applies the same files for tests and fresh local databases.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Migrate runs the "migrate:up" section of every embedded migration in
// file-name order. Statements are idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, upSection(string(raw))); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

func upSection(sqlText string) string {
	up := sqlText
	if i := strings.Index(up, "-- migrate:up"); i >= 0 {
		up = up[i+len("-- migrate:up"):]
	}
	if i := strings.Index(up, "-- migrate:down"); i >= 0 {
		up = up[:i]
	}
	return up
}

// ── Documents ─────────────────────────────────────────────────────────────────

func (r *Repository) SaveDocument(ctx context.Context, d *domain.StoredDocument) error {
	body, err := json.Marshal(&d.Document)
	if err != nil {
		return err
	}
	validation, err := json.Marshal(&d.Validation)
	if err != nil {
		return err
	}
	d.CreatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			correlation_id, request_id, file_name, from_email,
			agency_name, detail_count, result, body, validation, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		d.CorrelationID, d.File.RequestID, d.File.Name, d.File.FromEmail,
		d.Document.Header.AgencyName, len(d.Document.Details), string(d.Validation.Result),
		string(body), string(validation), d.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	d.ID = id
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id int64) (*domain.StoredDocument, error) {
	d := &domain.StoredDocument{}
	var body, validation string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, correlation_id, request_id, file_name, from_email,
		       body, validation, created_at
		FROM documents WHERE id=?`, id).Scan(
		&d.ID, &d.CorrelationID, &d.File.RequestID, &d.File.Name, &d.File.FromEmail,
		&body, &validation, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(body), &d.Document); err != nil {
		return nil, fmt.Errorf("document %d body: %w", id, err)
	}
	if err := json.Unmarshal([]byte(validation), &d.Validation); err != nil {
		return nil, fmt.Errorf("document %d validation: %w", id, err)
	}
	return d, nil
}

func (r *Repository) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, correlation_id, request_id, file_name, agency_name,
		       detail_count, result, created_at
		FROM documents ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.DocumentSummary
	for rows.Next() {
		var s domain.DocumentSummary
		var result string
		if err := rows.Scan(&s.ID, &s.CorrelationID, &s.RequestID, &s.FileName, &s.AgencyName,
			&s.DetailCount, &result, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Result = domain.RuleOutcome(result)
		list = append(list, s)
	}
	return list, rows.Err()
}

// ── Runs ──────────────────────────────────────────────────────────────────────

func (r *Repository) SaveRun(ctx context.Context, run *domain.Run) error {
	run.CreatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (document_id, correlation_id, stage, status, detail, created_at)
		VALUES (?,?,?,?,?,?)`,
		run.DocumentID, run.CorrelationID, run.Stage, run.Status, run.Detail, run.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	run.ID = id
	return nil
}

func (r *Repository) ListRuns(ctx context.Context, documentID int64) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, correlation_id, stage, status, detail, created_at
		FROM runs WHERE document_id=? ORDER BY id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Run
	for rows.Next() {
		var run domain.Run
		if err := rows.Scan(&run.ID, &run.DocumentID, &run.CorrelationID,
			&run.Stage, &run.Status, &run.Detail, &run.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

// ── Artifacts ─────────────────────────────────────────────────────────────────

func (r *Repository) PutArtifact(ctx context.Context, key, contentType string, body []byte) error {
	if body == nil {
		body = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (key, content_type, body, created_at) VALUES (?,?,?,?)
		ON CONFLICT(key) DO UPDATE SET
			content_type=excluded.content_type,
			body=excluded.body,
			created_at=excluded.created_at`,
		key, contentType, body, time.Now(),
	)
	return err
}

func (r *Repository) GetArtifact(ctx context.Context, key string) (*domain.Artifact, error) {
	a := &domain.Artifact{}
	err := r.db.QueryRowContext(ctx, `
		SELECT key, content_type, body, created_at FROM artifacts WHERE key=?`, key).Scan(
		&a.Key, &a.ContentType, &a.Body, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %q: %w", key, ports.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) ListArtifacts(ctx context.Context, prefix string) ([]domain.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, content_type, created_at FROM artifacts
		WHERE substr(key, 1, ?) = ? ORDER BY key`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(&a.Key, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ── Sales areas ───────────────────────────────────────────────────────────────

// ReplaceSalesAreas swaps the stored reference table for rows, keeping their
// order.
func (r *Repository) ReplaceSalesAreas(ctx context.Context, rows []domain.SalesArea) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales_areas`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_areas (
			position, station_id, number, parent_number, code, break_code, geography, name
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, sa := range rows {
		if _, err := stmt.ExecContext(ctx, i, sa.StationID, sa.Number, sa.ParentNumber,
			sa.Code, sa.BreakCode, sa.Geography, sa.Name); err != nil {
			return fmt.Errorf("sales area row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// SalesAreas returns the stored reference table. Satisfies ports.SalesAreaSource.
func (r *Repository) SalesAreas(ctx context.Context) ([]domain.SalesArea, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT station_id, number, parent_number, code, break_code, geography, name
		FROM sales_areas ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.SalesArea
	for rows.Next() {
		var sa domain.SalesArea
		if err := rows.Scan(&sa.StationID, &sa.Number, &sa.ParentNumber,
			&sa.Code, &sa.BreakCode, &sa.Geography, &sa.Name); err != nil {
			return nil, err
		}
		list = append(list, sa)
	}
	return list, rows.Err()
}
