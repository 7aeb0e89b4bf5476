package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// DomainRecord is one persisted file->domain mapping. file_path is the
// canonical absolute path and the natural key: re-processing the same file
// updates rather than duplicates.
type DomainRecord struct {
	FilePath  string
	FileName  string
	Domain    string
	UpdatedAt time.Time
}

// DomainRepository is the persistence collaborator for classifications.
type DomainRepository interface {
	Upsert(ctx context.Context, filePath, domain string) error
	QueryByDomain(ctx context.Context, domain string) ([]DomainRecord, error)
	ListDomains(ctx context.Context) ([]string, error)
	// ListAll returns every record in stable export order: domain, then file name.
	ListAll(ctx context.Context) ([]DomainRecord, error)
}

type domainRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewDomainRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) DomainRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if dialect == "" {
		dialect = DialectSQLite
	}
	return &domainRepository{db: db, dialect: dialect, logger: logger}
}

// rebind converts ? placeholders to $N for the Postgres backend.
func (r *domainRepository) rebind(q string) string {
	if r.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Upsert is idempotent and last-write-wins per file_path.
func (r *domainRepository) Upsert(ctx context.Context, filePath, domain string) error {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	name := filepath.Base(abs)
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO literature_domains (file_path, file_name, domain, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (file_path) DO UPDATE SET
			domain     = excluded.domain,
			file_name  = excluded.file_name,
			updated_at = excluded.updated_at`),
		abs, name, domain, now)
	if err != nil {
		return fmt.Errorf("upsert domain: %w", err)
	}

	r.logger.Debug("repo.domain.upsert", "file_path", abs, "domain", domain)
	return nil
}

func (r *domainRepository) QueryByDomain(ctx context.Context, domain string) ([]DomainRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT file_path, file_name, domain, updated_at
		FROM literature_domains
		WHERE domain = ?
		ORDER BY file_name`), domain)
	if err != nil {
		return nil, fmt.Errorf("query by domain: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *domainRepository) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT domain FROM literature_domains ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *domainRepository) ListAll(ctx context.Context) ([]DomainRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT file_path, file_name, domain, updated_at
		FROM literature_domains
		ORDER BY domain, file_name`)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]DomainRecord, error) {
	var out []DomainRecord
	for rows.Next() {
		var rec DomainRecord
		if err := rows.Scan(&rec.FilePath, &rec.FileName, &rec.Domain, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
