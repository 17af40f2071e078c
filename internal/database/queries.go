package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	// Try RFC3339 format first (with timezone)
	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return &t
	}

	// Try SQLite datetime format (no timezone)
	t, err = time.Parse(time.DateTime, ns.String)
	if err == nil {
		return &t
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one row of documentColumns. withContent controls
// whether the payload column is part of the row.
func scanDocument(row scanner, withContent bool) (*Document, error) {
	var doc Document
	var createdAt, accessedAt sql.NullString

	dest := []any{
		&doc.ID, &doc.Year, &doc.Format, &doc.Theme, &doc.PageSize,
		&doc.ContentType, &doc.Filename, &doc.SHA256, &doc.Size,
		&doc.Hits, &createdAt, &accessedAt,
	}
	if withContent {
		dest = append(dest, &doc.Content)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if t := parseTimestamp(createdAt); t != nil {
		doc.CreatedAt = *t
	}
	if t := parseTimestamp(accessedAt); t != nil {
		doc.AccessedAt = *t
	}
	return &doc, nil
}

const documentColumns = `
	id, year, format, theme, page_size,
	content_type, filename, sha256, size,
	hits, created_at, accessed_at`

// =============================================================================
// Document Queries
// =============================================================================

// GetDocument returns the cached document for key and records the hit.
// Returns ErrNotFound if nothing is cached under key.
func (db *DB) GetDocument(ctx context.Context, key DocumentKey) (*Document, error) {
	var doc *Document

	err := db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE rendered_documents
			SET hits = hits + 1, accessed_at = datetime('now')
			WHERE year = ? AND format = ? AND theme = ? AND page_size = ?
		`, key.Year, key.Format, key.Theme, key.PageSize)
		if err != nil {
			return fmt.Errorf("record document hit: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		row := tx.QueryRowContext(ctx, `
			SELECT `+documentColumns+`, content
			FROM rendered_documents
			WHERE year = ? AND format = ? AND theme = ? AND page_size = ?
		`, key.Year, key.Format, key.Theme, key.PageSize)

		doc, err = scanDocument(row, true)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("query document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// PutDocument stores doc, replacing any document under the same key.
// The hit counter of a replaced document is reset. On success doc.ID is set.
func (db *DB) PutDocument(ctx context.Context, doc *Document) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO rendered_documents (
			year, format, theme, page_size, content_type, filename, content, sha256, size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (year, format, theme, page_size) DO UPDATE SET
			content_type = excluded.content_type,
			filename = excluded.filename,
			content = excluded.content,
			sha256 = excluded.sha256,
			size = excluded.size,
			hits = 0,
			created_at = datetime('now'),
			accessed_at = datetime('now')
		RETURNING id, created_at
	`,
		doc.Year, doc.Format, doc.Theme, doc.PageSize,
		doc.ContentType, doc.Filename, doc.Content, doc.SHA256, int64(len(doc.Content)),
	)

	var createdAt sql.NullString
	if err := row.Scan(&doc.ID, &createdAt); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	doc.Size = int64(len(doc.Content))
	doc.Hits = 0
	if t := parseTimestamp(createdAt); t != nil {
		doc.CreatedAt = *t
		doc.AccessedAt = *t
	}

	db.logger.Debug("document cached",
		"year", doc.Year,
		"format", doc.Format,
		"theme", doc.Theme,
		"page_size", doc.PageSize,
		"size", doc.Size,
	)

	return nil
}

// ListDocuments returns cache metadata without payloads, most recently
// accessed first. year 0 lists every year.
func (db *DB) ListDocuments(ctx context.Context, year int) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM rendered_documents`
	var args []any
	if year != 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY accessed_at DESC, year ASC, format ASC, theme ASC, page_size ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// DeleteDocuments removes cached documents of a year, or all of them when
// year is 0. Returns the number of rows removed.
func (db *DB) DeleteDocuments(ctx context.Context, year int) (int64, error) {
	query := `DELETE FROM rendered_documents`
	var args []any
	if year != 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted documents: %w", err)
	}

	db.logger.Info("document cache purged", "year", year, "removed", n)
	return n, nil
}

// CacheStats summarizes the cache contents.
func (db *DB) CacheStats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(hits), 0)
		FROM rendered_documents
	`).Scan(&stats.Documents, &stats.TotalBytes, &stats.TotalHits)
	if err != nil {
		return nil, fmt.Errorf("query cache stats: %w", err)
	}
	return &stats, nil
}
