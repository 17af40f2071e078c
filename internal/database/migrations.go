package database

// migrationsSQL holds the schema history of the document cache, applied in
// version order. A version runs once; schema_migrations records it.
var migrationsSQL = map[int]string{
	1: migrationV1RenderedDocuments,
	2: migrationV2AccessIndex,
	3: migrationV3PageSizeKey,
}

// migrationV1RenderedDocuments creates the document cache.
//
// One row per (year, format, theme); version 3 widens the key. Rendering is deterministic, so a row
// stays valid until the layout code changes; the cache is purged on deploy
// through the admin endpoint or the CLI.
const migrationV1RenderedDocuments = `
-- Migration 001: rendered document cache

CREATE TABLE IF NOT EXISTS rendered_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Cache key
    year INTEGER NOT NULL CHECK (year BETWEEN 1 AND 9999),
    format TEXT NOT NULL,
    theme TEXT NOT NULL CHECK (theme IN ('light', 'dark')),

    -- Payload
    content_type TEXT NOT NULL,
    filename TEXT NOT NULL,
    content BLOB NOT NULL,
    sha256 TEXT NOT NULL,
    size INTEGER NOT NULL,

    -- Usage
    hits INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    accessed_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (year, format, theme)
);

CREATE INDEX IF NOT EXISTS idx_rendered_documents_year
    ON rendered_documents(year);
`

// migrationV2AccessIndex supports listing the cache by last access.
const migrationV2AccessIndex = `
-- Migration 002: access ordering

CREATE INDEX IF NOT EXISTS idx_rendered_documents_accessed
    ON rendered_documents(accessed_at);
`

// migrationV3PageSizeKey adds the PDF page size to the cache key. SQLite
// cannot change a UNIQUE constraint in place, so the table is rebuilt.
// PDF rows from before this version do not record their page size and are
// dropped; they are re-rendered on the next request.
const migrationV3PageSizeKey = `
-- Migration 003: page size in the cache key

CREATE TABLE rendered_documents_v3 (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Cache key
    year INTEGER NOT NULL CHECK (year BETWEEN 1 AND 9999),
    format TEXT NOT NULL,
    theme TEXT NOT NULL CHECK (theme IN ('light', 'dark')),
    page_size TEXT NOT NULL DEFAULT '' CHECK (page_size IN ('', 'A4', 'A3', 'Letter')),

    -- Payload
    content_type TEXT NOT NULL,
    filename TEXT NOT NULL,
    content BLOB NOT NULL,
    sha256 TEXT NOT NULL,
    size INTEGER NOT NULL,

    -- Usage
    hits INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    accessed_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (year, format, theme, page_size)
);

INSERT INTO rendered_documents_v3 (
    year, format, theme, page_size,
    content_type, filename, content, sha256, size,
    hits, created_at, accessed_at
)
SELECT
    year, format, theme, '',
    content_type, filename, content, sha256, size,
    hits, created_at, accessed_at
FROM rendered_documents
WHERE format <> 'pdf';

DROP TABLE rendered_documents;
ALTER TABLE rendered_documents_v3 RENAME TO rendered_documents;

CREATE INDEX IF NOT EXISTS idx_rendered_documents_year
    ON rendered_documents(year);
CREATE INDEX IF NOT EXISTS idx_rendered_documents_accessed
    ON rendered_documents(accessed_at);
`
