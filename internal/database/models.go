package database

import (
	"time"
)

// DocumentKey identifies one cached rendering. PageSize is empty for
// formats without pages.
type DocumentKey struct {
	Year     int    `json:"year"`
	Format   string `json:"format"`
	Theme    string `json:"theme"`
	PageSize string `json:"page_size,omitempty"`
}

// Document is a rendered calendar export.
type Document struct {
	ID          int64     `json:"id,omitempty"`
	Year        int       `json:"year"`
	Format      string    `json:"format"`
	Theme       string    `json:"theme"`
	PageSize    string    `json:"page_size,omitempty"`
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename"`
	Content     []byte    `json:"-"`
	SHA256      string    `json:"sha256"`
	Size        int64     `json:"size"`
	Hits        int64     `json:"hits"`
	CreatedAt   time.Time `json:"created_at"`
	AccessedAt  time.Time `json:"accessed_at"`

	// Cached is set when the document was served from the cache rather
	// than rendered for this request. Not persisted.
	Cached bool `json:"cached"`
}

// Key returns the cache key of the document.
func (d *Document) Key() DocumentKey {
	return DocumentKey{Year: d.Year, Format: d.Format, Theme: d.Theme, PageSize: d.PageSize}
}

// CacheStats summarizes the document cache.
type CacheStats struct {
	Documents  int   `json:"documents"`
	TotalBytes int64 `json:"total_bytes"`
	TotalHits  int64 `json:"total_hits"`
}
