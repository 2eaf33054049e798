package yuquemd

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRecordNotFound is returned when no export record matches a lookup.
var ErrRecordNotFound = errors.New("export record not found")

// HistoryStore keeps a record of every exported document in SQLite.
type HistoryStore struct {
	db *sql.DB
}

// ExportRecord describes one completed export.
type ExportRecord struct {
	ExportID   uuid.UUID `json:"export_id"`
	BookID     string    `json:"book_id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	URL        string    `json:"url"`
	Path       string    `json:"path"`
	Encoding   string    `json:"encoding"`
	CardErrors int       `json:"card_errors"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewHistoryStore opens (or creates) the history database at dsn.
func NewHistoryStore(dsn string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the exports table if it doesn't exist.
func (h *HistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		export_id TEXT PRIMARY KEY,
		book_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT,
		url TEXT,
		path TEXT NOT NULL,
		encoding TEXT NOT NULL,
		card_errors INTEGER DEFAULT 0,
		exported_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS exports_slug ON exports (slug);
	`

	_, err := h.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Record stores a completed export. ExportID and ExportedAt are filled in
// when zero.
func (h *HistoryStore) Record(rec ExportRecord) (*ExportRecord, error) {
	if rec.ExportID == uuid.Nil {
		rec.ExportID = uuid.New()
	}
	if rec.ExportedAt.IsZero() {
		rec.ExportedAt = time.Now()
	}

	query := `
		INSERT INTO exports (
			export_id, book_id, slug, title, author, url,
			path, encoding, card_errors, exported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(query,
		rec.ExportID.String(),
		rec.BookID,
		rec.Slug,
		rec.Title,
		rec.Author,
		rec.URL,
		rec.Path,
		rec.Encoding,
		rec.CardErrors,
		formatTime(rec.ExportedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert export record: %w", err)
	}

	return &rec, nil
}

const selectExports = `
	SELECT export_id, book_id, slug, title, author, url,
	       path, encoding, card_errors, exported_at
	FROM exports
`

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (h *HistoryStore) List(limit int) ([]ExportRecord, error) {
	query := selectExports + " ORDER BY exported_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	records := []ExportRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exports: %w", err)
	}

	return records, nil
}

// LastBySlug returns the most recent export of the document with the given
// slug.
func (h *HistoryStore) LastBySlug(slug string) (*ExportRecord, error) {
	query := selectExports + " WHERE slug = ? ORDER BY exported_at DESC, rowid DESC LIMIT 1"

	rec, err := scanRecord(h.db.QueryRow(query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record by ID.
func (h *HistoryStore) Delete(exportID uuid.UUID) error {
	result, err := h.db.Exec("DELETE FROM exports WHERE export_id = ?", exportID.String())
	if err != nil {
		return fmt.Errorf("failed to delete export record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ExportRecord, error) {
	var rec ExportRecord
	var exportIDStr, exportedAtStr string
	var author, url sql.NullString

	err := row.Scan(
		&exportIDStr, &rec.BookID, &rec.Slug, &rec.Title, &author, &url,
		&rec.Path, &rec.Encoding, &rec.CardErrors, &exportedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export record: %w", err)
	}

	rec.ExportID, _ = uuid.Parse(exportIDStr)
	rec.ExportedAt = parseTime(exportedAtStr)
	rec.Author = author.String
	rec.URL = url.String

	return &rec, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Helper functions for time formatting
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
