package yuquemd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test history store
func createTestHistoryStore(t *testing.T) *HistoryStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewHistoryStore(dbPath)
	require.NoError(t, err, "should create history store")
	t.Cleanup(func() { store.Close() })
	return store
}

// TestNewHistoryStore_Empty verifies a new database has no records
func TestNewHistoryStore_Empty(t *testing.T) {
	store := createTestHistoryStore(t)

	records, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestRecord_FillsDefaults verifies ID and timestamp are generated
func TestRecord_FillsDefaults(t *testing.T) {
	store := createTestHistoryStore(t)

	rec, err := store.Record(ExportRecord{
		BookID:   "42",
		Slug:     "intro",
		Title:    "Intro",
		Path:     "Intro.md",
		Encoding: "utf-8",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ExportID)
	assert.False(t, rec.ExportedAt.IsZero())
}

// TestList_NewestFirst verifies ordering and limits
func TestList_NewestFirst(t *testing.T) {
	store := createTestHistoryStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, slug := range []string{"a", "b", "c"} {
		_, err := store.Record(ExportRecord{
			BookID:     "1",
			Slug:       slug,
			Title:      slug,
			Path:       slug + ".md",
			Encoding:   "utf-8",
			ExportedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Slug)
	assert.Equal(t, "a", all[2].Slug)
	assert.Equal(t, base.Add(2*time.Minute), all[0].ExportedAt)

	limited, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

// TestLastBySlug verifies lookups of the latest export of a document
func TestLastBySlug(t *testing.T) {
	store := createTestHistoryStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.Record(ExportRecord{BookID: "1", Slug: "doc", Title: "v1", Path: "v1.md", Encoding: "utf-8", ExportedAt: base})
	require.NoError(t, err)
	_, err = store.Record(ExportRecord{BookID: "1", Slug: "doc", Title: "v2", Path: "v2.md", Encoding: "gbk", ExportedAt: base.Add(time.Hour), CardErrors: 2})
	require.NoError(t, err)

	rec, err := store.LastBySlug("doc")
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Title)
	assert.Equal(t, "gbk", rec.Encoding)
	assert.Equal(t, 2, rec.CardErrors)

	_, err = store.LastBySlug("missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

// TestDelete verifies records can be removed
func TestDelete(t *testing.T) {
	store := createTestHistoryStore(t)

	rec, err := store.Record(ExportRecord{BookID: "1", Slug: "doc", Title: "t", Path: "t.md", Encoding: "utf-8"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(rec.ExportID))
	assert.ErrorIs(t, store.Delete(rec.ExportID), ErrRecordNotFound)
}
