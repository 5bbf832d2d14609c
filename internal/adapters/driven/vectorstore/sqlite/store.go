// Package sqlite provides the persistent vector index and document
// registry, backed by a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexsearch-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorIndex      = (*Store)(nil)
	_ driven.DocumentRegistry = (*Store)(nil)
)

// filterColumns are the metadata fields a search filter may restrict on.
// Anything else is rejected rather than interpolated into SQL.
var filterColumns = map[string]bool{
	"doc_name": true,
	"doc_type": true,
	"status":   true,
}

// Store is the SQLite-backed vector index and document registry.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.lexsearch/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lexsearch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode keeps retrieval queries concurrent with ingestion writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// Upsert inserts or replaces entries by chunk id inside one transaction.
func (s *Store) Upsert(ctx context.Context, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, doc_name, doc_type, source_id, chapter, article,
			article_title, clause, point, status, effective_date, keywords,
			original_text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_name = excluded.doc_name,
			doc_type = excluded.doc_type,
			source_id = excluded.source_id,
			chapter = excluded.chapter,
			article = excluded.article,
			article_title = excluded.article_title,
			clause = excluded.clause,
			point = excluded.point,
			status = excluded.status,
			effective_date = excluded.effective_date,
			keywords = excluded.keywords,
			original_text = excluded.original_text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		m := e.Metadata
		if _, err := stmt.ExecContext(ctx, e.ID,
			m["doc_name"], m["doc_type"], m["source_id"], m["chapter"],
			m["article"], m["article_title"], m["clause"], m["point"],
			m["status"], m["effective_date"], m["keywords"],
			e.Text, float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns up to k entries ordered by ascending cosine distance.
// Filters push down to the WHERE clause; ranking happens in Go over the
// filtered candidate vectors.
func (s *Store) Search(ctx context.Context, vector []float32, k int, filters map[string]string) ([]driven.Hit, error) {
	if k <= 0 {
		k = 5
	}

	query := `
		SELECT id, doc_name, doc_type, source_id, chapter, article,
			article_title, clause, point, status, effective_date, keywords,
			original_text, embedding
		FROM chunks`
	keys := make([]string, 0, len(filters))
	for key, want := range filters {
		if want == "" {
			continue
		}
		if !filterColumns[key] {
			return nil, fmt.Errorf("unsupported filter field %q: %w", key, domain.ErrInvalidInput)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var where []string
	var args []any
	for _, key := range keys {
		where = append(where, key+" = ?")
		args = append(args, filters[key])
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit //nolint:prealloc // size unknown from query
	for rows.Next() {
		hit, embedding, err := scanHit(rows)
		if err != nil {
			return nil, err
		}
		hit.Distance = cosineDistance(vector, embedding)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteByDocument removes every chunk whose doc_name matches.
func (s *Store) DeleteByDocument(ctx context.Context, docName string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE doc_name = ?", docName); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Stats returns aggregate index statistics.
func (s *Store) Stats(ctx context.Context) (driven.Stats, error) {
	stats := driven.Stats{Documents: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, "SELECT doc_name, COUNT(*) FROM chunks GROUP BY doc_name")
	if err != nil {
		return stats, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return stats, fmt.Errorf("scanning stats: %w", err)
		}
		stats.Documents[name] = count
		stats.TotalChunks += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating stats: %w", err)
	}
	return stats, nil
}

// ==================== Document Registry ====================

// Save stores or updates a document record.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	var effective any
	if doc.EffectiveDate != nil {
		effective = doc.EffectiveDate.Format("2006-01-02")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, filename, source_id, type, status,
			effective_date, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			filename = excluded.filename,
			source_id = excluded.source_id,
			type = excluded.type,
			status = excluded.status,
			effective_date = excluded.effective_date,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at
	`, doc.Name, doc.Filename, doc.SourceID, string(doc.Type), string(doc.Status),
		effective, doc.ChunkCount, doc.IngestedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by canonical name.
func (s *Store) Get(ctx context.Context, name string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, filename, source_id, type, status, effective_date,
			chunk_count, ingested_at
		FROM documents WHERE name = ?
	`, name)

	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// List returns all registered documents ordered by name.
func (s *Store) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, filename, source_id, type, status, effective_date,
			chunk_count, ingested_at
		FROM documents ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document record by canonical name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Scanning helpers ====================

// scanHit scans one chunk row into a Hit plus its embedding.
func scanHit(rows *sql.Rows) (driven.Hit, []float32, error) {
	var hit driven.Hit
	var m [11]string
	var blob []byte

	if err := rows.Scan(&hit.ID, &m[0], &m[1], &m[2], &m[3], &m[4], &m[5],
		&m[6], &m[7], &m[8], &m[9], &m[10], &hit.Text, &blob); err != nil {
		return hit, nil, fmt.Errorf("scanning chunk: %w", err)
	}

	hit.Metadata = map[string]string{
		"doc_name":       m[0],
		"doc_type":       m[1],
		"source_id":      m[2],
		"chapter":        m[3],
		"article":        m[4],
		"article_title":  m[5],
		"clause":         m[6],
		"point":          m[7],
		"status":         m[8],
		"effective_date": m[9],
		"keywords":       m[10],
	}
	return hit, bytesToFloat32Slice(blob), nil
}

// scanDocument scans one document row using the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var docType, status string
	var effective sql.NullString
	var ingestedAt sql.NullTime

	if err := scan(&doc.Name, &doc.Filename, &doc.SourceID, &docType, &status,
		&effective, &doc.ChunkCount, &ingestedAt); err != nil {
		return nil, err
	}

	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	if effective.Valid && effective.String != "" {
		if t, err := time.Parse("2006-01-02", effective.String); err == nil {
			doc.EffectiveDate = &t
		}
	}
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineDistance is 1 minus the cosine similarity of a and b.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
