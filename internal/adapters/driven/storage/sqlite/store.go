package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/axchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// IndexVersion identifies the index schema and tokenisation scheme.
// Bump it when either changes so stale indexes surface in status output.
const IndexVersion = "fts5-v1"

// Meta keys persisted alongside the index.
const (
	metaIndexedAt = "indexed_at"
	metaVersion   = "version"
	metaDocuments = "documents"
	metaChunks    = "chunks"
)

// Store is the SQLite FTS5 retrieval index.
// It implements the driven.RetrievalIndex interface.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the index database at the given path.
// If path is empty, defaults to ~/.axchat/data/index.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".axchat", "data", "index.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	// Run migrations
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
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
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

// Replace swaps the entire index for the given chunk set in one
// transaction. Readers see either the old index or the new one, never a
// partial build.
func (s *Store) Replace(ctx context.Context, chunks []domain.Chunk, build domain.BuildResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM documents", "DELETE FROM documents_fts"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	insertDoc, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (path, title, anchor, route, excerpt, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer insertDoc.Close()

	insertFTS, err := tx.PrepareContext(ctx, `
		INSERT INTO documents_fts (content, title, path, anchor, source, doc_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing fts insert: %w", err)
	}
	defer insertFTS.Close()

	updatedAt := build.IndexedAt.UnixMilli()
	for _, chunk := range chunks {
		result, err := insertDoc.ExecContext(ctx,
			chunk.Path, chunk.Title, nullable(chunk.Anchor), chunk.Route,
			nullable(chunk.Excerpt), chunk.Source, updatedAt)
		if err != nil {
			return fmt.Errorf("inserting document row: %w", err)
		}
		docID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading document row id: %w", err)
		}
		if _, err := insertFTS.ExecContext(ctx,
			chunk.Content, chunk.Title, chunk.Path, chunk.Anchor, chunk.Source, docID); err != nil {
			return fmt.Errorf("inserting fts row: %w", err)
		}
	}

	meta := map[string]string{
		metaIndexedAt: build.IndexedAt.UTC().Format(time.RFC3339),
		metaVersion:   IndexVersion,
		metaDocuments: strconv.Itoa(build.Documents),
		metaChunks:    strconv.Itoa(build.Chunks),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("writing index meta %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// tokenPattern matches runs of letters and digits in any script.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Search runs a prefix-token full-text query and returns the best
// matches, lowest bm25 score first. An empty token set returns no
// results. When allowedSources is non-empty, matches outside it are
// excluded.
func (s *Store) Search(ctx context.Context, query string, limit int, allowedSources []string) ([]domain.Reference, error) {
	tokens := tokenPattern.FindAllString(strings.ToLower(query), -1)
	if len(tokens) == 0 {
		return nil, nil
	}
	for i, token := range tokens {
		tokens[i] = token + "*"
	}
	ftsQuery := strings.Join(tokens, " ")

	var sources []string
	for _, source := range allowedSources {
		if source = strings.TrimSpace(source); source != "" {
			sources = append(sources, source)
		}
	}

	stmt := `
		SELECT d.title, d.path, d.route, d.anchor, d.excerpt, bm25(documents_fts) AS score
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.doc_id
		WHERE documents_fts MATCH ?`
	args := []any{ftsQuery}
	if len(sources) > 0 {
		stmt += " AND d.source IN (?" + strings.Repeat(",?", len(sources)-1) + ")"
		for _, source := range sources {
			args = append(args, source)
		}
	}
	stmt += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var refs []domain.Reference
	for rows.Next() {
		var (
			ref     domain.Reference
			anchor  sql.NullString
			excerpt sql.NullString
			score   float64
		)
		if err := rows.Scan(&ref.Title, &ref.Path, &ref.Route, &anchor, &excerpt, &score); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		ref.Anchor = anchor.String
		ref.Excerpt = excerpt.String
		rounded := math.Round(score*1000) / 1000
		ref.Score = &rounded
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}
	return refs, nil
}

// Status reports whether a completed build is present, and its metadata.
func (s *Store) Status(ctx context.Context) (domain.IndexStatus, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("reading index meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.IndexStatus{}, fmt.Errorf("scanning index meta: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.IndexStatus{}, fmt.Errorf("iterating index meta: %w", err)
	}

	status := domain.IndexStatus{Version: meta[metaVersion]}
	if meta[metaIndexedAt] == "" {
		return status, nil
	}

	if _, err := time.Parse(time.RFC3339, meta[metaIndexedAt]); err != nil {
		return status, nil
	}
	status.OK = true
	status.IndexedAt = meta[metaIndexedAt]
	status.Documents, _ = strconv.Atoi(meta[metaDocuments])
	status.Chunks, _ = strconv.Atoi(meta[metaChunks])
	return status, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ driven.RetrievalIndex = (*Store)(nil)
