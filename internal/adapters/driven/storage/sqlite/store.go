package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/casetrail-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed storage for documents, chunks and events.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.casetrail/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".casetrail", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
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

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	companionsJSON, err := json.Marshal(emptyIfNil(doc.Companions))
	if err != nil {
		return fmt.Errorf("marshalling companions: %w", err)
	}
	contextJSON, err := json.Marshal(emptyIfNil(doc.ContextDocs))
	if err != nil {
		return fmt.Errorf("marshalling context docs: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, original_name, path, content, size_bytes,
			content_hash, metadata_hash, creation_signature,
			doc_type, format, context, companions, context_docs, metadata,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original_name = excluded.original_name,
			path = excluded.path,
			content = excluded.content,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash,
			metadata_hash = excluded.metadata_hash,
			creation_signature = excluded.creation_signature,
			doc_type = excluded.doc_type,
			format = excluded.format,
			context = excluded.context,
			companions = excluded.companions,
			context_docs = excluded.context_docs,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.OriginalName, doc.Path, doc.Content, doc.SizeBytes,
		doc.Fingerprint.ContentHash, doc.Fingerprint.MetadataHash,
		nullTime(doc.Fingerprint.CreationSignature),
		string(doc.Classification.Type), doc.Classification.Format, doc.Classification.Context,
		string(companionsJSON), string(contextJSON), string(metadataJSON),
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, text, position, estimated_tokens,
			chunk_type, section, continues, overlap_tokens, thread_id, email_id,
			headers, refs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			text = excluded.text,
			position = excluded.position,
			estimated_tokens = excluded.estimated_tokens,
			chunk_type = excluded.chunk_type,
			section = excluded.section,
			continues = excluded.continues,
			overlap_tokens = excluded.overlap_tokens,
			thread_id = excluded.thread_id,
			email_id = excluded.email_id,
			headers = excluded.headers,
			refs = excluded.refs
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		headersJSON, err := json.Marshal(chunk.Headers)
		if err != nil {
			return fmt.Errorf("marshalling chunk headers: %w", err)
		}
		refsJSON, err := json.Marshal(chunk.References)
		if err != nil {
			return fmt.Errorf("marshalling chunk references: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Text,
			chunk.Position, chunk.EstimatedTokens, chunk.Type, chunk.Section,
			chunk.Continues, chunk.OverlapTokens, chunk.ThreadID, chunk.EmailID,
			string(headersJSON), string(refsJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const documentColumns = `id, original_name, path, content, size_bytes,
	content_hash, metadata_hash, creation_signature,
	doc_type, format, context, companions, context_docs, metadata,
	created_at, updated_at`

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	return scanDocument(row)
}

// GetChunks retrieves all chunks for a document.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, text, position, estimated_tokens,
			chunk_type, section, continues, overlap_tokens, thread_id, email_id,
			headers, refs
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var headersJSON, refsJSON string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text,
			&chunk.Position, &chunk.EstimatedTokens, &chunk.Type, &chunk.Section,
			&chunk.Continues, &chunk.OverlapTokens, &chunk.ThreadID, &chunk.EmailID,
			&headersJSON, &refsJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(headersJSON), &chunk.Headers); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk headers: %w", err)
		}
		if err := json.Unmarshal([]byte(refsJSON), &chunk.References); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk references: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes a document; chunks and events cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SaveEvent stores or updates a timeline event.
func (s *documentStore) SaveEvent(ctx context.Context, event *domain.TimelineEvent) error {
	if event == nil || event.DocumentID == "" {
		return domain.ErrInvalidInput
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var eventDate any
	if event.TemporalInfo.EventDate != nil {
		eventDate = event.TemporalInfo.EventDate.UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO events (document_id, event_date, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			event_date = excluded.event_date,
			payload = excluded.payload
	`, event.DocumentID, eventDate, string(payload))

	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// GetEvent retrieves the timeline event for a document.
func (s *documentStore) GetEvent(ctx context.Context, documentID string) (*domain.TimelineEvent, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT payload FROM events WHERE document_id = ?", documentID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	var event domain.TimelineEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("unmarshaling event: %w", err)
	}
	return &event, nil
}

// ListEvents returns all events ordered by event date, undated last.
func (s *documentStore) ListEvents(ctx context.Context) ([]domain.TimelineEvent, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT payload FROM events
		ORDER BY event_date IS NULL, event_date
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.TimelineEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var event domain.TimelineEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("unmarshaling event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// ==================== Scan Helpers ====================

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentFields(scanner rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType, companionsJSON, contextJSON, metadataJSON string
	var creationSig sql.NullTime
	var createdAt, updatedAt sql.NullTime

	if err := scanner.Scan(&doc.ID, &doc.OriginalName, &doc.Path, &doc.Content,
		&doc.SizeBytes, &doc.Fingerprint.ContentHash, &doc.Fingerprint.MetadataHash,
		&creationSig, &docType, &doc.Classification.Format, &doc.Classification.Context,
		&companionsJSON, &contextJSON, &metadataJSON,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.Classification.Type = domain.DocType(docType)
	if creationSig.Valid {
		doc.Fingerprint.CreationSignature = creationSig.Time
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}

	if err := json.Unmarshal([]byte(companionsJSON), &doc.Companions); err != nil {
		return nil, fmt.Errorf("unmarshaling companions: %w", err)
	}
	if err := json.Unmarshal([]byte(contextJSON), &doc.ContextDocs); err != nil {
		return nil, fmt.Errorf("unmarshaling context docs: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}

	return &doc, nil
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	doc, err := scanDocumentFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
