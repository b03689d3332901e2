// Package attachments provides content-addressed, deduplicated binary
// storage with reference counting. Each distinct content hash is stored
// exactly once under a hash-derived filename; a JSON metadata file maps
// hashes to their record and referencing documents.
package attachments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AttachmentStore = (*Store)(nil)

const (
	filesDirName = "files"
	metadataFile = "metadata.json"
)

// metadata is the serialised store state. The two maps are keyed by
// content hash and kept consistent under the store mutex.
type metadata struct {
	Attachments map[string]domain.AttachmentRecord `json:"attachments"`
	References  map[string][]string                `json:"references"`
}

// Store is the filesystem-backed attachment store. All mutations are
// serialised through a single mutex; the metadata file is rewritten
// atomically after every change.
type Store struct {
	baseDir  string
	filesDir string
	metaPath string

	mu   sync.Mutex
	meta metadata
}

// New opens or creates an attachment store rooted at baseDir.
func New(baseDir string) (*Store, error) {
	filesDir := filepath.Join(baseDir, filesDirName)
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		filesDir: filesDir,
		metaPath: filepath.Join(baseDir, metadataFile),
		meta: metadata{
			Attachments: make(map[string]domain.AttachmentRecord),
			References:  make(map[string][]string),
		},
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// load reads the metadata file if one exists.
func (s *Store) load() error {
	data, err := os.ReadFile(s.metaPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read attachment metadata: %w", err)
	}

	if err := json.Unmarshal(data, &s.meta); err != nil {
		return fmt.Errorf("parse attachment metadata: %w", err)
	}
	if s.meta.Attachments == nil {
		s.meta.Attachments = make(map[string]domain.AttachmentRecord)
	}
	if s.meta.References == nil {
		s.meta.References = make(map[string][]string)
	}
	return nil
}

// save rewrites the metadata file atomically. Caller holds the mutex.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal attachment metadata: %w", err)
	}

	tmp := s.metaPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write attachment metadata: %w", err)
	}
	if err := os.Rename(tmp, s.metaPath); err != nil {
		return fmt.Errorf("replace attachment metadata: %w", err)
	}
	return nil
}

// Store hashes the file at sourcePath and either records a new binary
// or appends documentID to the existing record's references. Storing
// the same document against the same content twice is a no-op.
func (s *Store) Store(_ context.Context, sourcePath, documentID string) (*driven.StoredAttachment, error) {
	if sourcePath == "" || documentID == "" {
		return nil, domain.ErrInvalidInput
	}

	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read attachment source: %w", err)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.meta.Attachments[hash]
	if !exists {
		destPath := filepath.Join(s.filesDir, hash+filepath.Ext(sourcePath))
		if err := os.WriteFile(destPath, content, 0o644); err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		record = domain.AttachmentRecord{
			Path:         destPath,
			OriginalName: filepath.Base(sourcePath),
			CreatedAt:    time.Now().UTC(),
		}
		s.meta.Attachments[hash] = record
	}

	if !contains(s.meta.References[hash], documentID) {
		s.meta.References[hash] = append(s.meta.References[hash], documentID)
	}

	if err := s.save(); err != nil {
		return nil, err
	}

	return &driven.StoredAttachment{Path: record.Path, Hash: hash}, nil
}

// Info returns the record for a hash, or nil when absent.
func (s *Store) Info(_ context.Context, hash string) (*domain.AttachmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.meta.Attachments[hash]
	if !ok {
		return nil, nil
	}
	record.ContentHash = hash
	return &record, nil
}

// References returns the document IDs referencing a hash.
func (s *Store) References(_ context.Context, hash string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := s.meta.References[hash]
	out := make([]string, len(refs))
	copy(out, refs)
	return out, nil
}

// RemoveReference drops documentID from the hash's reference list and
// deletes the binary when the list empties. Unknown hashes and unknown
// documents are no-ops.
func (s *Store) RemoveReference(_ context.Context, hash, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, ok := s.meta.References[hash]
	if !ok {
		return nil
	}

	kept := refs[:0]
	for _, ref := range refs {
		if ref != documentID {
			kept = append(kept, ref)
		}
	}
	if len(kept) == len(refs) {
		return nil
	}

	if len(kept) == 0 {
		record := s.meta.Attachments[hash]
		if record.Path != "" {
			if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("delete attachment binary: %w", err)
			}
		}
		delete(s.meta.Attachments, hash)
		delete(s.meta.References, hash)
	} else {
		s.meta.References[hash] = kept
	}

	return s.save()
}

// Stats summarises store occupancy.
func (s *Store) Stats(_ context.Context) (*domain.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.StoreStats{
		UniqueFiles: len(s.meta.Attachments),
	}
	for _, refs := range s.meta.References {
		stats.TotalReferences += len(refs)
	}
	for _, record := range s.meta.Attachments {
		if info, err := os.Stat(record.Path); err == nil {
			stats.TotalBytes += info.Size()
		}
	}

	unique := stats.UniqueFiles
	if unique < 1 {
		unique = 1
	}
	stats.DedupRatio = float64(stats.TotalReferences) / float64(unique)

	return stats, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
