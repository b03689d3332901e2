package driven

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// StoredAttachment is the result of storing a binary.
type StoredAttachment struct {
	// Path is the content-addressed storage location.
	Path string

	// Hash is the SHA-256 content hash.
	Hash string
}

// AttachmentStore is content-addressed, deduplicated binary storage
// with reference counting. Each distinct content hash is stored exactly
// once; many documents may reference it.
type AttachmentStore interface {
	// Store hashes the file at sourcePath and either records a new
	// binary or appends documentID to the existing record's reference
	// list. Adding the same document twice is a no-op.
	Store(ctx context.Context, sourcePath, documentID string) (*StoredAttachment, error)

	// Info returns the record for a hash, or nil when absent.
	Info(ctx context.Context, hash string) (*domain.AttachmentRecord, error)

	// References returns the document IDs referencing a hash.
	// Absent hashes yield an empty list, not an error.
	References(ctx context.Context, hash string) ([]string, error)

	// RemoveReference drops documentID from the hash's reference list.
	// When the list empties, the binary and its record are deleted.
	RemoveReference(ctx context.Context, hash, documentID string) error

	// Stats summarises store occupancy.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
