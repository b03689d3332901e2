package domain

import "time"

// AttachmentRecord describes one deduplicated binary in the store.
// Exactly one stored binary exists per distinct content hash; the record
// is removed only when its reference list empties, which also deletes
// the binary.
type AttachmentRecord struct {
	// ContentHash is the SHA-256 digest keying the record.
	ContentHash string `json:"-"`

	// Path is the hash-derived storage location.
	Path string `json:"path"`

	// OriginalName is the basename the binary first arrived with.
	OriginalName string `json:"original_name"`

	// CreatedAt is when the binary was first stored.
	CreatedAt time.Time `json:"created"`
}

// StoreStats summarises attachment store occupancy.
type StoreStats struct {
	// UniqueFiles is the number of distinct stored binaries.
	UniqueFiles int `json:"unique_files"`

	// TotalReferences is the number of document references across
	// all binaries.
	TotalReferences int `json:"total_references"`

	// TotalBytes is the on-disk size of all stored binaries.
	TotalBytes int64 `json:"total_bytes"`

	// DedupRatio is TotalReferences / max(UniqueFiles, 1).
	DedupRatio float64 `json:"deduplication_ratio"`
}
