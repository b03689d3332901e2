package domain

// SizeCategory bands a document by how it will be chunked.
type SizeCategory string

const (
	// SizeSingleChunk fits one processing chunk.
	SizeSingleChunk SizeCategory = "single_chunk"
	// SizeSmall splits into a few chunks.
	SizeSmall SizeCategory = "small_multi_chunk"
	// SizeMedium splits into many chunks.
	SizeMedium SizeCategory = "medium_multi_chunk"
	// SizeLarge splits into many chunks and takes significant time.
	SizeLarge SizeCategory = "large_multi_chunk"
	// SizeTooLarge exceeds the hard limit and is rejected.
	SizeTooLarge SizeCategory = "too_large"
)

// SizeCheck is the size-band detail of a validation run.
type SizeCheck struct {
	SizeBytes       int64        `json:"size_bytes"`
	SizeMB          float64      `json:"size_mb"`
	Category        SizeCategory `json:"category"`
	EstimatedTokens int          `json:"estimated_tokens"`
	EstimatedChunks int          `json:"estimated_chunks"`
	CanProcess      bool         `json:"can_process"`
	Guidance        string       `json:"guidance,omitempty"`
}

// EncodingCheck is the character-distribution detail of a validation run.
type EncodingCheck struct {
	Valid             bool    `json:"valid"`
	NullFraction      float64 `json:"null_fraction"`
	PrintableFraction float64 `json:"printable_fraction"`
	DetectedEncoding  string  `json:"detected_encoding"`
}

// CheckResult is the generic outcome of one validation stage.
// Fatal findings set Critical; warnings accumulate without blocking.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Critical bool     `json:"critical"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidationReport is the structured result of running every gate check.
// Any fatal finding clears CanProcess; callers must not proceed to
// chunking or analysis when it is false. Warnings are logged, never fatal.
type ValidationReport struct {
	Size     SizeCheck     `json:"size"`
	Encoding EncodingCheck `json:"encoding"`
	Content  CheckResult   `json:"content"`
	Security CheckResult   `json:"security"`
	Quality  CheckResult   `json:"quality"`
	Format   CheckResult   `json:"format"`

	CanProcess bool     `json:"can_process"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}
