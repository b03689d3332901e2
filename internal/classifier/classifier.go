// Package classifier routes incoming files to a document classification
// based on extension and content shape. Classification decides which
// extractor and which processing path a document takes; unknown is a
// valid outcome, not an error.
package classifier

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/postprocessors/chunker"
)

var headerBlock = regexp.MustCompile(`(?im)^(from|to|subject|date|sent):\s`)

// attachmentExts are extensions always handled as binary attachments.
var attachmentExts = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".rtf": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".heic": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".wav": {},
	".zip": {},
}

// spreadsheetExts are routed to the attachment store but flagged as
// spreadsheets because timeline processing treats them specially.
var spreadsheetExts = map[string]struct{}{
	".xlsx": {}, ".xls": {}, ".ods": {},
}

// Classify decides what a file is from its name and (for text files)
// its content.
func Classify(originalName, content string) domain.Classification {
	ext := strings.ToLower(filepath.Ext(originalName))

	switch ext {
	case ".csv":
		return domain.Classification{Type: domain.DocTypeRecordTable, Format: "csv"}
	case ".tsv":
		return domain.Classification{Type: domain.DocTypeRecordTable, Format: "tsv"}
	}

	if _, ok := spreadsheetExts[ext]; ok {
		return domain.Classification{Type: domain.DocTypeSpreadsheet, Format: strings.TrimPrefix(ext, ".")}
	}
	if _, ok := attachmentExts[ext]; ok {
		return domain.Classification{Type: domain.DocTypeAttachment, Format: strings.TrimPrefix(ext, ".")}
	}

	// Remaining extensions are text candidates. No content means an
	// unreadable binary, which is kept as an attachment.
	if content == "" {
		return domain.Classification{Type: domain.DocTypeAttachment, Format: strings.TrimPrefix(ext, ".")}
	}

	if chunker.DetectFormat(content) == chunker.FormatNumbered {
		return domain.Classification{
			Type:    domain.DocTypeEmail,
			Format:  string(chunker.FormatNumbered),
			Context: "message_export",
		}
	}

	if headerBlock.MatchString(content) {
		// Tab-separated header row means a table pasted into a text file.
		firstLine, _, _ := strings.Cut(content, "\n")
		if strings.Count(firstLine, "\t") >= 2 {
			return domain.Classification{Type: domain.DocTypeRecordTable, Format: "tsv"}
		}
		return domain.Classification{Type: domain.DocTypeEmail, Format: string(chunker.FormatEmail)}
	}

	return domain.Classification{Type: domain.DocTypeUnknown, Format: "text"}
}
