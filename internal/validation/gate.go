// Package validation implements the intake gate that every evidence
// file passes before chunking or analysis. It runs size, encoding,
// structural, security, quality and format checks and folds them into a
// single structured report. Fatal findings stop the pipeline; warnings
// are surfaced but never block.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// Size bands in bytes. Files over MaxSize are rejected outright; the
// remaining bands only steer chunking guidance.
const (
	SingleChunkSize = int64(6 * 1024 * 1024 / 10)
	SmallFileSize   = int64(24 * 1024 * 1024 / 10)
	MediumFileSize  = int64(96 * 1024 * 1024 / 10)
	MaxSize         = int64(30 * 1024 * 1024)
)

// Threshold constants for the non-size checks.
const (
	maxNullFraction      = 0.01
	minPrintableFraction = 0.70
	minLines             = 1
	maxLineLength        = 15000
	maxConsecutiveEmpty  = 5
	maxURLCount          = 50
	minContentDensity    = 0.05
	maxDuplicateLineFrac = 0.9
	minUniqueWords       = 2
	maxRepeatedChars     = 50
	maxHTMLTags          = 500
	maxNestedDepth       = 5
)

// charsPerToken is the canonical token estimator divisor.
const charsPerToken = 4

var (
	blockedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script\b[^>]*>`),
		regexp.MustCompile(`(?i)\beval\s*\(`),
		regexp.MustCompile(`(?i)\bexecCommand\s*\(`),
		regexp.MustCompile(`(?i)\bdocument\.write\s*\(`),
		regexp.MustCompile(`(?i)\bjavascript\s*:`),
	}
	urlPattern     = regexp.MustCompile(`https?://`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	wordPattern    = regexp.MustCompile(`\w+`)

	// requiredHeaders lists the structural markers a declared type must
	// carry. Lookup is case-insensitive substring presence.
	requiredHeaders = map[domain.DocType][]string{
		domain.DocTypeEmail:       {"from:", "to:", "subject:"},
		domain.DocTypeRecordTable: {"subject", "date"},
	}
)

// Gate runs all validation checks over raw text content.
// The zero value is ready to use.
type Gate struct{}

// New creates a validation gate.
func New() *Gate {
	return &Gate{}
}

// Validate runs every check in order and folds the findings into one
// report. declared may be DocTypeUnknown when the caller has no type
// hint; required-header checks only apply to declared types.
func (g *Gate) Validate(content string, declared domain.DocType) *domain.ValidationReport {
	report := &domain.ValidationReport{CanProcess: true}

	report.Size = CheckSize(int64(len(content)))
	if !report.Size.CanProcess {
		report.CanProcess = false
		report.Errors = append(report.Errors,
			fmt.Sprintf("file size (%.1fMB) exceeds maximum limit of %dMB", report.Size.SizeMB, MaxSize/(1024*1024)))
	}

	report.Encoding = checkEncoding(content)
	if !report.Encoding.Valid {
		report.CanProcess = false
		report.Errors = append(report.Errors, "encoding validation failed: too many non-printable characters")
	}

	report.Content = checkStructure(content, declared)
	foldCheck(report, report.Content)

	report.Security = checkSecurity(content)
	foldCheck(report, report.Security)

	report.Quality = checkQuality(content)
	foldCheck(report, report.Quality)

	report.Format = checkFormat(content)
	foldCheck(report, report.Format)

	return report
}

// ValidateBinary runs the size check only. Binary files are never
// parsed as text, so the remaining checks do not apply.
func (g *Gate) ValidateBinary(sizeBytes int64) *domain.ValidationReport {
	report := &domain.ValidationReport{
		CanProcess: true,
		Encoding:   domain.EncodingCheck{Valid: true, DetectedEncoding: "binary"},
		Content:    domain.CheckResult{Valid: true},
		Security:   domain.CheckResult{Valid: true},
		Quality:    domain.CheckResult{Valid: true},
		Format:     domain.CheckResult{Valid: true},
	}

	report.Size = CheckSize(sizeBytes)
	if !report.Size.CanProcess {
		report.CanProcess = false
		report.Errors = append(report.Errors,
			fmt.Sprintf("file size (%.1fMB) exceeds maximum limit of %dMB", report.Size.SizeMB, MaxSize/(1024*1024)))
	}

	return report
}

// foldCheck merges one stage result into the overall report.
func foldCheck(report *domain.ValidationReport, check domain.CheckResult) {
	report.Warnings = append(report.Warnings, check.Warnings...)
	if check.Critical {
		report.CanProcess = false
		report.Errors = append(report.Errors, check.Error)
	}
}

// CheckSize bands a byte count and estimates chunking effort.
// Exported separately because the CLI reports size guidance before
// reading a whole file into memory.
func CheckSize(sizeBytes int64) domain.SizeCheck {
	check := domain.SizeCheck{
		SizeBytes:       sizeBytes,
		SizeMB:          float64(sizeBytes) / (1024 * 1024),
		EstimatedTokens: int((sizeBytes + charsPerToken - 1) / charsPerToken),
		CanProcess:      true,
	}
	if est := (sizeBytes + SingleChunkSize - 1) / SingleChunkSize; est > 1 {
		check.EstimatedChunks = int(est)
	} else {
		check.EstimatedChunks = 1
	}

	switch {
	case sizeBytes > MaxSize:
		check.Category = domain.SizeTooLarge
		check.CanProcess = false
		check.Guidance = "split the file into smaller segments before processing"
	case sizeBytes > MediumFileSize:
		check.Category = domain.SizeLarge
		check.Guidance = "file will be processed in multiple chunks; processing may take significant time"
	case sizeBytes > SmallFileSize:
		check.Category = domain.SizeMedium
		check.Guidance = "file will be processed in multiple chunks"
	case sizeBytes > SingleChunkSize:
		check.Category = domain.SizeSmall
		check.Guidance = "file will be split into a few chunks"
	default:
		check.Category = domain.SizeSingleChunk
		check.Guidance = "file can be processed in a single chunk"
	}

	return check
}

// checkEncoding rejects content with too many null bytes or too few
// printable characters.
func checkEncoding(content string) domain.EncodingCheck {
	if len(content) == 0 {
		return domain.EncodingCheck{Valid: false, DetectedEncoding: "unknown"}
	}

	var nulls, printable, extended int
	for _, r := range content {
		switch {
		case r == 0:
			nulls++
		case r >= 32 && r <= 126:
			printable++
		case r > 127:
			printable++
			extended++
		case r == '\n' || r == '\r' || r == '\t':
			printable++
		}
	}

	total := len([]rune(content))
	check := domain.EncodingCheck{
		NullFraction:      float64(nulls) / float64(total),
		PrintableFraction: float64(printable) / float64(total),
		DetectedEncoding:  "ascii",
	}
	if extended > 0 {
		check.DetectedEncoding = "utf-8"
	}
	check.Valid = check.NullFraction <= maxNullFraction &&
		check.PrintableFraction >= minPrintableFraction
	return check
}

// checkStructure validates line structure and required headers for the
// declared type. Missing required headers is fatal.
func checkStructure(content string, declared domain.DocType) domain.CheckResult {
	lines := strings.Split(content, "\n")
	result := domain.CheckResult{Valid: true}

	if len(lines) < minLines {
		return domain.CheckResult{
			Critical: true,
			Error:    "file contains too few lines",
		}
	}

	var longLines int
	for _, line := range lines {
		if len(line) > maxLineLength {
			longLines++
		}
	}
	if longLines > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d lines exceeding maximum length", longLines))
	}

	consecutive := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			consecutive++
			if consecutive == maxConsecutiveEmpty+1 {
				result.Warnings = append(result.Warnings, "too many consecutive empty lines")
			}
		} else {
			consecutive = 0
		}
	}

	if required, ok := requiredHeaders[declared]; ok {
		lower := strings.ToLower(content)
		var missing []string
		for _, header := range required {
			if !strings.Contains(lower, header) {
				missing = append(missing, header)
			}
		}
		if len(missing) > 0 {
			return domain.CheckResult{
				Critical: true,
				Error:    "missing required sections: " + strings.Join(missing, ", "),
				Warnings: result.Warnings,
			}
		}
	}

	return result
}

// checkSecurity rejects script-like content and link farms.
func checkSecurity(content string) domain.CheckResult {
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(content) {
			return domain.CheckResult{
				Critical: true,
				Error:    "file contains potentially malicious content",
			}
		}
	}

	if len(urlPattern.FindAllStringIndex(content, maxURLCount+1)) > maxURLCount {
		return domain.CheckResult{
			Critical: true,
			Error:    "file contains too many URLs",
		}
	}

	return domain.CheckResult{Valid: true}
}

// checkQuality flags thin or repetitive content. Only the unique-word
// floor is fatal; everything else is advisory.
func checkQuality(content string) domain.CheckResult {
	result := domain.CheckResult{Valid: true}
	if len(content) == 0 {
		return domain.CheckResult{
			Critical: true,
			Error:    "content quality below minimum requirements",
		}
	}

	nonWhitespace := 0
	for _, r := range content {
		if r != ' ' && r != '\n' && r != '\r' && r != '\t' {
			nonWhitespace++
		}
	}
	if float64(nonWhitespace)/float64(len(content)) < minContentDensity {
		result.Warnings = append(result.Warnings, "low content density")
	}

	lines := strings.Split(content, "\n")
	unique := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		unique[line] = struct{}{}
	}
	if 1-float64(len(unique))/float64(len(lines)) > maxDuplicateLineFrac {
		result.Warnings = append(result.Warnings, "high percentage of duplicate lines")
	}

	words := wordPattern.FindAllString(strings.ToLower(content), -1)
	uniqueWords := make(map[string]struct{}, len(words))
	for _, w := range words {
		uniqueWords[w] = struct{}{}
	}
	if len(uniqueWords) < minUniqueWords {
		result.Warnings = append(result.Warnings, "too few unique words")
		result.Valid = false
		result.Critical = true
		result.Error = "content quality below minimum requirements"
	}

	var current rune
	count, maxRun := 0, 0
	for _, r := range content {
		if r == current {
			count++
		} else {
			current, count = r, 1
		}
		if count > maxRun {
			maxRun = count
		}
	}
	if maxRun > maxRepeatedChars {
		result.Warnings = append(result.Warnings, "contains long sequences of repeated characters")
	}

	return result
}

// checkFormat guards against HTML blobs masquerading as text evidence.
// Tag count over the cap is fatal, nesting depth is advisory.
func checkFormat(content string) domain.CheckResult {
	result := domain.CheckResult{Valid: true}

	tags := htmlTagPattern.FindAllString(content, -1)
	if len(tags) > maxHTMLTags {
		return domain.CheckResult{
			Critical: true,
			Error:    "invalid file format: excessive HTML tags",
		}
	}

	depth, maxDepth := 0, 0
	for _, tag := range tags {
		if strings.Contains(tag, "/") {
			depth--
		} else {
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		}
	}
	if maxDepth > maxNestedDepth {
		result.Warnings = append(result.Warnings, "excessive HTML nesting depth")
	}

	return result
}
