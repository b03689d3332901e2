// Package chunker provides a boundary-aware text chunking processor.
//
// Content is normalised, split into semantic units (numbered message
// entries or individual emails), then units are packed into chunks
// around a token target. A unit is never split across chunks unless it
// alone exceeds the hard token ceiling; forced splits carry a declared
// overlap so downstream consumers can reconstruct the normalised text
// exactly by dropping each continuation chunk's overlap prefix.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// DefaultTargetTokens is the token target a chunk accumulates towards.
const DefaultTargetTokens = 150

// DefaultMaxTokens is the hard token ceiling for any single chunk.
const DefaultMaxTokens = 25000

// DefaultMinOverlap is the minimum overlap carried into a continuation
// chunk when a unit is force-split.
const DefaultMinOverlap = 50

// charsPerToken is the canonical token estimator divisor.
const charsPerToken = 4

// Format identifies a document's textual layout.
type Format string

const (
	// FormatNumbered is a sequentially numbered message export.
	FormatNumbered Format = "numbered"
	// FormatEmail is one or more emails with header blocks.
	FormatEmail Format = "email"
)

var (
	numberedMarker = regexp.MustCompile(`Message (\d+) of \d+`)
	numberedLine   = regexp.MustCompile(`(?m)^Message (\d+) of \d+`)
	inlineMarker   = regexp.MustCompile(`([^\n])(Message \d+ of \d+)`)
	messageRef     = regexp.MustCompile(`Message (\d+)\b`)
	blankRun       = regexp.MustCompile(`\n{3,}`)
	emailBoundary  = regexp.MustCompile(`^(From|Subject):\s`)
	headerLine     = regexp.MustCompile(`^([A-Za-z][A-Za-z-]*):\s*(.*)$`)
	replyPrefix    = regexp.MustCompile(`(?i)^(re|fw|fwd):\s*`)
)

// Processor splits document content at semantic boundaries.
// It implements the PostProcessor interface.
type Processor struct {
	targetTokens int
	maxTokens    int
	minOverlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetTokens sets the token target per chunk.
func WithTargetTokens(target int) Option {
	return func(p *Processor) {
		if target > 0 {
			p.targetTokens = target
		}
	}
}

// WithMaxTokens sets the hard token ceiling per chunk.
func WithMaxTokens(max int) Option {
	return func(p *Processor) {
		if max > 0 {
			p.maxTokens = max
		}
	}
}

// WithMinOverlap sets the minimum overlap tokens for forced splits.
func WithMinOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap > 0 {
			p.minOverlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetTokens: DefaultTargetTokens,
		maxTokens:    DefaultMaxTokens,
		minOverlap:   DefaultMinOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave room for new content in every forced piece.
	if p.minOverlap >= p.maxTokens {
		p.minOverlap = p.maxTokens / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// EstimateTokens converts a character count to the canonical token
// estimate. Every stage that budgets tokens uses this estimator.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Normalise prepares raw content for boundary splitting: line endings
// become \n, control characters are stripped, inline message markers
// gain a line break, and runs of blank lines collapse.
func Normalise(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	content = b.String()

	content = inlineMarker.ReplaceAllString(content, "$1\n$2")
	content = blankRun.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

// DetectFormat decides whether content is a numbered message export or
// email text. Anything without numbered markers is treated as email.
func DetectFormat(content string) Format {
	if numberedMarker.MatchString(content) {
		return FormatNumbered
	}
	return FormatEmail
}

// unit is one indivisible semantic span of the normalised text. Units
// are contiguous slices, so concatenating them in order reproduces the
// text exactly.
type unit struct {
	text     string
	section  string
	threadID int
	emailID  int
	headers  map[string]string
}

// Process splits the document content into boundary-respecting chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if doc.Content == "" {
		return nil, nil
	}

	text := Normalise(doc.Content)
	if text == "" {
		return nil, nil
	}

	format := DetectFormat(text)

	var units []unit
	var chunkType string
	switch format {
	case FormatNumbered:
		units = splitNumbered(text)
		chunkType = "message"
	default:
		units = splitEmails(text)
		chunkType = "email"
	}

	return p.pack(doc.ID, chunkType, format, units), nil
}

// pack accumulates units into chunks around the token target, force
// splitting any unit over the ceiling.
func (p *Processor) pack(docID, chunkType string, format Format, units []unit) []domain.Chunk {
	var chunks []domain.Chunk
	var pending []unit
	pendingTokens := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		var b strings.Builder
		for _, u := range pending {
			b.WriteString(u.text)
		}
		chunks = append(chunks, p.newChunk(docID, chunkType, format, b.String(), pending, len(chunks), false, 0))
		pending = pending[:0]
		pendingTokens = 0
	}

	for _, u := range units {
		tokens := EstimateTokens(u.text)

		if tokens > p.maxTokens {
			flush()
			chunks = p.forceSplit(chunks, docID, chunkType, format, u)
			continue
		}

		if pendingTokens > 0 && pendingTokens+tokens > p.targetTokens {
			flush()
		}
		pending = append(pending, u)
		pendingTokens += tokens
	}
	flush()

	return chunks
}

// forceSplit cuts one oversized unit into ceiling-sized pieces. Each
// piece after the first repeats the tail of its predecessor and
// declares that overlap, so dropping the overlap prefix of every
// continuation reconstructs the unit verbatim.
func (p *Processor) forceSplit(chunks []domain.Chunk, docID, chunkType string, format Format, u unit) []domain.Chunk {
	maxChars := p.maxTokens * charsPerToken
	overlapChars := p.minOverlap * charsPerToken

	pos := 0
	first := true
	for pos < len(u.text) {
		start := pos
		overlap := 0
		if !first {
			start = pos - overlapChars
			overlap = p.minOverlap
		}
		end := min(start+maxChars, len(u.text))

		chunks = append(chunks, p.newChunk(docID, chunkType, format,
			u.text[start:end], []unit{u}, len(chunks), !first, overlap))

		pos = end
		first = false
	}

	return chunks
}

// newChunk assembles chunk metadata from the units it covers.
func (p *Processor) newChunk(docID, chunkType string, format Format, text string, covered []unit, position int, continues bool, overlap int) domain.Chunk {
	chunk := domain.Chunk{
		ID:              uuid.New().String(),
		DocumentID:      docID,
		Text:            text,
		Position:        position,
		EstimatedTokens: EstimateTokens(text),
		Type:            chunkType,
		Section:         covered[0].section,
		Continues:       continues,
		OverlapTokens:   overlap,
		ThreadID:        covered[0].threadID,
		EmailID:         covered[0].emailID,
	}

	if format == FormatEmail {
		headers := make(map[string]string)
		for _, u := range covered {
			for k, v := range u.headers {
				if _, ok := headers[k]; !ok {
					headers[k] = v
				}
			}
		}
		if len(headers) > 0 {
			chunk.Headers = headers
		}
	} else {
		chunk.References = messageReferences(text)
	}

	return chunk
}

// splitNumbered cuts text at "Message N of M" line starts. Text before
// the first marker becomes a preamble unit.
func splitNumbered(text string) []unit {
	matches := numberedLine.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []unit{{text: text}}
	}

	var units []unit
	if matches[0][0] > 0 {
		units = append(units, unit{text: text[:matches[0][0]], section: "preamble"})
	}

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		units = append(units, unit{
			text:    text[m[0]:end],
			section: "Message " + text[m[2]:m[3]],
		})
	}

	return units
}

// splitEmails cuts text where a From: or Subject: line follows a blank
// line or starts the document. Each email's leading header block is
// parsed into lowercase header keys, and emails sharing a normalised
// subject share a thread id.
func splitEmails(text string) []unit {
	lines := strings.Split(text, "\n")

	// Byte offset of each line within text.
	offsets := make([]int, len(lines))
	off := 0
	for i, line := range lines {
		offsets[i] = off
		off += len(line) + 1
	}

	var starts []int
	for i, line := range lines {
		if !emailBoundary.MatchString(line) {
			continue
		}
		if i == 0 || strings.TrimSpace(lines[i-1]) == "" {
			starts = append(starts, offsets[i])
		}
	}

	if len(starts) == 0 || starts[0] != 0 {
		starts = append([]int{0}, starts...)
	}

	threads := make(map[string]int)
	units := make([]unit, 0, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}

		u := unit{
			text:    text[start:end],
			emailID: i + 1,
			headers: parseHeaders(text[start:end]),
		}
		if subject, ok := u.headers["subject"]; ok {
			key := strings.ToLower(strings.TrimSpace(replyPrefix.ReplaceAllString(subject, "")))
			if _, ok := threads[key]; !ok {
				threads[key] = len(threads) + 1
			}
			u.threadID = threads[key]
			u.section = subject
		}
		units = append(units, u)
	}

	return units
}

// parseHeaders reads the leading header block of an email unit.
func parseHeaders(text string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		m := headerLine.FindStringSubmatch(line)
		if m == nil {
			break
		}
		headers[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

// messageReferences collects mentions of other numbered messages,
// excluding the "Message N of M" markers themselves.
func messageReferences(text string) []string {
	markers := numberedMarker.FindAllStringIndex(text, -1)
	inMarker := func(start int) bool {
		for _, m := range markers {
			if start >= m[0] && start < m[1] {
				return true
			}
		}
		return false
	}

	var refs []string
	seen := make(map[string]struct{})
	for _, m := range messageRef.FindAllStringSubmatchIndex(text, -1) {
		if inMarker(m[0]) {
			continue
		}
		ref := "Message " + text[m[2]:m[3]]
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	return refs
}
