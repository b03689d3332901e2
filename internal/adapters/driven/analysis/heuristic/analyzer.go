// Package heuristic provides a local analysis backend built on pattern
// matching. It produces the same Analysis shape as the remote backend
// at a fixed low confidence, so the pipeline runs identically with or
// without network access.
package heuristic

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/extractors"
)

// Confidence is the fixed confidence of heuristic output. Low enough
// that remote analysis, when configured, always supersedes it.
const Confidence = 0.5

const maxKeyPoints = 5

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

var (
	emailAddress = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	personName   = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	organisation = regexp.MustCompile(`\b[A-Z][A-Za-z&. ]*(?:Inc|LLC|Ltd|Corp|Company|Court|School|Hospital)\b`)
	isoDate      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	writtenDate  = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	slashDate    = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	sentenceEnd  = regexp.MustCompile(`[.!?]\s`)
)

// signalWords mark sentences worth surfacing as key points.
var signalWords = []string{
	"agree", "refuse", "dispute", "court", "payment", "schedule",
	"custody", "exchange", "deadline", "violation", "request",
}

// Analyzer is the pattern-matching analysis backend.
type Analyzer struct{}

// New creates a heuristic analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze extracts entities, dates and salient sentences from text.
// It never fails on content; only an empty input is rejected.
func (a *Analyzer) Analyze(_ context.Context, text string) (*domain.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}

	analysis := &domain.Analysis{
		KeyPoints:  keyPoints(text),
		Entities:   entities(text),
		Patterns:   patterns(text),
		Confidence: Confidence,
	}
	analysis.Relationships = relationships(analysis.Entities.People, text)

	return analysis, nil
}

func entities(text string) domain.Entities {
	e := domain.Entities{
		People:        []string{},
		Organizations: dedupe(organisation.FindAllString(text, -1)),
		Dates:         []string{},
	}

	seen := make(map[string]struct{})
	add := func(p string) {
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		e.People = append(e.People, p)
	}

	for _, addr := range emailAddress.FindAllString(text, -1) {
		add(extractors.NormaliseAddress(addr))
	}
	for _, name := range personName.FindAllString(text, -1) {
		if looksLikeHeaderNoise(name) {
			continue
		}
		add(name)
	}

	e.Dates = append(e.Dates, isoDate.FindAllString(text, -1)...)
	e.Dates = append(e.Dates, writtenDate.FindAllString(text, -1)...)
	e.Dates = append(e.Dates, slashDate.FindAllString(text, -1)...)
	e.Dates = dedupe(e.Dates)

	return e
}

// looksLikeHeaderNoise filters capitalised pairs that are structural
// text rather than names.
func looksLikeHeaderNoise(name string) bool {
	for _, word := range []string{"Message", "Subject", "From", "Date", "Sent", "Re"} {
		if strings.HasPrefix(name, word+" ") {
			return true
		}
	}
	return false
}

func keyPoints(text string) []domain.KeyPoint {
	var points []domain.KeyPoint
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		hits := 0
		for _, w := range signalWords {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		points = append(points, domain.KeyPoint{
			Text:       sentence,
			Importance: min(1.0, 0.3+0.2*float64(hits)),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Importance > points[j].Importance
	})
	if len(points) > maxKeyPoints {
		points = points[:maxKeyPoints]
	}
	return points
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[start : loc[0]+1])
		if len(s) > 10 {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); len(s) > 10 {
		sentences = append(sentences, s)
	}
	return sentences
}

// relationships pairs the two most frequent correspondents when both
// appear, which is the strongest association patterns can support.
func relationships(people []string, text string) []domain.EntityRelationship {
	if len(people) < 2 {
		return nil
	}

	type freq struct {
		name  string
		count int
	}
	counts := make([]freq, 0, len(people))
	lower := strings.ToLower(text)
	for _, p := range people {
		counts = append(counts, freq{p, strings.Count(lower, strings.ToLower(p))})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	return []domain.EntityRelationship{{
		From:       counts[0].name,
		To:         counts[1].name,
		Type:       "correspondence",
		Confidence: Confidence,
	}}
}

func patterns(text string) []string {
	lower := strings.ToLower(text)
	var found []string

	scheduling := 0
	for _, w := range []string{"schedule", "pickup", "drop-off", "dropoff", "exchange", "weekend"} {
		scheduling += strings.Count(lower, w)
	}
	if scheduling >= 3 {
		found = append(found, "recurring_scheduling_discussion")
	}

	money := 0
	for _, w := range []string{"payment", "owe", "reimburse", "expense", "$"} {
		money += strings.Count(lower, w)
	}
	if money >= 3 {
		found = append(found, "financial_dispute")
	}

	return found
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
