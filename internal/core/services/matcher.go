package services

import (
	"context"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/logger"
)

// Matching thresholds and weights.
const (
	// emailRecordThreshold is the minimum mean field score for an
	// email/record edge.
	emailRecordThreshold = 0.7

	// attachmentThreshold is the minimum combined score for an
	// attachment/email edge.
	attachmentThreshold = 0.6

	// strongFieldScore marks an individual field comparison as matched.
	strongFieldScore = 0.8

	// strongFieldCount is how many matched fields make an edge strong.
	strongFieldCount = 2

	filenameWeight = 0.4
	contentWeight  = 0.4
	temporalWeight = 0.2

	// dateProximityWindow is the span over which date proximity decays
	// to zero.
	dateProximityWindow = 24 * time.Hour

	// jaccardMinWordLen keeps short function words out of content
	// similarity.
	jaccardMinWordLen = 4
)

var (
	subjectPrefix = regexp.MustCompile(`(?i)^(re|fw|fwd):\s*`)
	wordSplit     = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// MatcherService scores pairwise relationships between documents.
// Extraction failures degrade to no match rather than aborting; a batch
// with one unreadable record still yields every other edge.
type MatcherService struct {
	extractor driven.ContentExtractor
}

// NewMatcherService creates a new matcher service.
func NewMatcherService(extractor driven.ContentExtractor) *MatcherService {
	return &MatcherService{extractor: extractor}
}

// MatchEmailToRecord compares an email's extracted fields against a
// record-table entry's. The edge confidence is the mean of all field
// scores both sides could supply; edges under the threshold are nil.
func (s *MatcherService) MatchEmailToRecord(ctx context.Context, email, record *domain.Document) (*domain.Relationship, error) {
	emailFields, err := s.extractor.ExtractFields(ctx, email)
	if err != nil {
		logger.Warn("matching %s against %s: %s: %v", email.ID, record.ID, domain.ReasonMatchingError, err)
		return nil, nil
	}
	recordFields, err := s.extractor.ExtractFields(ctx, record)
	if err != nil {
		logger.Warn("matching %s against %s: %s: %v", email.ID, record.ID, domain.ReasonMatchingError, err)
		return nil, nil
	}
	if emailFields == nil || recordFields == nil {
		logger.Debug("matching %s against %s: %s", email.ID, record.ID, domain.ReasonExtractionFailed)
		return nil, nil
	}

	var scores []float64
	matched := 0
	score := func(v float64) {
		scores = append(scores, v)
		if v > strongFieldScore {
			matched++
		}
	}

	if emailFields.Subject != "" && recordFields.Subject != "" {
		score(stringSimilarity(normaliseSubject(emailFields.Subject), normaliseSubject(recordFields.Subject)))
	}
	if emailFields.From != "" && recordFields.From != "" {
		score(addressSimilarity(emailFields.From, recordFields.From))
	}
	if emailFields.To != "" && recordFields.To != "" {
		score(addressSimilarity(emailFields.To, recordFields.To))
	}
	if emailFields.Date != nil && recordFields.Date != nil {
		score(dateProximity(*emailFields.Date, *recordFields.Date))
	}

	if len(scores) == 0 {
		logger.Debug("matching %s against %s: %s", email.ID, record.ID, domain.ReasonExtractionFailed)
		return nil, nil
	}

	var sum float64
	for _, v := range scores {
		sum += v
	}
	confidence := sum / float64(len(scores))

	if confidence < emailRecordThreshold {
		return nil, nil
	}

	reason := domain.ReasonWeakFieldMatch
	if matched >= strongFieldCount {
		reason = domain.ReasonStrongFieldMatch
	}

	return &domain.Relationship{
		Source:     email.ID,
		Target:     record.ID,
		Type:       domain.RelationEmailRecord,
		Confidence: confidence,
		Metadata: map[string]any{
			"reason":          reason,
			"matched_fields":  matched,
			"compared_fields": len(scores),
		},
	}, nil
}

// MatchAttachmentToEmails finds the best carrying email for an
// attachment, scored by filename mention, content similarity and
// temporal proximity. Components without signal drop out and the
// remaining weights renormalise. Nil when no email clears the threshold.
func (s *MatcherService) MatchAttachmentToEmails(ctx context.Context, attachment *domain.Document, emails []*domain.Document) (*domain.Relationship, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	var bestEmail *domain.Document
	var bestScore float64
	var bestDetail map[string]any

	for _, email := range emails {
		if email.Content == "" {
			continue
		}

		var weighted, weightSum float64
		detail := make(map[string]any)

		filenameScore := filenameMatch(attachment.OriginalName, email.Content)
		weighted += filenameWeight * filenameScore
		weightSum += filenameWeight
		detail["filename_score"] = filenameScore

		if attachment.Content != "" {
			contentScore := jaccardSimilarity(attachment.Content, email.Content)
			weighted += contentWeight * contentScore
			weightSum += contentWeight
			detail["content_score"] = contentScore
		}

		if !attachment.Fingerprint.CreationSignature.IsZero() {
			emailFields, err := s.extractor.ExtractFields(ctx, email)
			if err == nil && emailFields != nil && emailFields.Date != nil {
				temporalScore := dateProximity(attachment.Fingerprint.CreationSignature, *emailFields.Date)
				weighted += temporalWeight * temporalScore
				weightSum += temporalWeight
				detail["temporal_score"] = temporalScore
			}
		}

		if weightSum == 0 {
			continue
		}

		score := weighted / weightSum
		if score > bestScore {
			bestScore = score
			bestEmail = email
			bestDetail = detail
		}
	}

	if bestEmail == nil || bestScore < attachmentThreshold {
		return nil, nil
	}

	bestDetail["reason"] = domain.ReasonContentSimilarity
	return &domain.Relationship{
		Source:     attachment.ID,
		Target:     bestEmail.ID,
		Type:       domain.RelationEmailAttachment,
		Confidence: bestScore,
		Metadata:   bestDetail,
	}, nil
}

// FindRelationships discovers every pairwise edge in a document set:
// each email against each record entry, and each attachment against its
// best-matching email. Edges are undirected and returned once.
func (s *MatcherService) FindRelationships(ctx context.Context, docs []*domain.Document) ([]domain.Relationship, error) {
	var emails, records, attachments []*domain.Document
	for _, doc := range docs {
		switch doc.Classification.Type {
		case domain.DocTypeEmail:
			emails = append(emails, doc)
		case domain.DocTypeRecordTable:
			records = append(records, doc)
		case domain.DocTypeAttachment, domain.DocTypeSpreadsheet:
			attachments = append(attachments, doc)
		}
	}

	var edges []domain.Relationship
	for _, email := range emails {
		for _, record := range records {
			edge, err := s.MatchEmailToRecord(ctx, email, record)
			if err != nil {
				return nil, err
			}
			if edge != nil {
				edges = append(edges, *edge)
			}
		}
	}

	for _, attachment := range attachments {
		edge, err := s.MatchAttachmentToEmails(ctx, attachment, emails)
		if err != nil {
			return nil, err
		}
		if edge != nil {
			edges = append(edges, *edge)
		}
	}

	logger.Debug("relationship scan over %d documents found %d edges", len(docs), len(edges))
	return edges, nil
}

// ==================== Scoring Helpers ====================

// levenshteinDistance is the classic edit distance with two rolling rows.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// stringSimilarity maps edit distance into [0,1].
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(longest)
}

// addressSimilarity compares normalised addresses, exact match first.
func addressSimilarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	return stringSimilarity(a, b)
}

// dateProximity decays linearly from 1 at zero distance to 0 at the
// proximity window.
func dateProximity(a, b time.Time) float64 {
	delta := math.Abs(a.Sub(b).Hours())
	return math.Max(0, 1-delta/dateProximityWindow.Hours())
}

// normaliseSubject lowercases and strips reply prefixes.
func normaliseSubject(subject string) string {
	for {
		stripped := subjectPrefix.ReplaceAllString(subject, "")
		if stripped == subject {
			break
		}
		subject = stripped
	}
	return strings.ToLower(strings.TrimSpace(subject))
}

// filenameMatch scores how strongly content mentions a filename.
// A full basename mention scores 1; otherwise the fraction of
// distinctive name tokens present in the content.
func filenameMatch(filename, content string) float64 {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		return 0
	}

	lowerContent := strings.ToLower(content)
	if strings.Contains(lowerContent, strings.ToLower(base)) {
		return 1
	}

	tokens := wordSplit.Split(strings.ToLower(base), -1)
	var total, found int
	for _, token := range tokens {
		if len(token) <= 3 {
			continue
		}
		total++
		if strings.Contains(lowerContent, token) {
			found++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(found) / float64(total)
}

// jaccardSimilarity compares word sets, ignoring short words.
func jaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range wordSplit.Split(strings.ToLower(text), -1) {
		if len(word) > jaccardMinWordLen {
			set[word] = struct{}{}
		}
	}
	return set
}
