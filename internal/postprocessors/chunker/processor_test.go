package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

func testDoc(content string) *domain.Document {
	return &domain.Document{ID: "doc-1", Content: content}
}

// reassemble joins chunk texts, dropping each continuation chunk's
// declared overlap prefix.
func reassemble(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		text := c.Text
		if c.Continues {
			text = text[c.OverlapTokens*charsPerToken:]
		}
		b.WriteString(text)
	}
	return b.String()
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatNumbered, DetectFormat("Message 1 of 42\nSent: 2024-01-01"))
	assert.Equal(t, FormatEmail, DetectFormat("From: a@b.com\nSubject: hi\n\nbody"))
	assert.Equal(t, FormatEmail, DetectFormat("plain prose with no markers"))
}

func TestNormalise(t *testing.T) {
	t.Run("line endings unified", func(t *testing.T) {
		assert.Equal(t, "a\nb\nc", Normalise("a\r\nb\rc"))
	})

	t.Run("control characters stripped", func(t *testing.T) {
		assert.Equal(t, "ab\tc", Normalise("a\x00b\x01\tc\x07"))
	})

	t.Run("inline marker gets line break", func(t *testing.T) {
		out := Normalise("trailing text Message 2 of 5\nbody")
		assert.Contains(t, out, "\nMessage 2 of 5")
	})

	t.Run("blank runs collapse", func(t *testing.T) {
		assert.Equal(t, "a\n\nb", Normalise("a\n\n\n\n\nb"))
	})
}

func TestProcessNumberedFormat(t *testing.T) {
	content := "Message 1 of 3\nSent: 01/02/2024\nFirst message body.\n\nMessage 2 of 3\nSent: 01/03/2024\nSecond message body.\n\nMessage 3 of 3\nSent: 01/04/2024\nThird message body."

	// Force one unit per chunk.
	p := New(WithTargetTokens(10))
	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "message", c.Type)
		assert.Equal(t, fmt.Sprintf("Message %d", i+1), c.Section)
		assert.False(t, c.Continues)
		assert.Equal(t, "doc-1", c.DocumentID)
	}
}

func TestProcessEmailFormat(t *testing.T) {
	content := "From: alice@example.com\nTo: bob@example.com\nSubject: pickup time\nDate: Mon, 4 Mar 2024 10:00:00 +0000\n\nCan we do 5pm?\n\nFrom: bob@example.com\nTo: alice@example.com\nSubject: Re: pickup time\nDate: Mon, 4 Mar 2024 11:00:00 +0000\n\n5pm works."

	p := New(WithTargetTokens(10))
	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "email", chunks[0].Type)
	assert.Equal(t, "alice@example.com", chunks[0].Headers["from"])
	assert.Equal(t, "pickup time", chunks[0].Headers["subject"])
	assert.Equal(t, 1, chunks[0].EmailID)
	assert.Equal(t, 2, chunks[1].EmailID)

	// Re: prefix strips to the same thread.
	assert.Equal(t, chunks[0].ThreadID, chunks[1].ThreadID)
}

func TestProcessAccumulatesTowardsTarget(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "Message %d of 10\nshort body %d\n\n", i, i)
	}

	p := New(WithTargetTokens(150))
	chunks, err := p.Process(context.Background(), testDoc(b.String()), nil)
	require.NoError(t, err)

	// Ten tiny messages pack into fewer chunks than units.
	assert.Less(t, len(chunks), 10)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.EstimatedTokens, DefaultMaxTokens)
	}
}

func TestProcessRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "numbered export",
			content: "Message 1 of 2\nfirst body line\nsecond body line\n\nMessage 2 of 2\nanother body",
		},
		{
			name:    "email pair",
			content: "From: a@b.com\nSubject: one\n\nbody one text here\n\nFrom: c@d.com\nSubject: two\n\nbody two text here",
		},
		{
			name:    "plain prose",
			content: strings.Repeat("evidence narrative sentence with several words in it. ", 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithTargetTokens(40))
			chunks, err := p.Process(context.Background(), testDoc(tt.content), nil)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)
			assert.Equal(t, Normalise(tt.content), reassemble(chunks))
		})
	}
}

func TestProcessForcedSplitOverlap(t *testing.T) {
	// One unit far over a tiny ceiling forces a split.
	body := strings.Repeat("w ", 4000)
	content := "Message 1 of 1\n" + body

	p := New(WithTargetTokens(150), WithMaxTokens(500), WithMinOverlap(50))
	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.False(t, chunks[0].Continues)
	assert.Zero(t, chunks[0].OverlapTokens)
	for _, c := range chunks[1:] {
		assert.True(t, c.Continues)
		assert.GreaterOrEqual(t, c.OverlapTokens, 50)
		assert.Equal(t, "Message 1", c.Section)
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, c.EstimatedTokens, 500)
	}

	assert.Equal(t, Normalise(content), reassemble(chunks))
}

func TestProcessEmptyContent(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), testDoc(""), nil)
	require.NoError(t, err)
	assert.Nil(t, chunks)

	chunks, err = p.Process(context.Background(), testDoc("\n\n\n"), nil)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestProcessNilDocument(t *testing.T) {
	_, err := New().Process(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestMessageReferences(t *testing.T) {
	content := "Message 1 of 2\nas discussed in Message 7 and Message 9\n\nMessage 2 of 2\nno mentions here"

	p := New(WithTargetTokens(10))
	chunks, err := p.Process(context.Background(), testDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, []string{"Message 7", "Message 9"}, chunks[0].References)
	assert.Empty(t, chunks[1].References)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 2000, EstimateTokens(strings.Repeat("x", 8000)))
}
