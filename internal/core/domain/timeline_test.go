package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestDetermineTemporalRelationship(t *testing.T) {
	tests := []struct {
		name   string
		source TemporalInfo
		target TemporalInfo
		want   TemporalRelation
	}{
		{
			name:   "source before target",
			source: TemporalInfo{EventDate: datePtr("2024-01-15")},
			target: TemporalInfo{EventDate: datePtr("2024-01-16")},
			want:   TemporalBefore,
		},
		{
			name:   "source after target",
			source: TemporalInfo{EventDate: datePtr("2024-01-16")},
			target: TemporalInfo{EventDate: datePtr("2024-01-15")},
			want:   TemporalAfter,
		},
		{
			name:   "equal dates are concurrent",
			source: TemporalInfo{EventDate: datePtr("2024-01-15")},
			target: TemporalInfo{EventDate: datePtr("2024-01-15")},
			want:   TemporalConcurrent,
		},
		{
			name:   "missing source date",
			source: TemporalInfo{},
			target: TemporalInfo{EventDate: datePtr("2024-01-15")},
			want:   TemporalUnknown,
		},
		{
			name:   "missing target date",
			source: TemporalInfo{EventDate: datePtr("2024-01-15")},
			target: TemporalInfo{},
			want:   TemporalUnknown,
		},
		{
			name:   "both dates missing",
			source: TemporalInfo{},
			target: TemporalInfo{},
			want:   TemporalUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineTemporalRelationship(tt.source, tt.target)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocTypeValid(t *testing.T) {
	for _, dt := range []DocType{DocTypeEmail, DocTypeRecordTable, DocTypeAttachment, DocTypeSpreadsheet, DocTypeUnknown} {
		assert.True(t, dt.Valid(), string(dt))
	}
	assert.False(t, DocType("pdf").Valid())
	assert.False(t, DocType("").Valid())
}

func TestRelationshipOther(t *testing.T) {
	edge := Relationship{Source: "doc-a", Target: "doc-b", Type: RelationEmailRecord}

	other, ok := edge.Other("doc-a")
	assert.True(t, ok)
	assert.Equal(t, "doc-b", other)

	other, ok = edge.Other("doc-b")
	assert.True(t, ok)
	assert.Equal(t, "doc-a", other)

	_, ok = edge.Other("doc-c")
	assert.False(t, ok)
}
