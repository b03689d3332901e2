package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

func TestExtractFieldsCSV(t *testing.T) {
	doc := &domain.Document{
		Content: "Subject,Sender,Recipient,Sent Date\nSchedule change,alice@example.com,Bob <bob@example.com>,2024-03-04\nSecond row,x@y.com,z@y.com,2024-03-05\n",
	}

	fields, err := New().ExtractFields(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, fields)

	assert.Equal(t, "Schedule change", fields.Subject)
	assert.Equal(t, "alice@example.com", fields.From)
	assert.Equal(t, "bob@example.com", fields.To)
	require.NotNil(t, fields.Date)
	assert.Equal(t, 2024, fields.Date.Year())
}

func TestExtractFieldsTSV(t *testing.T) {
	doc := &domain.Document{
		Content: "Subject\tFrom\tTo\tDate\npickup\ta@b.com\tc@d.com\t01/15/2024\n",
	}

	fields, err := New().ExtractFields(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, fields)
	assert.Equal(t, "pickup", fields.Subject)
	assert.Equal(t, "a@b.com", fields.From)
}

func TestExtractFieldsNoRecognisableColumns(t *testing.T) {
	doc := &domain.Document{Content: "alpha,beta,gamma\n1,2,3\n"}

	fields, err := New().ExtractFields(context.Background(), doc)
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestExtractFieldsHeaderOnly(t *testing.T) {
	doc := &domain.Document{Content: "Subject,From,To,Date\n"}

	fields, err := New().ExtractFields(context.Background(), doc)
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestExtractFieldsEmpty(t *testing.T) {
	fields, err := New().ExtractFields(context.Background(), &domain.Document{})
	require.NoError(t, err)
	assert.Nil(t, fields)
}
