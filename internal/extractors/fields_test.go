package extractors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseAddress(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormaliseAddress("Alice Smith <Alice@Example.com>"))
	assert.Equal(t, "alice@example.com", NormaliseAddress("ALICE@EXAMPLE.COM"))
	assert.Equal(t, "alice@example.com", NormaliseAddress("  alice@example.com  "))
}

func TestParseDate(t *testing.T) {
	t.Run("common layouts", func(t *testing.T) {
		for _, raw := range []string{
			"2024-03-15",
			"2024-03-15 10:30:00",
			"Fri, 15 Mar 2024 10:30:00 -0500",
			"03/15/2024",
			"3/15/2024",
		} {
			parsed := ParseDate(raw)
			require.NotNil(t, parsed, "layout %q", raw)
			assert.Equal(t, 2024, parsed.Year())
			assert.Equal(t, time.March, parsed.Month())
			assert.Equal(t, 15, parsed.Day())
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.Nil(t, ParseDate("next Tuesday"))
		assert.Nil(t, ParseDate(""))
	})
}
