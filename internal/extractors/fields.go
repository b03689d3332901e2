package extractors

import (
	"regexp"
	"strings"
	"time"
)

var addressPattern = regexp.MustCompile(`<([^>]+)>`)

// dateLayouts are tried in order when parsing free-form date strings.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// NormaliseAddress reduces an email address to a comparable form:
// display names are dropped and the address is lowercased.
// "Jane Doe <Jane@Example.com>" becomes "jane@example.com".
func NormaliseAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := addressPattern.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseDate attempts the known date layouts and returns nil when none
// match. Matching degrades to zero confidence on nil, so callers never
// treat an unparseable date as an error.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
