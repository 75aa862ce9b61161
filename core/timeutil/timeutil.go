package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// HubLayout is the zone-less timestamp layout the Hub API emits.
// Values are documented to be UTC.
const HubLayout = "2006-01-02T15:04:05"

// layouts are tried in order when parsing a timestamp off the wire.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	HubLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse parses a timestamp in any of the layouts the two platforms use and
// returns it in UTC. Zone-less values are interpreted as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Format renders t as RFC3339 in UTC, the layout the Tracker API expects.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatHub renders t in the Hub's zone-less UTC layout.
func FormatHub(t time.Time) string {
	return t.UTC().Format(HubLayout)
}
