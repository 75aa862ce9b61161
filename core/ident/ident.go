package ident

import (
	"errors"
	"strings"
)

// ErrEmptyID indicates that an identifier was empty after cleaning.
// Callers must skip the entity and log a warning rather than index it.
var ErrEmptyID = errors.New("empty identifier")

// MinHubIDLength is the minimum identifier length the Hub platform accepts.
const MinHubIDLength = 32

// PadChar is the pad character appended to short identifiers. The normalizer
// trims it back off, so padding is reversible.
const PadChar = '#'

// knownPrefixes are the integration prefixes stripped during normalization,
// in this order. The list covers the device prefix used by tracker subjects,
// the round-trip prefixes this service writes, and manufacturer prefixes.
var knownPrefixes = []string{"device_", "rmwhub_", "rmw_", "e_", "edgetech_"}

// Clean scrubs line breaks, tabs and quote characters from a free-form
// identifier coming off the wire.
func Clean(raw string) string {
	s := strings.NewReplacer(
		"\n", " ",
		"\r", " ",
		"\t", " ",
		"'", "",
		`"`, "",
	).Replace(raw)

	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	return strings.TrimSpace(s)
}

// Normalize canonicalizes a raw trap/device identifier into the key used for
// cross-system matching: known prefixes are stripped (repeatedly, so stacked
// prefixes like "e_rmwhub_x" collapse), trailing pad characters are trimmed,
// and the result is lower-cased. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	s := Clean(raw)
	if s == "" {
		return "", ErrEmptyID
	}

	for {
		stripped := stripKnownPrefixes(s)
		if stripped == s {
			break
		}
		s = stripped
	}

	s = strings.TrimRight(s, string(PadChar))
	s = strings.ToLower(s)

	if s == "" {
		return "", ErrEmptyID
	}
	return s, nil
}

// Same reports whether two raw identifiers normalize to the same key.
// Identifiers that cannot be normalized only match themselves.
func Same(a, b string) bool {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

// PadToMinimum right-pads id with pad up to minLen characters. Identifiers
// already long enough are returned unchanged.
func PadToMinimum(id string, minLen int, pad byte) string {
	if len(id) >= minLen {
		return id
	}
	return id + strings.Repeat(string(pad), minLen-len(id))
}

// stripKnownPrefixes removes one occurrence of each known prefix, in order.
// Matching is case-insensitive so normalization stays idempotent.
func stripKnownPrefixes(s string) string {
	for _, prefix := range knownPrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
	}
	return s
}
