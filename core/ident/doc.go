// Package ident canonicalizes gear identifiers across the Hub and Tracker
// platforms.
//
// The two systems decorate the same physical identifier differently
// (manufacturer prefixes, round-trip prefixes, pad characters, casing).
// Normalize reduces all of those to a single comparable key; PadToMinimum
// restores the minimum length the Hub requires on upload.
package ident
