// Package timeutil parses and formats the timestamp layouts used by the Hub
// and Tracker wire formats. The Hub emits zone-less UTC timestamps; the
// Tracker uses RFC3339. Everything is normalized to UTC on parse.
package timeutil
