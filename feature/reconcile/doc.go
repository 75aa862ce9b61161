// Package reconcile is the matching core of the sync engine. The Resolver
// classifies every Hub trap against a Tracker snapshot, the Arbiter guards
// the reverse direction against clobbering fresher Hub data, and the
// Builder turns classified decisions into outbound payloads for both
// platforms.
package reconcile
