// Package audit keeps the durable trail of sync cycles: per-cycle result
// rows in the database and raw outbound payloads in object storage. The
// reconciliation itself stays stateless; audit data is write-only history.
package audit
