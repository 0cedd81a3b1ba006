// Package audit records encrypt and decrypt runs for a repository.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	.git/gitseal/audit.jsonl
//
// It sits inside .git so it is local to each clone and never committed.
// Lines are written through a zap JSON encoder. Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name and a per-run UUID
//   - The local user name
//   - Files transformed and files that failed
//
// # Usage
//
//	entry := audit.NewEntry("encrypt")
//	entry.Files = transformed
//	audit.Log(root, entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If the log cannot be written the run still
// succeeds.
package audit
