// Package secrets is the file-state engine behind gitseal.
//
// It turns tracked files in a working tree into encrypted artifacts and back,
// under a key derived from a single password.
//
// # Pipeline
//
// Encrypt, per file:
//
//  1. Read the plaintext
//  2. Compress it with zstd; keep the result only if it is strictly smaller
//  3. Seal with AES-128-GCM-SIV
//  4. Write <name>.zst.enc (compressed) or <name>.enc (not compressed)
//  5. Remove the plaintext
//
// Decrypt runs the same steps in reverse, choosing whether to decompress from
// the suffix alone. The suffix is the only record of a file's state; see
// Classify.
//
// # Keys and Nonces
//
// The key is the first 16 bytes of SHA3-224(password). There is no salt and
// the nonce is the fixed string "samenonceplz" for every file and every run.
// GCM-SIV is used because it stays safe under nonce reuse, with one leak that
// is accepted: two files with identical content encrypt to identical bytes,
// so an observer can tell that they are equal.
//
// # File Selection
//
// Resolver expands the tracked list (files and directories, relative to the
// repository root) into candidates. Files already in the requested state are
// skipped, which makes encrypt and decrypt idempotent. An optional doublestar
// pattern narrows decrypt to matching plaintext paths.
//
// # Concurrency
//
// Engine.Run processes candidates on a bounded pool (runtime.NumCPU() workers
// by default). Each file is written to a temp file, synced and renamed into
// place before its source is removed. Failures are recorded per file in the
// Result and never stop the rest of the run.
package secrets
