// Package configs manages the per-repository gitseal configuration.
//
// Configuration is stored in TOML format at the repository root as
// gitseal.toml and is meant to be committed:
//
//	use_zstd = true
//	zstd_level = 15
//	crypt_list = ["secrets/key.txt", "config/prod"]
//	verifier = "argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>"
//
// # Tracked Paths
//
// crypt_list holds files and directories relative to the repository root,
// always with forward slashes. A directory covers everything beneath it,
// including files added later. Entries may not end in ".enc" or ".zst"
// since those suffixes mark encrypted artifacts.
//
// # Password Verifier
//
// The password is never written anywhere. SetPassword stores an argon2id
// hash with a random salt so a mistyped password is caught before any file
// is touched. The file key is derived separately (see package secrets).
//
// # Errors
//
// A config that cannot be parsed or that breaks the rules above returns
// ErrInvalidConfig. Callers treat it as fatal.
package configs
