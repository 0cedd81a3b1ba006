package secrets

import "strings"

// Reserved suffixes. Nothing else in gitseal may produce or interpret them.
const (
	EncryptedSuffix           = ".enc"
	CompressedSuffix          = ".zst"
	CompressedEncryptedSuffix = CompressedSuffix + EncryptedSuffix
)

// FileState is the encryption state of a file, read from its name alone.
type FileState int

const (
	Plain FileState = iota
	CompressedEncrypted
	Encrypted
)

func (s FileState) String() string {
	switch s {
	case Plain:
		return "plain"
	case CompressedEncrypted:
		return "compressed+encrypted"
	case Encrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// IsEncrypted reports whether s is one of the encrypted variants.
func (s FileState) IsEncrypted() bool {
	return s == CompressedEncrypted || s == Encrypted
}

// Classify returns the state encoded in path's suffix. It never reads the file.
func Classify(path string) FileState {
	switch {
	case strings.HasSuffix(path, CompressedEncryptedSuffix):
		return CompressedEncrypted
	case strings.HasSuffix(path, EncryptedSuffix):
		return Encrypted
	default:
		return Plain
	}
}

// EncryptedPath returns the artifact name for a plaintext path.
func EncryptedPath(original string, compressed bool) string {
	if compressed {
		return original + CompressedEncryptedSuffix
	}
	return original + EncryptedSuffix
}

// DecryptedPath strips the artifact suffix. Plain paths are returned unchanged.
func DecryptedPath(path string) string {
	switch Classify(path) {
	case CompressedEncrypted:
		return strings.TrimSuffix(path, CompressedEncryptedSuffix)
	case Encrypted:
		return strings.TrimSuffix(path, EncryptedSuffix)
	default:
		return path
	}
}

// ArtifactPaths lists both possible artifact names for a plaintext path.
func ArtifactPaths(original string) []string {
	return []string{EncryptedPath(original, true), EncryptedPath(original, false)}
}

// ReservedSuffix reports whether path cannot be tracked. Besides the artifact
// suffix, a plain ".zst" file is refused: once encrypted it would end in
// ".zst.enc" and decrypt as if it had been compressed.
func ReservedSuffix(path string) bool {
	p := strings.TrimRight(path, "/")
	return strings.HasSuffix(p, EncryptedSuffix) || strings.HasSuffix(p, CompressedSuffix)
}
