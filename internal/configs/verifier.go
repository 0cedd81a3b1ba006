package configs

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the password verifier. The verifier only guards
// against typos before a run; it is not what encrypts the files.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	// Bounds accepted when reading a verifier back from the config file.
	maxArgonTime   uint32 = 16
	maxArgonMemory uint32 = 4 * 1024 * 1024 // KiB, 4 GiB
)

// SetPassword stores a fresh verifier for password in the config.
// The password itself is never stored.
func (c *Config) SetPassword(password string) error {
	if password == "" {
		return kerrors.ErrEmptyPassword
	}

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	c.Verifier = fmt.Sprintf("argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
	return nil
}

// VerifyPassword checks password against the stored verifier.
// Returns ErrPasswordNotSet when no verifier exists and ErrWrongPassword on mismatch.
func (c *Config) VerifyPassword(password string) error {
	if password == "" {
		return kerrors.ErrEmptyPassword
	}
	if c.Verifier == "" {
		return kerrors.ErrPasswordNotSet
	}

	parts := strings.Split(c.Verifier, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return fmt.Errorf("%w: malformed verifier", kerrors.ErrInvalidConfig)
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return fmt.Errorf("%w: unsupported verifier version %q", kerrors.ErrInvalidConfig, parts[1])
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return fmt.Errorf("%w: malformed verifier parameters: %v", kerrors.ErrInvalidConfig, err)
	}

	if time < 1 || time > maxArgonTime || threads < 1 ||
		memory < 8*uint32(threads) || memory > maxArgonMemory {
		return fmt.Errorf("%w: verifier parameters out of range: %s", kerrors.ErrInvalidConfig, parts[2])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return fmt.Errorf("%w: malformed verifier salt", kerrors.ErrInvalidConfig)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(want) == 0 {
		return fmt.Errorf("%w: malformed verifier hash", kerrors.ErrInvalidConfig)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return kerrors.ErrWrongPassword
	}
	return nil
}
