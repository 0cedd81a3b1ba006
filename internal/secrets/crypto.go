package secrets

import (
	"crypto/cipher"
	"fmt"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	siv "github.com/secure-io/siv-go"
)

// fixedNonce is shared by every file and every run. GCM-SIV tolerates the
// reuse: the only thing revealed is whether two plaintexts are identical.
var fixedNonce = []byte("samenonceplz")

// Cipher seals and opens whole file contents with AES-128-GCM-SIV.
// It is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher for the given key.
func NewCipher(key Key) (*Cipher, error) {
	aead, err := siv.NewGCM(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES-GCM-SIV cipher: %w", err)
	}
	if aead.NonceSize() != len(fixedNonce) {
		return nil, fmt.Errorf("unexpected nonce size %d", aead.NonceSize())
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and appends the authentication tag.
func (c *Cipher) Seal(plaintext []byte) []byte {
	return c.aead.Seal(nil, fixedNonce, plaintext, nil)
}

// Open verifies and decrypts ciphertext. A tag mismatch, whether from a wrong
// password or a modified file, returns an error wrapping ErrAuthentication.
func (c *Cipher) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", kerrors.ErrAuthentication)
	}
	plaintext, err := c.aead.Open(nil, fixedNonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAuthentication, err)
	}
	return plaintext, nil
}

// Overhead is the number of bytes Seal adds to its input.
func (c *Cipher) Overhead() int {
	return c.aead.Overhead()
}
