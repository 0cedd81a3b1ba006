package secrets

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// KeySize is the length of the derived AES-128 key in bytes.
const KeySize = 16

// Key is the symmetric key every tracked file is encrypted under.
type Key [KeySize]byte

// DeriveKey hashes the password with SHA3-224 and keeps the first 16 bytes of
// the digest. There is no salt: the same password yields the same key on every
// machine, so a repository can be decrypted anywhere the password is known.
func DeriveKey(password string) Key {
	sum := sha3.Sum224([]byte(password))
	var key Key
	copy(key[:], sum[:KeySize])
	return key
}

// String returns the key as hex. Only used in debug output.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
