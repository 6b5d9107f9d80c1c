// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword hashes password with Argon2id under a fresh random salt and
// returns a self-describing encoded string. Two calls with the same password
// produce different outputs.
func HashPassword(password string) (string, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return encode(salt, key), nil
}

// VerifyPassword verifies password against an encoded hash produced by
// HashPassword. A mismatch is a plain false, never an error.
func VerifyPassword(password, encoded string) bool {
	salt, key, err := decode(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1
}

// encode renders salt and key in the PHC string format:
// $argon2id$v=19$m=65536,t=3,p=1$<b64 salt>$<b64 key>
func encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decode(encoded string) (salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, fmt.Errorf("malformed password hash")
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, err
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, err
	}
	return salt, key, nil
}
