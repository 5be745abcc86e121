package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const passwordHashPrefix = "argon2id"

// argon2id parameters; changing them only affects newly hashed passwords since
// verification reads the salt from the stored value and re-derives with these.
const (
	argonTime    uint32 = 2
	argonMemory  uint32 = 19 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// ErrMalformedHash is returned when a stored password hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// GenerateSalt returns a random base64 salt.
func GenerateSalt() (string, error) {
	b := make([]byte, argonSaltLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPassword hashes plain with a fresh salt, encoded as argon2id$<salt>$<hash>.
func HashPassword(plain string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return HashPasswordWithSalt(plain, salt), nil
}

// HashPasswordWithSalt hashes plain with a known base64 salt.
func HashPasswordWithSalt(plain, salt string) string {
	key := argon2.IDKey([]byte(plain), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return strings.Join([]string{passwordHashPrefix, salt, base64.RawStdEncoding.EncodeToString(key)}, "$")
}

// VerifyPassword reports whether plain matches the encoded hash. The comparison
// is constant time.
func VerifyPassword(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != passwordHashPrefix || parts[1] == "" || parts[2] == "" {
		return false, ErrMalformedHash
	}
	expected := HashPasswordWithSalt(plain, parts[1])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(encoded)) == 1, nil
}
