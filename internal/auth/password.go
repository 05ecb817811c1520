package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. The stored record is "hex(key).hex(salt)" with a
// per-call 16-byte salt and a 64-byte derived key.
const (
	scryptN       = 32768
	scryptR       = 8
	scryptP       = 1
	saltLen       = 16
	derivedKeyLen = 64
)

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generating salt")
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, derivedKeyLen)
	if err != nil {
		return "", errors.Wrap(err, "deriving key")
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// ComparePasswords recomputes the derived key with the stored salt and
// compares in constant time. A wrong password returns (false, nil); only
// a malformed stored record is an error.
func ComparePasswords(supplied, stored string) (bool, error) {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return false, errors.New("malformed password record")
	}

	storedKey, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, errors.Wrap(err, "decoding stored key")
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, errors.Wrap(err, "decoding stored salt")
	}

	suppliedKey, err := scrypt.Key([]byte(supplied), salt, scryptN, scryptR, scryptP, len(storedKey))
	if err != nil {
		return false, errors.Wrap(err, "deriving key")
	}

	return subtle.ConstantTimeCompare(storedKey, suppliedKey) == 1, nil
}
