package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Parameters match hashes created by the original Node service, so exported
// users keep working.
const (
	pbkdf2Iterations = 10000
	pbkdf2KeyLen     = 64
	saltBytes        = 16
)

// HashPassword returns a new hex salt and the hex PBKDF2-SHA512 hash of
// password under it. The salt is used in its hex form.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	salt = hex.EncodeToString(raw)
	return derive(password, salt), salt, nil
}

// CheckPassword reports whether password matches hash under salt.
func CheckPassword(password, hash, salt string) bool {
	want, err := hex.DecodeString(hash)
	if err != nil || len(want) != pbkdf2KeyLen {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(password, salt string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New))
}
