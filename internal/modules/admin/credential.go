package admin

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword turns a password into the stored credential.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches credential. legacy is set
// when the credential is an old base64-encoded password that matched and
// should be replaced with a fresh hash.
func CheckPassword(credential, password string) (ok, legacy bool) {
	if isBcrypt(credential) {
		return bcrypt.CompareHashAndPassword([]byte(credential), []byte(password)) == nil, false
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(password))
	if subtle.ConstantTimeCompare([]byte(credential), []byte(encoded)) == 1 {
		return true, true
	}
	return false, false
}

func isBcrypt(credential string) bool {
	return strings.HasPrefix(credential, "$2a$") ||
		strings.HasPrefix(credential, "$2b$") ||
		strings.HasPrefix(credential, "$2y$")
}
