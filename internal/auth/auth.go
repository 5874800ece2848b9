// Package auth supplies the verified-identity capability consumed by
// the core services: credential hashing, login verification, and session
// tokens. The services themselves only ever see a currentUsername.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCredential hashes a plaintext password for storage
func HashCredential(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyCredential reports whether the password matches the stored hash
func VerifyCredential(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
