// Package passhash implements the board's credential scheme: a salted
// SHA-512 hex digest where the salt is itself the digest of the account
// name. The scheme is fixed by the stored data; changing it would
// invalidate every existing credential.
package passhash

import (
	"crypto/sha512"
	"encoding/hex"
	"regexp"
)

var (
	accountNameRe = regexp.MustCompile(`^[0-9a-zA-Z]{3,}`)
	passwordRe    = regexp.MustCompile(`^[0-9a-zA-Z_]{6,}`)
)

// Digest returns the lowercase hex SHA-512 of src.
func Digest(src string) string {
	sum := sha512.Sum512([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Salt derives the per-account salt from the account name.
func Salt(accountName string) string {
	return Digest(accountName)
}

// Calculate returns the stored passhash for the given credentials:
// Digest(password + ":" + Salt(accountName)).
func Calculate(accountName, password string) string {
	return Digest(password + ":" + Salt(accountName))
}

// ValidAccountName reports whether the name starts with at least 3
// alphanumeric characters.
func ValidAccountName(accountName string) bool {
	return accountNameRe.MatchString(accountName)
}

// ValidPassword reports whether the password starts with at least 6
// word characters.
func ValidPassword(password string) bool {
	return passwordRe.MatchString(password)
}
