package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrComparisonFailed = errors.New("password comparison failed")
)

// ComparePassword checks a raw password against its bcrypt hash. Callers map
// any failure to a credentials error, so a mismatch and a malformed hash are
// not distinguished further.
func ComparePassword(hashedPassword, rawPassword string) error {
	if hashedPassword == "" || rawPassword == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(rawPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrComparisonFailed
		}
		return err
	}
	return nil
}
