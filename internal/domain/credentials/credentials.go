// Package credentials holds the account rules shared by agent management and
// sign-up: address formats, password hashing and one-time codes.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/leadsplit/internal/domain/model"
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

const (
	otpMin  = 100000
	otpSpan = 900000
)

var (
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	mobilePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

// ValidMobile reports whether s is an E.164 number: "+", country code, 8 to 15 digits.
func ValidMobile(s string) bool { return mobilePattern.MatchString(s) }

// HashPassword returns the bcrypt hash of password. Passwords longer than
// MaxPasswordBytes are rejected with model.ErrInvalidInput.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", model.ErrInvalidInput, MaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// treated as a mismatch.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NewOTP returns a uniformly random six digit code.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
