package auth

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
)

// codeAlphabet leaves out characters that are easy to misread in an email.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// dummyHash is compared against when no user matches, so a lookup miss costs
// about as much as a wrong code.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("reviewhub-dummy-code"), bcrypt.DefaultCost)

// GenerateCode returns a random confirmation code of the given length.
func GenerateCode(length int) (string, error) {
	code, err := gonanoid.Generate(codeAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return code, nil
}

// HashCode creates a bcrypt hash from the given confirmation code.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode reports whether code matches the stored hash. An empty hash
// never matches.
func VerifyCode(hashedCode, code string) bool {
	if hashedCode == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code)) == nil
}

// BurnCompare performs a comparison that always fails.
func BurnCompare(code string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(code))
}
