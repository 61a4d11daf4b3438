package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// Auth form validation mirrors the web client's checks so both sides reject
// the same inputs with the same (Polish) messages. An empty string is the
// pass sentinel; validators never panic.

const DefaultPasswordMinLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email jest wymagany"
	}
	if !emailPattern.MatchString(email) {
		return "Nieprawidłowy format adresu email"
	}
	return ""
}

func ValidatePassword(password string, minLength int) string {
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}
	if password == "" {
		return "Hasło jest wymagane"
	}
	if len([]rune(password)) < minLength {
		return fmt.Sprintf("Hasło musi mieć co najmniej %d znaków", minLength)
	}
	return ""
}

// ValidatePasswordMatch is case- and whitespace-sensitive.
func ValidatePasswordMatch(password, confirm string) string {
	if confirm == "" {
		return "Powtórz hasło"
	}
	if password != confirm {
		return "Hasła nie są identyczne"
	}
	return ""
}
