package validation

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Department code pattern - uppercase alphanumeric
	DepartmentCodePattern = `^[A-Z0-9]+$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email          *regexp.Regexp
	DepartmentCode *regexp.Regexp
}{
	Email:          regexp.MustCompile(EmailPattern),
	DepartmentCode: regexp.MustCompile(DepartmentCodePattern),
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if !CompiledPatterns.Email.MatchString(email) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidEmail, email)
	}
	return nil
}

// ValidatePassword enforces minimum length plus at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("%w: must be at least %d characters long", apperrors.ErrInvalidPassword, PasswordMinLength)
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: must contain at least one letter", apperrors.ErrInvalidPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: must contain at least one digit", apperrors.ErrInvalidPassword)
	}
	return nil
}
