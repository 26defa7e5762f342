package registry

import (
	"net/mail"
	"regexp"
	"unicode"
)

// namePattern admits lowercase letters and digits with single interior
// dashes, the namespace rule the authority applies to usernames, orgnames,
// and teamnames alike.
var namePattern = regexp.MustCompile(`^[a-z0-9](?:-?[a-z0-9])*$`)

const maxNameLength = 38

// ValidateName checks the shared namespace policy locally before any remote
// call. The label names the field in the error message.
func ValidateName(label, name string) error {
	if name == "" {
		return Errorf(KindValidation, "%s is required", label)
	}
	if len(name) > maxNameLength || !namePattern.MatchString(name) {
		return Errorf(KindValidation,
			"invalid %s %q, expected up to %d lowercase letters, digits, or single hyphens", label, name, maxNameLength)
	}
	return nil
}

// ValidateEmail checks that the address parses as a bare RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return Errorf(KindValidation, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Errorf(KindValidation, "invalid email address %q", email)
	}
	return nil
}

// ValidatePassword enforces the minimum password policy: at least eight
// characters including a letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Errorf(KindValidation, "password must be at least 8 characters long")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return Errorf(KindValidation, "password must contain at least one letter and one digit")
	}
	return nil
}
