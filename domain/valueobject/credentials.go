package valueobject

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrMissingEmail     = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrMissingPassword  = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrMissingFullName  = errors.New("full name is required")
	ErrInvalidFullName  = errors.New("full name must be between 2 and 255 characters")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Credentials is a validated email/password pair for a new or updated identity.
type Credentials struct {
	email    string
	password string
}

func NewCredentials(email, password string) (*Credentials, error) {
	normalized, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return &Credentials{
		email:    normalized,
		password: password,
	}, nil
}

func (c *Credentials) Email() string {
	return c.email
}

func (c *Credentials) Password() string {
	return c.password
}

// NewEmail validates and normalizes an address.
func NewEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrMissingEmail
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NewFullName trims and bounds a display name.
func NewFullName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingFullName
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 255 {
		return "", ErrInvalidFullName
	}
	return name, nil
}

// ValidatePassword checks a new password on its own, e.g. when redeeming a recovery link.
func ValidatePassword(password string) error {
	return validatePassword(password)
}

func validatePassword(password string) error {
	if password == "" {
		return ErrMissingPassword
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
