package entity

import (
	"strings"
	"time"
)

// User is the credential record kept by the local identity provider.
// Workflow code never sees it; it only deals with Identity.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Password       string     `json:"-"`
	EmailConfirmed bool       `json:"email_confirmed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

func NewUser(id, email, fullName, password string, emailConfirmed bool) *User {
	now := time.Now().UTC()
	return &User{
		ID:             id,
		Email:          NormalizeEmail(email),
		FullName:       strings.TrimSpace(fullName),
		Password:       password,
		EmailConfirmed: emailConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Identity projects the user onto the provider-neutral view.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
