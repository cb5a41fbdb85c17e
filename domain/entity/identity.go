package entity

import "time"

// Identity is an authenticated principal as reported by the identity provider.
// It never carries credentials.
type Identity struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName falls back to a generic label when the provider has no name on record.
func (i *Identity) DisplayName() string {
	if i == nil || i.FullName == "" {
		return "Admin User"
	}
	return i.FullName
}
