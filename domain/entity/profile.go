package entity

import "time"

type Profile struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewProfile(identity *Identity) *Profile {
	return &Profile{
		ID:            identity.ID,
		FullName:      identity.FullName,
		Email:         identity.Email,
		EmailVerified: identity.EmailConfirmed,
		UpdatedAt:     time.Now().UTC(),
	}
}
