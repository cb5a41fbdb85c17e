package entity

import "time"

// Role is the name of a privilege held by an identity.
type Role string

const (
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// RoleAssignment grants Role to UserID. At most one row exists per (UserID, Role).
// GrantedBy is nil for the bootstrap grant.
type RoleAssignment struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	GrantedBy *string   `json:"granted_by,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

func NewRoleAssignment(userID string, role Role, grantedBy string) *RoleAssignment {
	ra := &RoleAssignment{
		UserID:    userID,
		Role:      role,
		GrantedAt: time.Now().UTC(),
	}
	if grantedBy != "" {
		ra.GrantedBy = &grantedBy
	}
	return ra
}
