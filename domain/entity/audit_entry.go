package entity

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	AuditActionFirstAdminBootstrapped = "first_admin_bootstrapped"
	AuditActionAdminRoleGranted       = "admin_role_granted"
	AuditActionCreateAdmin            = "create_admin"
	AuditActionDeleteIdentity         = "delete_identity"
	AuditActionOrphanedRolesCleaned   = "orphaned_admin_roles_cleaned"

	AuditResourceUserRoles  = "user_roles"
	AuditResourceIdentities = "identities"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func newAuditID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// AuditEntry is an append-only record of a privileged action.
// ActorID is empty for system-initiated actions such as bootstrap and cleanup.
type AuditEntry struct {
	ID           string                 `json:"id"`
	ActorID      string                 `json:"actor_id,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Details      map[string]interface{} `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func NewAuditEntry(actorID, action, resourceType, resourceID string, details map[string]interface{}) *AuditEntry {
	now := time.Now().UTC()
	return &AuditEntry{
		ID:           newAuditID(now),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    now,
	}
}
