package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
)

func TestCleanupOrphanedAdminRoles_RemovesOnlyMissingIdentities(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin-1")
	h.seedAdmin("admin-2")
	h.roles.grant("ghost-1")
	h.roles.grant("ghost-2")

	resp, err := h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CleanedCount)
	assert.ElementsMatch(t, []string{"ghost-1", "ghost-2"}, resp.UserIDs)
	assert.Equal(t, "Cleaned up 2 orphaned admin role(s)", resp.Message)

	assert.Equal(t, 2, h.roles.size())
	assert.NotNil(t, h.roles.get("admin-1"))
	assert.NotNil(t, h.roles.get("admin-2"))
	assert.Equal(t, []string{entity.AuditActionOrphanedRolesCleaned}, h.audit.actions())
	assert.True(t, h.metrics.has("cleanup:2"))

	again, err := h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.CleanedCount)
	assert.Empty(t, again.UserIDs)
	assert.Equal(t, 2, h.roles.size())
}

func TestCleanupOrphanedAdminRoles_NothingToClean(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin-1")

	resp, err := h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CleanedCount)
	assert.NotNil(t, resp.UserIDs)
	assert.Empty(t, resp.UserIDs)
	assert.Equal(t, "No orphaned admin roles found", resp.Message)
	assert.Empty(t, h.roles.deleteCalls)
	assert.Empty(t, h.audit.actions())
}

func TestCleanupOrphanedAdminRoles_ProviderErrorDeletesNothing(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin-1")
	h.roles.grant("ghost-1")
	h.identities.getErrs["admin-1"] = errUnavailable

	_, err := h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))
	assert.Empty(t, h.roles.deleteCalls)
	assert.Equal(t, 2, h.roles.size())
}

func TestCleanupOrphanedAdminRoles_RoleStoreErrors(t *testing.T) {
	h := newHarness()
	h.roles.grant("ghost-1")
	h.roles.deleteErr = errUnavailable

	_, err := h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))

	h.roles.deleteErr = nil
	h.roles.listErr = errUnavailable
	_, err = h.uc.CleanupOrphanedAdminRoles(context.Background())
	require.Error(t, err)
}
