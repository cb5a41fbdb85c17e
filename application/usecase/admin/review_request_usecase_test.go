package admin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
)

func review(h *harness, reviewer *entity.Identity, requestID, action string) (*inbound.ReviewAdminRequestResponse, error) {
	return h.uc.ReviewRequest(context.Background(), reviewer, inbound.ReviewAdminRequestRequest{
		RequestID: requestID,
		Action:    action,
	})
}

func TestReviewRequest_ApproveGrantsRoleAndSendsLink(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h.uc.reviewRequestUseCase.now = func() time.Time { return fixed }

	resp, err := review(h, reviewer, "req-1", "approve")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.EmailSent)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, "approved", resp.Request.Status)
	assert.Equal(t, "user-9@institute.edu", resp.Request.Email)

	stored := h.requests.get("req-1")
	assert.Equal(t, entity.AdminRequestApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "admin-1", *stored.ReviewedBy)
	require.NotNil(t, stored.ReviewedAt)
	assert.True(t, fixed.Equal(*stored.ReviewedAt))

	grant := h.roles.get("user-9")
	require.NotNil(t, grant)
	require.NotNil(t, grant.GrantedBy)
	assert.Equal(t, "admin-1", *grant.GrantedBy)

	requester := h.identities.identity("user-9")
	assert.True(t, requester.EmailConfirmed)
	assert.Equal(t, "Requester user-9", requester.FullName)

	assert.Equal(t, RecoveryLinkTTL, h.identities.lastLinkTTL)
	assert.Equal(t, 24*time.Hour, h.identities.lastLinkTTL)
	assert.Equal(t, testRedirect, h.identities.lastRedirect)

	sent := h.email.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "user-9@institute.edu", sent[0].To)
	assert.Equal(t, approvalEmailSubject, sent[0].Subject)
	assert.Contains(t, sent[0].HTML, testRedirect+"?token=recovery-for-user-9@institute.edu")
	assert.Contains(t, sent[0].HTML, "Requester user-9")
	assert.Contains(t, sent[0].HTML, "Forgot password")
	assert.NotContains(t, sent[0].HTML, "approve you again")

	require.Len(t, h.audit.entries, 1)
	entry := h.audit.entries[0]
	assert.Equal(t, entity.AuditActionAdminRoleGranted, entry.Action)
	assert.Equal(t, "admin-1", entry.ActorID)
	assert.Equal(t, "user-9@institute.edu", entry.Details["email"])
	assert.Equal(t, "req-1", entry.Details["request_id"])
	assert.True(t, h.metrics.has("review:approve:approved"))
}

func TestReviewRequest_ApproveWhenRoleAlreadyHeld(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.roles.grant("user-9")
	require.Equal(t, 2, h.roles.size())

	resp, err := review(h, reviewer, "req-1", "approve")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "approved", resp.Request.Status)

	assert.Equal(t, 2, h.roles.size())
	grant := h.roles.get("user-9")
	require.NotNil(t, grant)
	require.NotNil(t, grant.GrantedBy)
	assert.Equal(t, "admin-1", *grant.GrantedBy)
	assert.Len(t, h.email.messages(), 1)
}

func TestReviewRequest_RejectLeavesNoGrant(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")

	resp, err := review(h, reviewer, "req-1", "REJECT")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.EmailSent)
	assert.Equal(t, "rejected", resp.Request.Status)

	assert.Equal(t, entity.AdminRequestRejected, h.requests.get("req-1").Status)
	assert.Nil(t, h.roles.get("user-9"))
	assert.False(t, h.identities.identity("user-9").EmailConfirmed)
	assert.Empty(t, h.email.messages())
	assert.Empty(t, h.audit.actions())
}

func TestReviewRequest_NonAdminIsForbidden(t *testing.T) {
	h := newHarness()
	h.identities.seed("staff-1", "staff@institute.edu", "Staff", true)
	h.seedPendingRequest("req-1", "user-9")

	_, err := review(h, h.identities.identity("staff-1"), "req-1", "approve")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindForbidden))
	assert.Equal(t, entity.AdminRequestPending, h.requests.get("req-1").Status)
	assert.Nil(t, h.roles.get("user-9"))

	_, err = review(h, nil, "req-1", "approve")
	assert.True(t, domainerr.IsKind(err, domainerr.KindUnauthenticated))
}

func TestReviewRequest_InputErrors(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")

	_, err := review(h, reviewer, "", "approve")
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))

	_, err = review(h, reviewer, "req-1", "maybe")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))
	assert.Equal(t, string(domainerr.ErrCodeInvalidAction), domainerr.PublicCode(err))

	_, err = review(h, reviewer, "req-404", "approve")
	assert.True(t, domainerr.IsKind(err, domainerr.KindNotFound))

	assert.Equal(t, entity.AdminRequestPending, h.requests.get("req-1").Status)
}

func TestReviewRequest_AlreadyReviewed(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")

	_, err := review(h, reviewer, "req-1", "reject")
	require.NoError(t, err)

	_, err = review(h, reviewer, "req-1", "approve")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindConflict))
	assert.Equal(t, entity.AdminRequestRejected, h.requests.get("req-1").Status)
	assert.Nil(t, h.roles.get("user-9"))
}

func TestReviewRequest_EmailFailureIsAWarning(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.email.err = errUnavailable

	resp, err := review(h, reviewer, "req-1", "approve")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.EmailSent)
	assert.Equal(t, []string{warningEmailFailed}, resp.Warnings)
	assert.NotNil(t, h.roles.get("user-9"))
	assert.Equal(t, []string{entity.AuditActionAdminRoleGranted}, h.audit.actions())
	assert.True(t, h.metrics.has("notify_failed:email"))
}

func TestReviewRequest_RecoveryLinkFailureIsAWarning(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.identities.linkErr = errUnavailable

	resp, err := review(h, reviewer, "req-1", "approve")
	require.NoError(t, err)
	assert.False(t, resp.EmailSent)
	assert.Equal(t, []string{warningRecoveryLinkFailed}, resp.Warnings)
	assert.Empty(t, h.email.messages())
	assert.NotNil(t, h.roles.get("user-9"))
}

func TestReviewRequest_MissingRequesterIdentity(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.identities.remove("user-9")

	_, err := review(h, reviewer, "req-1", "approve")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindNotFound))
	assert.Equal(t, entity.AdminRequestPending, h.requests.get("req-1").Status)
	assert.Nil(t, h.roles.get("user-9"))
}

func TestReviewRequest_ConfirmFailureGrantsNothing(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.identities.updateErr = errUnavailable

	_, err := review(h, reviewer, "req-1", "approve")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))
	assert.Equal(t, entity.AdminRequestPending, h.requests.get("req-1").Status)
	assert.Nil(t, h.roles.get("user-9"))
	assert.Empty(t, h.email.messages())
}

func TestReviewRequest_GrantFailureAfterTransition(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")
	h.roles.upsertErr = errUnavailable

	_, err := review(h, reviewer, "req-1", "approve")
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))
	assert.Empty(t, h.email.messages())
	assert.Empty(t, h.audit.actions())
}

func TestReviewRequest_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	h := newHarness()
	reviewer := h.seedAdmin("admin-1")
	h.seedPendingRequest("req-1", "user-9")

	actions := []string{"approve", "reject", "approve", "reject"}
	errs := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(i int, action string) {
			defer wg.Done()
			_, errs[i] = review(h, reviewer, "req-1", action)
		}(i, action)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, domainerr.IsKind(err, domainerr.KindConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	final := h.requests.get("req-1")
	if final.Status == entity.AdminRequestApproved {
		assert.NotNil(t, h.roles.get("user-9"))
		assert.Len(t, h.email.messages(), 1)
	} else {
		assert.Equal(t, entity.AdminRequestRejected, final.Status)
		assert.Nil(t, h.roles.get("user-9"))
		assert.Empty(t, h.email.messages())
	}
}
