package admin

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
)

type stubRecaptcha struct {
	enabled bool
	valid   bool
}

func (s stubRecaptcha) VerifyToken(ctx context.Context, token string) (bool, error) {
	return s.valid && token != "", nil
}

func (s stubRecaptcha) IsEnabled() bool { return s.enabled }

func TestSubmitRequest_CreatesPendingRequestWithoutRole(t *testing.T) {
	h := newHarness()

	resp, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "New Staff",
		Email:    "New.Staff@Institute.edu",
		Reason:   "I handle hostel complaints",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)

	request := h.requests.get(resp.RequestID)
	require.NotNil(t, request)
	assert.Equal(t, entity.AdminRequestPending, request.Status)
	assert.Equal(t, "I handle hostel complaints", request.Reason)
	assert.Nil(t, request.ReviewedBy)

	identity := h.identities.identity(request.UserID)
	require.NotNil(t, identity)
	assert.Equal(t, "new.staff@institute.edu", identity.Email)
	assert.False(t, identity.EmailConfirmed)
	assert.GreaterOrEqual(t, len(h.identities.password(identity.ID)), 32)

	assert.Equal(t, 0, h.roles.size())
	assert.True(t, h.metrics.has("submit:created"))
}

func TestSubmitRequest_PasswordsAreNotReused(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.uc.SubmitRequest(ctx, inbound.SubmitAdminRequestRequest{FullName: "One Person", Email: "one@institute.edu"})
	require.NoError(t, err)
	second, err := h.uc.SubmitRequest(ctx, inbound.SubmitAdminRequestRequest{FullName: "Two Person", Email: "two@institute.edu"})
	require.NoError(t, err)

	p1 := h.identities.password(h.requests.get(first.RequestID).UserID)
	p2 := h.identities.password(h.requests.get(second.RequestID).UserID)
	assert.NotEqual(t, p1, p2)
}

func TestSubmitRequest_EmailAlreadyRegistered(t *testing.T) {
	h := newHarness()
	h.identities.seed("u1", "taken@institute.edu", "Taken", true)

	_, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "taken@institute.edu",
	})
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindConflict))
	assert.Empty(t, h.requests.all())
}

func TestSubmitRequest_Validation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.uc.SubmitRequest(ctx, inbound.SubmitAdminRequestRequest{FullName: "Someone", Email: "bad"})
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))

	_, err = h.uc.SubmitRequest(ctx, inbound.SubmitAdminRequestRequest{Email: "a@b.io"})
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))

	_, err = h.uc.SubmitRequest(ctx, inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "a@b.io",
		Reason:   strings.Repeat("r", maxReasonLength+1),
	})
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))
	assert.Equal(t, 0, h.identities.createCalls)
}

func TestSubmitRequest_Recaptcha(t *testing.T) {
	h := newHarness()
	h.uc.submitRequestUseCase.recaptcha = stubRecaptcha{enabled: true, valid: true}

	_, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "a@b.io",
	})
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindValidation))
	assert.Equal(t, 0, h.identities.createCalls)

	_, err = h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName:       "Someone",
		Email:          "a@b.io",
		RecaptchaToken: "ok",
	})
	require.NoError(t, err)
}

func TestSubmitRequest_StoreFailure(t *testing.T) {
	h := newHarness()
	h.requests.createErr = errUnavailable

	_, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "a@b.io",
	})
	require.Error(t, err)
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))
	assert.Equal(t, "Internal server error", domainerr.PublicMessage(err))

	_, err = h.identities.FindIdentityByEmail(context.Background(), "a@b.io")
	assert.ErrorIs(t, err, outbound.ErrIdentityNotFound)

	h.requests.createErr = nil
	resp, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "a@b.io",
	})
	require.NoError(t, err)
	request := h.requests.get(resp.RequestID)
	require.NotNil(t, request)
	assert.Equal(t, "a@b.io", h.identities.identity(request.UserID).Email)
}

func TestSubmitRequest_StrandedIdentityWhenCleanupFails(t *testing.T) {
	h := newHarness()
	h.requests.createErr = errUnavailable
	h.identities.deleteErr = errUnavailable

	_, err := h.uc.SubmitRequest(context.Background(), inbound.SubmitAdminRequestRequest{
		FullName: "Someone",
		Email:    "a@b.io",
	})
	assert.True(t, domainerr.IsKind(err, domainerr.KindUpstream))
}
