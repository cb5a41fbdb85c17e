package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/infrastructure/http/middleware"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/http/validator"
)

type AdminHandler struct {
	adminUseCase inbound.AdminUseCase
}

func NewAdminHandler(adminUseCase inbound.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

// Bootstrap creates the first admin. Unauthenticated; refuses once any admin exists.
func (h *AdminHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req inbound.BootstrapAdminRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.adminUseCase.BootstrapFirstAdmin(r.Context(), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "First admin created", res)
}

func (h *AdminHandler) BootstrapStatus(w http.ResponseWriter, r *http.Request) {
	res, err := h.adminUseCase.BootstrapStatus(r.Context())
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}

func (h *AdminHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req inbound.SubmitAdminRequestRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.adminUseCase.SubmitRequest(r.Context(), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Admin access request submitted", res)
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := validator.QueryInt(q, "page")
	if err != nil {
		response.AppError(w, err)
		return
	}
	limit, err := validator.QueryInt(q, "limit")
	if err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.adminUseCase.ListRequests(r.Context(), middleware.IdentityFromContext(r.Context()), inbound.ListAdminRequestsRequest{
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}

// ReviewRequest approves or rejects a pending request. Email problems after an approval
// come back as warnings with a 200, since the grant has already committed.
func (h *AdminHandler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	var req inbound.ReviewAdminRequestRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}
	req.RequestID = mux.Vars(r)["id"]

	res, err := h.adminUseCase.ReviewRequest(r.Context(), middleware.IdentityFromContext(r.Context()), req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	message := "Request " + res.Request.Status
	if len(res.Warnings) > 0 {
		message += " with warnings"
	}
	response.Success(w, http.StatusOK, message, res)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateAdminRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.adminUseCase.CreateAdmin(r.Context(), middleware.IdentityFromContext(r.Context()), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Admin user created", res)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if err := h.adminUseCase.DeleteIdentity(r.Context(), middleware.IdentityFromContext(r.Context()), userID); err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "User deleted", map[string]string{"user_id": userID})
}

// RequestRecoveryLink mails a fresh set-password link to an admin. The reply does
// not reveal whether the address exists.
func (h *AdminHandler) RequestRecoveryLink(w http.ResponseWriter, r *http.Request) {
	var req inbound.RecoveryLinkRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.adminUseCase.RequestRecoveryLink(r.Context(), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusAccepted, res.Message, nil)
}
