package handler

import (
	"net/http"

	"github.com/fixora/complaintdesk/application/port/inbound"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/http/middleware"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/http/validator"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
}

func NewAuthHandler(authUseCase inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}

// Recover sets a new password from a recovery link token.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req inbound.RecoverPasswordRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	if err := h.authUseCase.RecoverPassword(r.Context(), req); err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Password updated", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		response.AppError(w, domainerr.ErrMissingCredential())
		return
	}

	res, err := h.authUseCase.Me(r.Context(), identity.ID)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}
