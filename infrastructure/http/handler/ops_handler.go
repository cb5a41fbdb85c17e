package handler

import (
	"net/http"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
)

// OpsHandler serves operator endpoints reachable only with the service key.
type OpsHandler struct {
	adminUseCase inbound.AdminUseCase
}

func NewOpsHandler(adminUseCase inbound.AdminUseCase) *OpsHandler {
	return &OpsHandler{adminUseCase: adminUseCase}
}

func (h *OpsHandler) CleanupOrphanedAdmins(w http.ResponseWriter, r *http.Request) {
	res, err := h.adminUseCase.CleanupOrphanedAdminRoles(r.Context())
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, res.Message, res)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, http.StatusOK, "healthy", map[string]string{"status": "healthy"})
}
