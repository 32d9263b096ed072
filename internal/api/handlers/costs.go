package handlers

import (
	"net/http"

	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/service"
)

// CostHandler handles HTTP requests for cost entry endpoints.
type CostHandler struct {
	costService *service.CostService
}

// NewCostHandler creates a new CostHandler with the provided service dependency.
func NewCostHandler(costService *service.CostService) *CostHandler {
	return &CostHandler{
		costService: costService,
	}
}

// Costs handles GET requests to retrieve the cost history, newest first.
//
// Endpoint: GET /api/cost
// Response: 200 OK with array of CostEntry
// Error: 500 Internal Server Error if retrieval fails
func (h *CostHandler) Costs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.costService.GetEntries(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveCosts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}
