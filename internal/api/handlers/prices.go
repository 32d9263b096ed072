package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/service"
)

// PriceHandler handles HTTP requests for market price endpoints.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// Refresh handles POST requests to refresh the market prices of all stock
// positions. Each success commits independently; failures are reported in
// the result without aborting the batch.
//
// Endpoint: POST /api/price/refresh
// Response: 200 OK with PriceUpdateResult
// Error: 500 Internal Server Error if the ticker list cannot be loaded
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.priceService.RefreshAll(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh prices", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// History handles GET requests to retrieve a ticker's stored price history.
//
// Endpoint: GET /api/price/{ticker}
// Response: 200 OK with array of PriceQuote
// Error: 400 Bad Request if the ticker is empty
// Error: 500 Internal Server Error if retrieval fails
func (h *PriceHandler) History(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))
	if ticker == "" {
		response.RespondError(w, http.StatusBadRequest, "ticker is required", "")
		return
	}

	quotes, err := h.priceService.GetHistory(r.Context(), ticker)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve price history", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quotes)
}
