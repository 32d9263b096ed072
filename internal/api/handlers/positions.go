package handlers

import (
	"errors"
	"net/http"

	"github.com/quantora/fund-management-backend/internal/api/request"
	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/service"
	"github.com/quantora/fund-management-backend/internal/validation"
)

// PositionHandler handles HTTP requests for position and asset trade endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the positionService.
type PositionHandler struct {
	positionService *service.PositionService
}

// NewPositionHandler creates a new PositionHandler with the provided service dependency.
func NewPositionHandler(positionService *service.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// Positions handles GET requests to retrieve all positions held by the fund.
//
// Endpoint: GET /api/position
// Response: 200 OK with array of Position
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionService.GetAllPositions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Trades handles GET requests to retrieve the asset trade journal.
//
// Endpoint: GET /api/position/trade
// Response: 200 OK with array of AssetTrade
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) Trades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.positionService.GetTrades(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// CreateTrade handles POST requests to record an executed asset trade.
// The trade's cash flow is applied to the fund's cash line in the same
// transaction.
//
// Endpoint: POST /api/position/trade
// Request Body: CreateAssetTradeRequest (ticker, side, quantity, price, date)
// Response: 201 Created with AssetTrade
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if a sell exceeds the held quantity
// Error: 500 Internal Server Error if creation fails
func (h *PositionHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAssetTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAssetTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.positionService.RecordTrade(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientHoldings) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientHoldings.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to record trade", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// Settle handles POST requests to fold unsettled trades into positions.
// Settlement updates quantity and weighted-average cost for every ticker
// with trades since the last run.
//
// Endpoint: POST /api/position/settle
// Response: 200 OK with array of updated Position
// Error: 409 Conflict if settlement would drive a position negative
// Error: 500 Internal Server Error if settlement fails
func (h *PositionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	updated, err := h.positionService.Settle(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNegativeQuantity) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrNegativeQuantity.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to settle positions", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, updated)
}
