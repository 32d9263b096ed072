package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quantora/fund-management-backend/internal/api/request"
	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/service"
	"github.com/quantora/fund-management-backend/internal/validation"
)

// FundShareHandler handles HTTP requests for the fund-share ledger:
// subscriptions, redemptions, the trade journal, and the approval queue.
type FundShareHandler struct {
	fundShareService *service.FundShareService
}

// NewFundShareHandler creates a new FundShareHandler with the provided service dependency.
func NewFundShareHandler(fundShareService *service.FundShareService) *FundShareHandler {
	return &FundShareHandler{
		fundShareService: fundShareService,
	}
}

// ledgerErrorStatus maps fund-share ledger errors to HTTP status codes.
func ledgerErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvestorNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNoValuation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrInvalidUnits):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientUnits), errors.Is(err, apperrors.ErrInsufficientFundCash):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Subscribe handles POST requests to buy fund shares directly.
//
// Endpoint: POST /api/fundshare/subscribe
// Request Body: SubscribeRequest (investorId, amount)
// Response: 201 Created with FundShareTrade
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the investor does not exist
// Error: 422 Unprocessable Entity if no completed valuation exists
// Error: 500 Internal Server Error if the subscription fails
func (h *FundShareHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SubscribeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSubscribe(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.fundShareService.Subscribe(r.Context(), req.InvestorID, req.Amount)
	if err != nil {
		response.RespondError(w, ledgerErrorStatus(err), "subscription failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// Redeem handles POST requests to sell fund shares directly.
//
// Endpoint: POST /api/fundshare/redeem
// Request Body: RedeemRequest (investorId, units)
// Response: 201 Created with FundShareTrade
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the investor does not exist
// Error: 409 Conflict if units or fund cash are insufficient
// Error: 422 Unprocessable Entity if no completed valuation exists
// Error: 500 Internal Server Error if the redemption fails
func (h *FundShareHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RedeemRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRedeem(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.fundShareService.Redeem(r.Context(), req.InvestorID, req.Units)
	if err != nil {
		response.RespondError(w, ledgerErrorStatus(err), "redemption failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// Trades handles GET requests to retrieve the fund-share trade journal,
// optionally filtered to one investor via the investorId query parameter.
//
// Endpoint: GET /api/fundshare/trade?investorId={uuid}
// Response: 200 OK with array of FundShareTrade
// Error: 500 Internal Server Error if retrieval fails
func (h *FundShareHandler) Trades(w http.ResponseWriter, r *http.Request) {
	investorID := r.URL.Query().Get("investorId")

	trades, err := h.fundShareService.GetTrades(r.Context(), investorID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// CreateRequest handles POST requests to file a subscribe/redeem request for
// admin approval. The request is quoted at the current per-unit price and
// parked as PENDING; no balances move until it is approved.
//
// Endpoint: POST /api/fundshare/request
// Request Body: CreateFundShareRequest (investorId, side, amount|units)
// Response: 201 Created with FundShareRequest
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the investor does not exist
// Error: 422 Unprocessable Entity if no completed valuation exists
// Error: 500 Internal Server Error if filing fails
func (h *FundShareHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateFundShareRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateFundShareRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	filed, err := h.fundShareService.FileRequest(r.Context(), req.InvestorID, req.Side, req.Amount, req.Units)
	if err != nil {
		response.RespondError(w, ledgerErrorStatus(err), "failed to file request", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, filed)
}

// PendingRequests handles GET requests to retrieve all requests awaiting a decision.
//
// Endpoint: GET /api/fundshare/request
// Response: 200 OK with array of FundShareRequest
// Error: 500 Internal Server Error if retrieval fails
func (h *FundShareHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.fundShareService.GetPendingRequests(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRequests.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, requests)
}

// ApproveRequest handles POST requests to approve a pending request,
// settling it through the ledger at the latest per-unit price.
//
// Endpoint: POST /api/fundshare/request/{uuid}/approve
// Response: 200 OK with the settled FundShareTrade
// Error: 400 Bad Request if the request ID is invalid (validated by middleware)
// Error: 404 Not Found if the request does not exist
// Error: 409 Conflict if the request was already processed or balances are insufficient
// Error: 500 Internal Server Error if settlement fails
func (h *FundShareHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "uuid")

	trade, err := h.fundShareService.ApproveRequest(r.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRequestNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRequestNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrRequestAlreadyProcessed):
			response.RespondError(w, http.StatusConflict, apperrors.ErrRequestAlreadyProcessed.Error(), err.Error())
		default:
			response.RespondError(w, ledgerErrorStatus(err), "failed to approve request", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// RejectRequest handles POST requests to reject a pending request without
// touching balances.
//
// Endpoint: POST /api/fundshare/request/{uuid}/reject
// Response: 204 No Content on success
// Error: 400 Bad Request if the request ID is invalid (validated by middleware)
// Error: 404 Not Found if the request does not exist
// Error: 409 Conflict if the request was already processed
// Error: 500 Internal Server Error if the update fails
func (h *FundShareHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "uuid")

	err := h.fundShareService.RejectRequest(r.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRequestNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRequestNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrRequestAlreadyProcessed):
			response.RespondError(w, http.StatusConflict, apperrors.ErrRequestAlreadyProcessed.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to reject request", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
