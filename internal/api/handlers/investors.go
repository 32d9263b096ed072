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

// InvestorHandler handles HTTP requests for investor endpoints.
type InvestorHandler struct {
	investorService *service.InvestorService
}

// NewInvestorHandler creates a new InvestorHandler with the provided service dependency.
func NewInvestorHandler(investorService *service.InvestorService) *InvestorHandler {
	return &InvestorHandler{
		investorService: investorService,
	}
}

// Investors handles GET requests to retrieve all investor accounts.
//
// Endpoint: GET /api/investor
// Response: 200 OK with array of Investor
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestorHandler) Investors(w http.ResponseWriter, r *http.Request) {
	investors, err := h.investorService.GetAllInvestors(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveInvestors.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, investors)
}

// GetInvestor handles GET requests to retrieve a single investor by ID.
//
// Endpoint: GET /api/investor/{uuid}
// Response: 200 OK with Investor
// Error: 400 Bad Request if the investor ID is invalid (validated by middleware)
// Error: 404 Not Found if the investor does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestorHandler) GetInvestor(w http.ResponseWriter, r *http.Request) {
	investorID := chi.URLParam(r, "uuid")

	investor, err := h.investorService.GetInvestor(r.Context(), investorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvestorNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrInvestorNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveInvestors.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, investor)
}

// CreateInvestor handles POST requests to open a new investor account.
//
// Endpoint: POST /api/investor
// Request Body: CreateInvestorRequest (name, email)
// Response: 201 Created with Investor
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *InvestorHandler) CreateInvestor(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateInvestorRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateInvestor(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	investor, err := h.investorService.CreateInvestor(r.Context(), req.Name, req.Email)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create investor", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, investor)
}

// GetSummary handles GET requests to value one investor's stake at the
// latest per-unit price.
//
// Endpoint: GET /api/investor/{uuid}/summary
// Response: 200 OK with InvestorSummary
// Error: 400 Bad Request if the investor ID is invalid (validated by middleware)
// Error: 404 Not Found if the investor does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestorHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	investorID := chi.URLParam(r, "uuid")

	summary, err := h.investorService.GetSummary(r.Context(), investorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvestorNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrInvestorNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveInvestors.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Summaries handles GET requests to value every investor's stake at the
// latest per-unit price.
//
// Endpoint: GET /api/investor/summary
// Response: 200 OK with array of InvestorSummary
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestorHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.investorService.GetAllSummaries(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveInvestors.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summaries)
}

// FundInfo handles GET requests to retrieve the admin-facing fund overview.
//
// Endpoint: GET /api/fund/info
// Response: 200 OK with FundInfo
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestorHandler) FundInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.investorService.GetFundInfo(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve fund info", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}
