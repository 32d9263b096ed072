package handlers

import (
	"errors"
	"net/http"

	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/service"
)

// ValuationHandler handles HTTP requests for the NAV pipeline and valuation
// history endpoints.
type ValuationHandler struct {
	navService *service.NavService
}

// NewValuationHandler creates a new ValuationHandler with the provided service dependency.
func NewValuationHandler(navService *service.NavService) *ValuationHandler {
	return &ValuationHandler{
		navService: navService,
	}
}

// RunPipeline handles POST requests to run the daily valuation pipeline.
// The run is atomic: on failure no valuation record is left behind and the
// response names the failing step plus the steps that had completed.
//
// Endpoint: POST /api/valuation/run
// Response: 200 OK with PipelineResult
// Error: 409 Conflict if a valuation already exists for the date
// Error: 422 Unprocessable Entity if no fund units are outstanding
// Error: 500 Internal Server Error if a pipeline step fails
func (h *ValuationHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	result, err := h.navService.Run(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrValuationExists) {
			status = http.StatusConflict
		} else if errors.Is(err, apperrors.ErrNoUnitsOutstanding) {
			status = http.StatusUnprocessableEntity
		}

		var pipelineErr *service.PipelineError
		if errors.As(err, &pipelineErr) {
			response.RespondError(w, status, err.Error(), map[string]interface{}{
				"failedStep":     pipelineErr.Step,
				"completedSteps": pipelineErr.Completed,
			})
			return
		}

		response.RespondError(w, status, "valuation pipeline failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Latest handles GET requests to retrieve the most recent valuation.
//
// Endpoint: GET /api/valuation/latest
// Response: 200 OK with Valuation
// Error: 404 Not Found if no valuation exists yet
// Error: 500 Internal Server Error if retrieval fails
func (h *ValuationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.navService.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoValuation) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrNoValuation.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveValuations.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, valuation)
}

// History handles GET requests to retrieve all valuation records, oldest first.
//
// Endpoint: GET /api/valuation
// Response: 200 OK with array of Valuation
// Error: 500 Internal Server Error if retrieval fails
func (h *ValuationHandler) History(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.navService.GetHistory(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveValuations.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, valuations)
}
