package handlers

import (
	"net/http"

	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/service"
)

// SnapshotHandler handles HTTP requests for the holdings rollup endpoints.
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler with the provided service dependency.
func NewSnapshotHandler(snapshotService *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
	}
}

// Snapshots handles GET requests to retrieve the stored rollup, Total row first.
//
// Endpoint: GET /api/snapshot
// Response: 200 OK with array of Snapshot
// Error: 500 Internal Server Error if retrieval fails
func (h *SnapshotHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.snapshotService.GetSnapshots(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// Rebuild handles POST requests to recompute the rollup from current positions.
//
// Endpoint: POST /api/snapshot/rebuild
// Response: 200 OK with array of Snapshot
// Error: 500 Internal Server Error if the rebuild fails
func (h *SnapshotHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.snapshotService.Rebuild(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to rebuild snapshots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}
