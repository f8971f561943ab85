package jobshandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/platform/jobs"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
)

type Handler struct {
	Service *jobs.Service
}

func NewHandler(service *jobs.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequireUser).Post("/rollover", h.handleRollover)
	})
}

// handleRollover runs a year rollover for one employee synchronously, outside
// the periodic sweep. The run is still recorded in job_runs.
func (h *Handler) handleRollover(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		EmployeeID string `json:"employeeId"`
		FromYear   int    `json:"fromYear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is not valid JSON", reqID)
		return
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "employeeId is required", reqID)
		return
	}
	if payload.FromYear <= 0 {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "fromYear must be a year", reqID)
		return
	}

	details, err := h.Service.RunNow(r.Context(), jobs.JobYearRollover, func(ctx context.Context) (any, error) {
		if err := h.Service.Rollover.Rollover(ctx, payload.EmployeeID, payload.FromYear); err != nil {
			return nil, err
		}
		return map[string]any{"employeeId": payload.EmployeeID, "year": payload.FromYear + 1}, nil
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", err.Error(), reqID)
		return
	}
	api.Success(w, details, reqID)
}
