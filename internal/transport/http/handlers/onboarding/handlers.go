package onboardinghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/onboarding"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
	"hrleave/internal/transport/http/shared"
)

type Handler struct {
	Service   *onboarding.Service
	Directory core.DirectoryAPI
	Seeder    onboarding.BalanceSeeder
}

func NewHandler(service *onboarding.Service, directory core.DirectoryAPI, seeder onboarding.BalanceSeeder) *Handler {
	return &Handler{Service: service, Directory: directory, Seeder: seeder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGetState)
		r.Post("/{employeeID}/sales", h.handleRecordSales)
		r.With(middleware.RequireUser).Post("/{employeeID}/complete-probation", h.handleCompleteProbation)
	})
}

type createPayload struct {
	EmployeeID        string  `json:"employeeId"`
	TrainingEndDate   string  `json:"trainingEndDate"`
	FirstMonthEndDate string  `json:"firstMonthEndDate"`
	ProbationEndDate  string  `json:"probationEndDate"`
	BondMonths        int     `json:"bondMonths"`
	BondAmount        float64 `json:"bondAmount"`
}

// handleCreate registers onboarding state at hire and seeds the first year's
// leave balances for the employee's current status.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	emp, err := h.Directory.GetEmployee(r.Context(), payload.EmployeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
		return
	}

	state := onboarding.State{EmployeeID: payload.EmployeeID, BondMonths: payload.BondMonths, BondAmount: payload.BondAmount}
	dates := []struct {
		raw  string
		dest *time.Time
		name string
	}{
		{payload.TrainingEndDate, &state.TrainingEndDate, "trainingEndDate"},
		{payload.FirstMonthEndDate, &state.FirstMonthEndDate, "firstMonthEndDate"},
		{payload.ProbationEndDate, &state.ProbationEndDate, "probationEndDate"},
	}
	for _, d := range dates {
		parsed, err := shared.ParseDate(d.raw)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", d.name+" must be a valid date", reqID)
			return
		}
		*d.dest = parsed
	}

	if err := h.Service.Store.CreateState(r.Context(), state); err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to create onboarding state", reqID)
		return
	}
	if err := h.Seeder.SeedBalances(r.Context(), payload.EmployeeID, emp.EmploymentStatus, state.FirstMonthEndDate.Year()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to seed balances", reqID)
		return
	}
	api.Created(w, state, reqID)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	state, err := h.Service.State(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, onboarding.ErrStateNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "onboarding state not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
		return
	}

	api.Success(w, map[string]any{
		"state":      state,
		"milestones": state.MilestonesAt(time.Now()),
	}, reqID)
}

func (h *Handler) handleRecordSales(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Amount <= 0 {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be positive", reqID)
		return
	}

	err := h.Service.Store.RecordFirstMonthSales(r.Context(), chi.URLParam(r, "employeeID"), payload.Amount)
	if errors.Is(err, onboarding.ErrStateNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "onboarding state not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"recorded": true}, reqID)
}

func (h *Handler) handleCompleteProbation(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	state, err := h.Service.CompleteProbation(r.Context(), chi.URLParam(r, "employeeID"))
	switch {
	case errors.Is(err, onboarding.ErrProbationAlreadyComplete):
		api.Fail(w, http.StatusConflict, "ALREADY_TERMINAL", "probation already completed", reqID)
		return
	case errors.Is(err, onboarding.ErrStateNotFound):
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "onboarding state not found", reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
		return
	}
	api.Success(w, state, reqID)
}
