package payrollhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/notifications"
	"hrleave/internal/domain/payroll"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
	"hrleave/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Notify  *notifications.Service
}

func NewHandler(service *payroll.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: service, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/leave-impact", h.handleLeaveImpact)
		r.Post("/leave-impact/pdf", h.handleLeaveImpactPDF)
	})
}

func (h *Handler) handleLeaveImpact(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, start, end, ok := h.periodParams(w, r, reqID)
	if !ok {
		return
	}

	impact, err := h.Service.ComputeLeaveImpact(r.Context(), employeeID, start, end)
	if err != nil {
		h.writeError(w, err, reqID)
		return
	}
	api.Success(w, impact, reqID)
}

func (h *Handler) handleLeaveImpactPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, start, end, ok := h.periodParams(w, r, reqID)
	if !ok {
		return
	}

	path, err := h.Service.GeneratePayslipImpactPDF(r.Context(), employeeID, start, end)
	if err != nil {
		h.writeError(w, err, reqID)
		return
	}

	if h.Notify != nil {
		title := fmt.Sprintf("Payslip for %s published", start.Format("January 2006"))
		body := fmt.Sprintf("Your payslip covering %s to %s is available.",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
		if err := h.Notify.Create(r.Context(), employeeID, notifications.TypePayslipPublished, title, body); err != nil {
			slog.Warn("payslip notification failed", "employee", employeeID, "err", err)
		}
	}
	api.Created(w, map[string]string{"file": path}, reqID)
}

func (h *Handler) periodParams(w http.ResponseWriter, r *http.Request, reqID string) (string, time.Time, time.Time, bool) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "employeeId is required", reqID)
		return "", time.Time{}, time.Time{}, false
	}
	start, err := shared.ParseDate(r.URL.Query().Get("start"))
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "start must be a valid date", reqID)
		return "", time.Time{}, time.Time{}, false
	}
	end, err := shared.ParseDate(r.URL.Query().Get("end"))
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "end must be a valid date", reqID)
		return "", time.Time{}, time.Time{}, false
	}
	return employeeID, start, end, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), reqID)
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
	}
}
