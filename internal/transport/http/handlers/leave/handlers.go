package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/audit"
	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/notifications"
	"hrleave/internal/domain/policy"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
	"hrleave/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Notify  *notifications.Service
	Audit   *audit.Trail
}

func NewHandler(service *leave.Service, notify *notifications.Service, trail *audit.Trail) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: trail}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, "leave_request", entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, employeeID, ntype, title, body string) {
	if h.Notify == nil {
		return
	}
	if err := h.Notify.Create(r.Context(), employeeID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.Get("/balances", h.handleListBalances)
		r.Get("/requests", h.handleListRequests)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.Post("/requests", h.handleSubmit)
		r.With(middleware.RequireUser).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequireUser).Post("/requests/{requestID}/reject", h.handleReject)
		r.Post("/requests/{requestID}/cancel", h.handleCancel)
		r.Post("/comp-off", h.handleGrantCompOff)
		r.Post("/rollover", h.handleRollover)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Types(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "employeeId is required", reqID)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year == 0 {
		year = time.Now().Year()
	}

	balances, err := h.Service.Balances(r.Context(), employeeID, year)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	type balanceView struct {
		leave.LeaveBalance
		RemainingDays float64 `json:"remainingDays"`
	}
	views := make([]balanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, balanceView{LeaveBalance: b, RemainingDays: b.Remaining()})
	}
	api.Success(w, views, reqID)
}

type submitPayload struct {
	EmployeeID  string `json:"employeeId"`
	LeaveType   string `json:"leaveType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsHalfDay   bool   `json:"isHalfDay"`
	IsEmergency bool   `json:"isEmergency"`
	Reason      string `json:"reason"`
	EventDate   string `json:"eventDate"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "startDate must be a valid date", reqID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "endDate must be a valid date", reqID)
		return
	}

	req := leave.SubmitRequest{
		EmployeeID:  payload.EmployeeID,
		TypeCode:    policy.Code(payload.LeaveType),
		StartDate:   start,
		EndDate:     end,
		IsHalfDay:   payload.IsHalfDay,
		IsEmergency: payload.IsEmergency,
		Reason:      payload.Reason,
	}
	if payload.EventDate != "" {
		eventDate, err := shared.ParseDate(payload.EventDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "eventDate must be a valid date", reqID)
			return
		}
		req.EventDate = &eventDate
	}

	result, err := h.Service.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.recordAudit(r, payload.EmployeeID, "leave.request.submit", result.ApplicationID, map[string]any{
		"leaveType": payload.LeaveType,
		"startDate": payload.StartDate,
		"endDate":   payload.EndDate,
		"days":      result.Decision.RequestedDays,
	})
	h.notify(r, payload.EmployeeID, notifications.TypeLeaveSubmitted,
		"Leave request submitted", "Your leave request was recorded and is awaiting review.")

	api.Created(w, result, reqID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	app, err := h.Service.Application(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, app, reqID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "employeeId is required", reqID)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	apps, err := h.Service.Applications(r.Context(), employeeID, limit, offset)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, apps, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	app, err := h.Service.Approve(r.Context(), chi.URLParam(r, "requestID"), user.UserID)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.recordAudit(r, user.UserID, "leave.request.approve", app.ID, map[string]any{"employeeId": app.EmployeeID})
	h.notify(r, app.EmployeeID, notifications.TypeLeaveApproved,
		"Leave approved", fmt.Sprintf("Your %s request for %g days was approved.", app.TypeCode, app.TotalDays))

	api.Success(w, app, reqID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	app, err := h.Service.Reject(r.Context(), chi.URLParam(r, "requestID"), user.UserID, payload.Reason)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.recordAudit(r, user.UserID, "leave.request.reject", app.ID, map[string]any{
		"employeeId": app.EmployeeID,
		"reason":     payload.Reason,
	})
	h.notify(r, app.EmployeeID, notifications.TypeLeaveRejected,
		"Leave rejected", fmt.Sprintf("Your %s request was rejected: %s", app.TypeCode, app.RejectionReason))

	api.Success(w, app, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	app, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.recordAudit(r, app.EmployeeID, "leave.request.cancel", app.ID, map[string]any{"days": app.TotalDays})
	h.notify(r, app.EmployeeID, notifications.TypeLeaveCancelled,
		"Leave cancelled", fmt.Sprintf("Your %s request was cancelled and %g days were restored.", app.TypeCode, app.TotalDays))

	api.Success(w, app, reqID)
}

func (h *Handler) handleGrantCompOff(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload struct {
		EmployeeID string  `json:"employeeId"`
		Days       float64 `json:"days"`
		WorkedDate string  `json:"workedDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	workedDate, err := shared.ParseDate(payload.WorkedDate)
	if err != nil || workedDate.IsZero() {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "workedDate must be a valid date", reqID)
		return
	}

	if err := h.Service.GrantCompOff(r.Context(), payload.EmployeeID, payload.Days, workedDate); err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"granted": payload.Days}, reqID)
}

func (h *Handler) handleRollover(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload struct {
		EmployeeID string `json:"employeeId"`
		FromYear   int    `json:"fromYear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.EmployeeID == "" || payload.FromYear == 0 {
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "employeeId and fromYear are required", reqID)
		return
	}

	if err := h.Service.Rollover(r.Context(), payload.EmployeeID, payload.FromYear); err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"year": payload.FromYear + 1}, reqID)
}

func writeError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, leave.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", err.Error(), reqID)
	case errors.Is(err, leave.ErrAlreadyTerminal):
		api.Fail(w, http.StatusConflict, "ALREADY_TERMINAL", err.Error(), reqID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusConflict, "INSUFFICIENT_BALANCE", err.Error(), reqID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "INVALID_STATE", err.Error(), reqID)
	case errors.Is(err, leave.ErrConflict):
		api.Fail(w, http.StatusConflict, "CONFLICT", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", reqID)
	}
}
