package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/middleware"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type LeaveHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	BulkRoster(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// Record implements LeaveHandler.
func (l *LeaveHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := l.leaveService.RecordLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave recorded", resp)
}

// BulkRoster implements LeaveHandler.
func (l *LeaveHandlerImpl) BulkRoster(w http.ResponseWriter, r *http.Request) {
	var req leave.BulkRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("BulkRoster decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := l.leaveService.BulkRoster(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave rostered", resp)
}

// List implements LeaveHandler.
func (l *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := leave.LeaveFilter{
		StaffID: getOptionalQueryParam(r, "staffId"),
		Status:  getOptionalQueryParam(r, "status"),
		From:    getDateQueryParam(r, "from", &errs),
		To:      getDateQueryParam(r, "to", &errs),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := l.leaveService.ListLeave(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// Approve implements LeaveHandler.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	record, err := l.leaveService.Approve(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave approved", record)
}

// Reject implements LeaveHandler. The body is optional.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req leave.RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("RejectLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	record, err := l.leaveService.Reject(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave rejected", record)
}
