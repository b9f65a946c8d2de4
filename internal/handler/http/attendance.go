package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	RecordScan(w http.ResponseWriter, r *http.Request)
	ListScans(w http.ResponseWriter, r *http.Request)
	ListInterventions(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// RecordScan implements AttendanceHandler.
func (h *AttendanceHandlerImpl) RecordScan(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordScan decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	scan, err := h.attendanceService.RecordScan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Scan recorded", scan)
}

// ListScans implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListScans(w http.ResponseWriter, r *http.Request) {
	filter := attendance.ScanFilter{
		StaffID: getOptionalQueryParam(r, "staffId"),
		Start:   r.URL.Query().Get("start"),
		End:     r.URL.Query().Get("end"),
	}

	scans, err := h.attendanceService.ListScans(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, scans)
}

// ListInterventions implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListInterventions(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := attendance.InterventionFilter{
		StaffID: getOptionalQueryParam(r, "staffId"),
		From:    getDateQueryParam(r, "from", &errs),
		To:      getDateQueryParam(r, "to", &errs),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	list, err := h.attendanceService.ListInterventions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}
