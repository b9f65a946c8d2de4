package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/middleware"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	UpsertDailyOverride(w http.ResponseWriter, r *http.Request)
	ResetDailyOverride(w http.ResponseWriter, r *http.Request)

	ListRuns(w http.ResponseWriter, r *http.Request)
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	CalculateRun(w http.ResponseWriter, r *http.Request)
	LockRun(w http.ResponseWriter, r *http.Request)
	ExportRun(w http.ResponseWriter, r *http.Request)

	GetTaxConfig(w http.ResponseWriter, r *http.Request)
	UpdateTaxConfig(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &PayrollHandlerImpl{payrollService: payrollService}
}

// ==================== PREVIEW ====================

// Preview implements PayrollHandler.
func (h *PayrollHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req := payroll.PreviewRequest{
		Start:  r.URL.Query().Get("start"),
		End:    r.URL.Query().Get("end"),
		ZoneID: getOptionalQueryParam(r, "zoneId"),
	}

	preview, err := h.payrollService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, preview)
}

// UpsertDailyOverride implements PayrollHandler.
func (h *PayrollHandlerImpl) UpsertDailyOverride(w http.ResponseWriter, r *http.Request) {
	var req payroll.DailyOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpsertDailyOverride decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Author == "" {
		req.Author = middleware.Actor(r)
	}

	override, err := h.payrollService.UpsertDailyOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily breakdown updated", override)
}

// ResetDailyOverride implements PayrollHandler.
func (h *PayrollHandlerImpl) ResetDailyOverride(w http.ResponseWriter, r *http.Request) {
	req := payroll.ResetOverrideRequest{
		StaffID: r.URL.Query().Get("staffId"),
		Date:    r.URL.Query().Get("date"),
		Author:  middleware.Actor(r),
	}

	if err := h.payrollService.ResetDailyOverride(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily breakdown reset", nil)
}

// ==================== RUNS ====================

// ListRuns implements PayrollHandler.
func (h *PayrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.payrollService.ListRuns(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, runs)
}

// CreateRun implements PayrollHandler.
func (h *PayrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRun decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	run, err := h.payrollService.CreateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", run)
}

// GetRun implements PayrollHandler.
func (h *PayrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, run)
}

// CalculateRun implements PayrollHandler.
func (h *PayrollHandlerImpl) CalculateRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.CalculateRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run calculated", run)
}

// LockRun implements PayrollHandler. The body is optional.
func (h *PayrollHandlerImpl) LockRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.LockRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("LockRun decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RunID = chi.URLParam(r, "id")
	req.Actor = middleware.Actor(r)

	run, err := h.payrollService.LockRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run finalized", run)
}

// ExportRun implements PayrollHandler.
func (h *PayrollHandlerImpl) ExportRun(w http.ResponseWriter, r *http.Request) {
	file, err := h.payrollService.ExportRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.ContentType, file.Name, file.Content)
}

// ==================== TAX CONFIG ====================

// GetTaxConfig implements PayrollHandler.
func (h *PayrollHandlerImpl) GetTaxConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.payrollService.GetTaxConfig(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, cfg)
}

// UpdateTaxConfig implements PayrollHandler.
func (h *PayrollHandlerImpl) UpdateTaxConfig(w http.ResponseWriter, r *http.Request) {
	var req payroll.TaxConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateTaxConfig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	cfg, err := h.payrollService.UpdateTaxConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tax configuration updated", cfg)
}
