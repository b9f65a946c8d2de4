package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
)

type StaffHandler interface {
	CreateStaff(w http.ResponseWriter, r *http.Request)
	GetStaff(w http.ResponseWriter, r *http.Request)
	ListStaff(w http.ResponseWriter, r *http.Request)
	UpdateStaff(w http.ResponseWriter, r *http.Request)
	DeleteStaff(w http.ResponseWriter, r *http.Request)

	CreateZone(w http.ResponseWriter, r *http.Request)
	GetZone(w http.ResponseWriter, r *http.Request)
	ListZones(w http.ResponseWriter, r *http.Request)
	UpdateZone(w http.ResponseWriter, r *http.Request)
	DeleteZone(w http.ResponseWriter, r *http.Request)

	CreatePayGroup(w http.ResponseWriter, r *http.Request)
	GetPayGroup(w http.ResponseWriter, r *http.Request)
	ListPayGroups(w http.ResponseWriter, r *http.Request)
	UpdatePayGroup(w http.ResponseWriter, r *http.Request)
	DeletePayGroup(w http.ResponseWriter, r *http.Request)
}

type staffHandlerImpl struct {
	staffService staff.StaffService
}

func NewStaffHandler(staffService staff.StaffService) StaffHandler {
	return &staffHandlerImpl{staffService: staffService}
}

// ==================== STAFF ====================

func (h *staffHandlerImpl) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req staff.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateStaff decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.CreateStaff(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Staff member created", resp)
}

func (h *staffHandlerImpl) GetStaff(w http.ResponseWriter, r *http.Request) {
	resp, err := h.staffService.GetStaff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *staffHandlerImpl) ListStaff(w http.ResponseWriter, r *http.Request) {
	filter := staff.StaffFilter{
		ZoneID:     getOptionalQueryParam(r, "zoneId"),
		ActiveOnly: getBoolQueryParam(r, "activeOnly", false),
	}

	list, err := h.staffService.ListStaff(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *staffHandlerImpl) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var req staff.UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateStaff decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.staffService.UpdateStaff(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Staff member updated", resp)
}

func (h *staffHandlerImpl) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.staffService.DeleteStaff(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Staff member deleted", nil)
}

// ==================== ZONES ====================

func (h *staffHandlerImpl) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req staff.ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.CreateZone(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Zone created", resp)
}

func (h *staffHandlerImpl) GetZone(w http.ResponseWriter, r *http.Request) {
	resp, err := h.staffService.GetZone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *staffHandlerImpl) ListZones(w http.ResponseWriter, r *http.Request) {
	list, err := h.staffService.ListZones(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *staffHandlerImpl) UpdateZone(w http.ResponseWriter, r *http.Request) {
	var req staff.ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.UpdateZone(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Zone updated", resp)
}

func (h *staffHandlerImpl) DeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.staffService.DeleteZone(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Zone deleted", nil)
}

// ==================== PAY GROUPS ====================

func (h *staffHandlerImpl) CreatePayGroup(w http.ResponseWriter, r *http.Request) {
	var req staff.PayGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePayGroup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.CreatePayGroup(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Pay group created", resp)
}

func (h *staffHandlerImpl) GetPayGroup(w http.ResponseWriter, r *http.Request) {
	resp, err := h.staffService.GetPayGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *staffHandlerImpl) ListPayGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.staffService.ListPayGroups(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *staffHandlerImpl) UpdatePayGroup(w http.ResponseWriter, r *http.Request) {
	var req staff.PayGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePayGroup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.UpdatePayGroup(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay group updated", resp)
}

func (h *staffHandlerImpl) DeletePayGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.staffService.DeletePayGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay group deleted", nil)
}
