package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
)

type RosterHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	BatchAssign(w http.ResponseWriter, r *http.Request)
	Publish(w http.ResponseWriter, r *http.Request)

	ListTemplates(w http.ResponseWriter, r *http.Request)
	CreateTemplate(w http.ResponseWriter, r *http.Request)
	DeleteTemplate(w http.ResponseWriter, r *http.Request)
	LoadTemplate(w http.ResponseWriter, r *http.Request)
}

type RosterHandlerImpl struct {
	rosterService roster.RosterService
}

func NewRosterHandler(rosterService roster.RosterService) RosterHandler {
	return &RosterHandlerImpl{rosterService: rosterService}
}

// Create implements RosterHandler.
func (h *RosterHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req roster.CreateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRoster decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.rosterService.CreateRoster(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Roster ready", resp)
}

// Get implements RosterHandler. weekStart may be any date within the week.
func (h *RosterHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.rosterService.GetRoster(r.Context(), q.Get("zoneId"), q.Get("weekStart"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetByID implements RosterHandler.
func (h *RosterHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	resp, err := h.rosterService.GetRosterByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// BatchAssign implements RosterHandler.
func (h *RosterHandlerImpl) BatchAssign(w http.ResponseWriter, r *http.Request) {
	var req roster.BatchAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("BatchAssign decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RosterID = chi.URLParam(r, "id")

	resp, err := h.rosterService.BatchAssign(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Roster saved", resp)
}

// Publish implements RosterHandler.
func (h *RosterHandlerImpl) Publish(w http.ResponseWriter, r *http.Request) {
	resp, err := h.rosterService.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Roster published", resp)
}

// ==================== TEMPLATES ====================

// ListTemplates implements RosterHandler.
func (h *RosterHandlerImpl) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.rosterService.ListTemplates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, templates)
}

// CreateTemplate implements RosterHandler.
func (h *RosterHandlerImpl) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req roster.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateTemplate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.rosterService.CreateTemplate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Template saved", resp)
}

// DeleteTemplate implements RosterHandler.
func (h *RosterHandlerImpl) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.rosterService.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Template deleted", nil)
}

// LoadTemplate implements RosterHandler.
func (h *RosterHandlerImpl) LoadTemplate(w http.ResponseWriter, r *http.Request) {
	var req roster.LoadTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("LoadTemplate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	selections, err := h.rosterService.LoadTemplate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, selections)
}
