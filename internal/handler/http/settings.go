package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	VerifyPin(w http.ResponseWriter, r *http.Request)
}

type SettingsHandlerImpl struct {
	settingsService settings.SettingsService
}

func NewSettingsHandler(settingsService settings.SettingsService) SettingsHandler {
	return &SettingsHandlerImpl{settingsService: settingsService}
}

// Get implements SettingsHandler. refresh=true bypasses the cache.
func (h *SettingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.settingsService.GetSettings(r.Context(), getBoolQueryParam(r, "refresh", false))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Save implements SettingsHandler.
func (h *SettingsHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	var req settings.SaveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.settingsService.SaveSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings saved", resp)
}

// VerifyPin implements SettingsHandler.
func (h *SettingsHandlerImpl) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var req settings.VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.settingsService.VerifyPin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
