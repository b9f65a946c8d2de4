package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Ignore(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
}

type HolidayHandlerImpl struct {
	holidayService holiday.HolidayService
}

func NewHolidayHandler(holidayService holiday.HolidayService) HolidayHandler {
	return &HolidayHandlerImpl{holidayService: holidayService}
}

// List implements HolidayHandler. year defaults to the current year.
func (h *HolidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year := getIntQueryParam(r, "year", time.Now().Year())

	list, err := h.holidayService.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

// Create implements HolidayHandler.
func (h *HolidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.holidayService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday saved", resp)
}

// Ignore implements HolidayHandler. An empty body ignores the holiday;
// {"ignored": false} restores it.
func (h *HolidayHandlerImpl) Ignore(w http.ResponseWriter, r *http.Request) {
	var req holiday.IgnoreHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	ignored := true
	if req.Ignored != nil {
		ignored = *req.Ignored
	}

	resp, err := h.holidayService.SetIgnored(r.Context(), chi.URLParam(r, "date"), ignored)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Sync implements HolidayHandler.
func (h *HolidayHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	year := getIntQueryParam(r, "year", time.Now().Year())

	resp, err := h.holidayService.SyncYear(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holidays synced", resp)
}
