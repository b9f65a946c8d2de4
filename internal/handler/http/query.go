package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// getOptionalQueryParam returns nil for an absent or blank parameter.
func getOptionalQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if validator.IsEmpty(val) {
		return nil
	}
	return &val
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// getDateQueryParam parses an optional YYYY-MM-DD parameter. A malformed value
// is added to errs.
func getDateQueryParam(r *http.Request, key string, errs *validator.ValidationErrors) *time.Time {
	val := getOptionalQueryParam(r, key)
	if val == nil {
		return nil
	}
	d, ok := validator.IsValidDate(*val)
	if !ok {
		errs.Add(key, "invalid date format, use YYYY-MM-DD")
		return nil
	}
	return &d
}
