package holiday

import "github.com/staffpay/staffpay-backend-go/internal/pkg/validator"

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "invalid date format, use YYYY-MM-DD")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	return errs.Err()
}

type IgnoreHolidayRequest struct {
	Ignored *bool `json:"ignored,omitempty"`
}

type HolidayResponse struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	IsCustom  bool   `json:"isCustom"`
	IsIgnored bool   `json:"isIgnored"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		Date:      h.Date.Format(validator.DateLayout),
		Name:      h.Name,
		IsCustom:  h.IsCustom,
		IsIgnored: h.IsIgnored,
	}
}

type SyncResponse struct {
	Year    int `json:"year"`
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
}
