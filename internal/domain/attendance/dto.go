package attendance

import (
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type RecordScanRequest struct {
	StaffID string `json:"staffId"`
	Kind    string `json:"kind"`
	At      string `json:"at,omitempty"` // RFC3339, defaults to now
	Source  string `json:"source,omitempty"`
}

func (r *RecordScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs.Add("staffId", "staffId is required")
	}
	if !validator.IsInSlice(r.Kind, []string{string(ScanSignIn), string(ScanSignOut)}) {
		errs.Add("kind", "kind must be sign_in or sign_out")
	}
	if r.At != "" {
		if _, ok := validator.IsValidDateTime(r.At); !ok {
			errs.Add("at", "invalid timestamp, use RFC3339")
		}
	}

	return errs.Err()
}

type ScanFilter struct {
	StaffID *string
	Start   string
	End     string
}

func (f *ScanFilter) Validate() error {
	var errs validator.ValidationErrors
	start, ok := validator.IsValidDate(f.Start)
	if !ok {
		errs.Add("start", "invalid date format, use YYYY-MM-DD")
	}
	end, ok2 := validator.IsValidDate(f.End)
	if !ok2 {
		errs.Add("end", "invalid date format, use YYYY-MM-DD")
	}
	if ok && ok2 && end.Before(start) {
		errs.Add("end", "end must not be before start")
	}
	return errs.Err()
}

type ScanResponse struct {
	ID              string    `json:"id"`
	StaffID         string    `json:"staffId"`
	Kind            ScanKind  `json:"kind"`
	At              time.Time `json:"at"`
	Source          string    `json:"source"`
	IsAutoSignedOut bool      `json:"isAutoSignedOut"`
	IsAutoSignedIn  bool      `json:"isAutoSignedIn"`
}

func NewScanResponse(s Scan) ScanResponse {
	return ScanResponse{
		ID:              s.ID,
		StaffID:         s.StaffID,
		Kind:            s.Kind,
		At:              s.At,
		Source:          s.Source,
		IsAutoSignedOut: s.IsAutoSignedOut,
		IsAutoSignedIn:  s.IsAutoSignedIn,
	}
}

type InterventionFilter struct {
	StaffID *string
	From    *time.Time
	To      *time.Time
}

type InterventionResponse struct {
	ID        string           `json:"id"`
	StaffID   string           `json:"staffId"`
	Date      string           `json:"date"`
	Kind      InterventionKind `json:"kind"`
	Author    string           `json:"author"`
	Note      *string          `json:"note"`
	CreatedAt time.Time        `json:"createdAt"`
}

func NewInterventionResponse(i Intervention) InterventionResponse {
	return InterventionResponse{
		ID:        i.ID,
		StaffID:   i.StaffID,
		Date:      i.Date.Format(validator.DateLayout),
		Kind:      i.Kind,
		Author:    i.Author,
		Note:      i.Note,
		CreatedAt: i.CreatedAt,
	}
}
