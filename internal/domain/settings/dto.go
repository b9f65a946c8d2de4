package settings

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

var pinRegex = regexp.MustCompile(`^[0-9]{4,8}$`)

type SaveSettingsRequest struct {
	EarlyTolerance Toggle     `json:"earlyTolerance"`
	LateTolerance  Toggle     `json:"lateTolerance"`
	AutoSignOut    Toggle     `json:"autoSignOut"`
	AutoSignIn     Toggle     `json:"autoSignIn"`
	AbsentGrace    Toggle     `json:"absentGrace"`
	Thresholds     Thresholds `json:"thresholds"`
	Backup         Backup     `json:"backup"`
	AllowedEmails  []string   `json:"allowedEmails"`

	// Pins holds new plaintext PINs by kind. Omitted kinds keep their current
	// hash; an empty string removes the PIN.
	Pins map[PinKind]string `json:"pins,omitempty"`
}

func (r *SaveSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	for field, t := range map[string]Toggle{
		"earlyTolerance": r.EarlyTolerance,
		"lateTolerance":  r.LateTolerance,
		"absentGrace":    r.AbsentGrace,
	} {
		if t.Value < 0 || t.Value > 24*60 {
			errs.Add(field+".value", "must be between 0 and 1440 minutes")
		}
	}
	for field, t := range map[string]Toggle{
		"autoSignOut": r.AutoSignOut,
		"autoSignIn":  r.AutoSignIn,
	} {
		if t.Value < 0 || t.Value > 72 {
			errs.Add(field+".value", "must be between 0 and 72 hours")
		}
		if t.Enabled && t.Value == 0 {
			errs.Add(field+".value", "must be greater than zero when enabled")
		}
	}
	for field, v := range map[string]decimal.Decimal{
		"thresholds.maxRegularHours":  r.Thresholds.MaxRegularHours,
		"thresholds.maxOvertimeHours": r.Thresholds.MaxOvertimeHours,
		"thresholds.maxSundayHours":   r.Thresholds.MaxSundayHours,
		"thresholds.maxHolidayHours":  r.Thresholds.MaxHolidayHours,
		"thresholds.maxTotalOwed":     r.Thresholds.MaxTotalOwed,
	} {
		if v.IsNegative() {
			errs.Add(field, "must be non-negative")
		}
	}
	if r.Backup.Frequency != "" && !validator.IsInSlice(string(r.Backup.Frequency), []string{
		string(BackupDaily), string(BackupWeekly), string(BackupMonthly),
	}) {
		errs.Add("backup.frequency", "frequency must be daily, weekly or monthly")
	}
	if r.Backup.Time != "" && !validator.IsValidClock(r.Backup.Time) {
		errs.Add("backup.time", "invalid time format, use HH:MM")
	}
	for _, email := range r.AllowedEmails {
		if !validator.IsValidEmail(strings.TrimSpace(email)) {
			errs.Add("allowedEmails", "invalid email: "+email)
			break
		}
	}
	for kind, pin := range r.Pins {
		if kind != PinAdmin && kind != PinPayroll {
			errs.Add("pins", "unknown pin kind: "+string(kind))
			continue
		}
		if pin != "" && !pinRegex.MatchString(pin) {
			errs.Add("pins."+string(kind), "pin must be 4 to 8 digits")
		}
	}

	return errs.Err()
}

type VerifyPinRequest struct {
	Kind string `json:"kind"`
	Pin  string `json:"pin"`
}

func (r *VerifyPinRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsInSlice(r.Kind, []string{string(PinAdmin), string(PinPayroll)}) {
		errs.Add("kind", "kind must be admin or payroll")
	}
	if validator.IsEmpty(r.Pin) {
		errs.Add("pin", "pin is required")
	}
	return errs.Err()
}

type VerifyPinResponse struct {
	Valid bool `json:"valid"`
}

type SettingsResponse struct {
	Version        int64      `json:"version"`
	EarlyTolerance Toggle     `json:"earlyTolerance"`
	LateTolerance  Toggle     `json:"lateTolerance"`
	AutoSignOut    Toggle     `json:"autoSignOut"`
	AutoSignIn     Toggle     `json:"autoSignIn"`
	AbsentGrace    Toggle     `json:"absentGrace"`
	Thresholds     Thresholds `json:"thresholds"`
	Backup         Backup     `json:"backup"`
	HasAdminPin    bool       `json:"hasAdminPin"`
	HasPayrollPin  bool       `json:"hasPayrollPin"`
	AllowedEmails  []string   `json:"allowedEmails"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func NewSettingsResponse(s Settings) SettingsResponse {
	emails := s.AllowedEmails
	if emails == nil {
		emails = []string{}
	}
	return SettingsResponse{
		Version:        s.Version,
		EarlyTolerance: s.EarlyTolerance,
		LateTolerance:  s.LateTolerance,
		AutoSignOut:    s.AutoSignOut,
		AutoSignIn:     s.AutoSignIn,
		AbsentGrace:    s.AbsentGrace,
		Thresholds:     s.Thresholds,
		Backup:         s.Backup,
		HasAdminPin:    s.HasPin(PinAdmin),
		HasPayrollPin:  s.HasPin(PinPayroll),
		AllowedEmails:  emails,
		UpdatedAt:      s.UpdatedAt,
	}
}
