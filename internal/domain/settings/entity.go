package settings

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// Toggle is an on/off feature with a minute or hour amount.
type Toggle struct {
	Enabled bool `json:"enabled"`
	Value   int  `json:"value"`
}

// Thresholds are payroll sanity limits. A zero value disables the check.
type Thresholds struct {
	MaxRegularHours  decimal.Decimal `json:"maxRegularHours"`
	MaxOvertimeHours decimal.Decimal `json:"maxOvertimeHours"`
	MaxSundayHours   decimal.Decimal `json:"maxSundayHours"`
	MaxHolidayHours  decimal.Decimal `json:"maxHolidayHours"`
	MaxTotalOwed     decimal.Decimal `json:"maxTotalOwed"`
}

type BackupFrequency string

const (
	BackupDaily   BackupFrequency = "daily"
	BackupWeekly  BackupFrequency = "weekly"
	BackupMonthly BackupFrequency = "monthly"
)

type Backup struct {
	Enabled   bool            `json:"enabled"`
	Frequency BackupFrequency `json:"frequency"`
	Time      string          `json:"time"`
}

type PinKind string

const (
	PinAdmin   PinKind = "admin"
	PinPayroll PinKind = "payroll"
)

// Settings is the process-wide configuration aggregate. It is persisted as a
// single row whose version increments on every save.
type Settings struct {
	Version        int64              `json:"-"`
	EarlyTolerance Toggle             `json:"earlyTolerance"` // minutes
	LateTolerance  Toggle             `json:"lateTolerance"`  // minutes
	AutoSignOut    Toggle             `json:"autoSignOut"`    // hours
	AutoSignIn     Toggle             `json:"autoSignIn"`     // hours
	AbsentGrace    Toggle             `json:"absentGrace"`    // minutes
	Thresholds     Thresholds         `json:"thresholds"`
	Backup         Backup             `json:"backup"`
	PinHashes      map[PinKind]string `json:"pinHashes,omitempty"`
	AllowedEmails  []string           `json:"allowedEmails"`
	UpdatedAt      time.Time          `json:"-"`
}

// AutoSignOutAfter returns the age after which an open sign-in is stale.
func (s Settings) AutoSignOutAfter() time.Duration {
	if s.AutoSignOut.Value <= 0 {
		return 0
	}
	return time.Duration(s.AutoSignOut.Value) * time.Hour
}

// HasPin reports whether a PIN of the given kind is configured.
func (s Settings) HasPin(kind PinKind) bool {
	return s.PinHashes[kind] != ""
}

// LatestSlot returns the most recent scheduled backup time at or before now,
// in now's location. ok is false while backups are disabled.
func (b Backup) LatestSlot(now time.Time) (slot time.Time, ok bool) {
	if !b.Enabled {
		return time.Time{}, false
	}
	minutes, valid := validator.ClockMinutes(b.Time)
	if !valid {
		minutes = 0
	}
	at := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, minutes, 0, 0, now.Location())
	}

	switch b.Frequency {
	case BackupWeekly:
		offset := (int(now.Weekday()) + 6) % 7 // Monday first
		slot = at(now.AddDate(0, 0, -offset))
		if slot.After(now) {
			slot = slot.AddDate(0, 0, -7)
		}
	case BackupMonthly:
		slot = at(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
		if slot.After(now) {
			slot = slot.AddDate(0, -1, 0)
		}
	default:
		slot = at(now)
		if slot.After(now) {
			slot = slot.AddDate(0, 0, -1)
		}
	}
	return slot, true
}
