package attendance

import (
	"time"
)

type ScanKind string

const (
	ScanSignIn  ScanKind = "sign_in"
	ScanSignOut ScanKind = "sign_out"
)

// Scan is one sign-in or sign-out event posted by a scanner.
type Scan struct {
	ID              string
	StaffID         string
	Kind            ScanKind
	At              time.Time
	Source          string
	IsAutoSignedOut bool
	IsAutoSignedIn  bool
	CreatedAt       time.Time
}

type InterventionKind string

const (
	InterventionHoursOverride InterventionKind = "hours_override"
	InterventionOverrideReset InterventionKind = "override_reset"
	InterventionAutoSignOut   InterventionKind = "auto_sign_out"
)

// Intervention is an audit entry for a manual or automatic correction.
type Intervention struct {
	ID        string
	StaffID   string
	Date      time.Time
	Kind      InterventionKind
	Author    string
	Note      *string
	CreatedAt time.Time
}
