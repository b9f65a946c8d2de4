package settings

import "errors"

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrPinNotConfigured = errors.New("pin not configured")
)
