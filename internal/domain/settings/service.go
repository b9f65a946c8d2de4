package settings

import "context"

type SettingsService interface {
	// GetSettings returns the cached settings; refresh bypasses and reloads the cache.
	GetSettings(ctx context.Context, refresh bool) (SettingsResponse, error)
	// Current returns the settings used for computation.
	Current(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, req SaveSettingsRequest) (SettingsResponse, error)
	VerifyPin(ctx context.Context, req VerifyPinRequest) (VerifyPinResponse, error)
}
