package settings

import "context"

type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	// Save writes the settings, increments the version and returns the stored row.
	Save(ctx context.Context, s Settings) (Settings, error)
}
