package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	var s settings.Settings
	var data []byte
	err := q.QueryRow(ctx, `SELECT version, data, updated_at FROM settings WHERE id = 1`).Scan(&s.Version, &data, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Settings{}, settings.ErrSettingsNotFound
		}
		return settings.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	version, updatedAt := s.Version, s.UpdatedAt
	if err := json.Unmarshal(data, &s); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Version, s.UpdatedAt = version, updatedAt
	return s, nil
}

func (r *settingsRepositoryImpl) Save(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	data, err := json.Marshal(s)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO settings (id, version, data) VALUES (1, 1, $1)
		ON CONFLICT (id) DO UPDATE SET
			version = settings.version + 1,
			data = EXCLUDED.data,
			updated_at = NOW()
		RETURNING version, updated_at`

	if err := q.QueryRow(ctx, query, data).Scan(&s.Version, &s.UpdatedAt); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return s, nil
}
