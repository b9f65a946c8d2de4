package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/cache"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"golang.org/x/crypto/bcrypt"
)

const (
	EventSettingsUpdated = "settings.updated"

	cacheKey = "settings:current"
	cacheTTL = 5 * time.Minute
)

type EventPublisher interface {
	Publish(topic string, event string, data interface{})
}

// cachedSettings carries the fields Settings hides from JSON.
type cachedSettings struct {
	Version   int64             `json:"version"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Settings  settings.Settings `json:"settings"`
}

type SettingsServiceImpl struct {
	settings.SettingsRepository
	cache  cache.Store
	events EventPublisher
}

func NewSettingsService(repo settings.SettingsRepository, store cache.Store, events EventPublisher) settings.SettingsService {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &SettingsServiceImpl{SettingsRepository: repo, cache: store, events: events}
}

func (s *SettingsServiceImpl) GetSettings(ctx context.Context, refresh bool) (settings.SettingsResponse, error) {
	if refresh {
		s.invalidate(ctx)
	}
	current, err := s.Current(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return settings.NewSettingsResponse(current), nil
}

// Current serves from the cache and falls back to the repository. Defaults
// are returned until settings are first saved.
func (s *SettingsServiceImpl) Current(ctx context.Context) (settings.Settings, error) {
	if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
		var entry cachedSettings
		if err := json.Unmarshal(raw, &entry); err == nil {
			entry.Settings.Version = entry.Version
			entry.Settings.UpdatedAt = entry.UpdatedAt
			return entry.Settings, nil
		}
		slog.Warn("discarding unreadable settings cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("settings cache read failed", "error", err)
	}

	current, err := s.load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	raw, err := json.Marshal(cachedSettings{Version: current.Version, UpdatedAt: current.UpdatedAt, Settings: current})
	if err == nil {
		if err := s.cache.Set(ctx, cacheKey, raw, cacheTTL); err != nil {
			slog.Warn("settings cache write failed", "error", err)
		}
	}
	return current, nil
}

func (s *SettingsServiceImpl) SaveSettings(ctx context.Context, req settings.SaveSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	current, err := s.load(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	next := current
	next.EarlyTolerance = req.EarlyTolerance
	next.LateTolerance = req.LateTolerance
	next.AutoSignOut = req.AutoSignOut
	next.AutoSignIn = req.AutoSignIn
	next.AbsentGrace = req.AbsentGrace
	next.Thresholds = req.Thresholds
	next.Backup = req.Backup
	next.AllowedEmails = normalizeEmails(req.AllowedEmails)

	next.PinHashes = make(map[settings.PinKind]string, len(current.PinHashes))
	for kind, hash := range current.PinHashes {
		next.PinHashes[kind] = hash
	}
	for kind, pin := range req.Pins {
		if pin == "" {
			delete(next.PinHashes, kind)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return settings.SettingsResponse{}, fmt.Errorf("failed to hash pin: %w", err)
		}
		next.PinHashes[kind] = string(hash)
	}

	saved, err := s.SettingsRepository.Save(ctx, next)
	if err != nil {
		return settings.SettingsResponse{}, fmt.Errorf("failed to save settings: %w", err)
	}
	s.invalidate(ctx)

	resp := settings.NewSettingsResponse(saved)
	if s.events != nil {
		s.events.Publish(sse.TopicSettings, EventSettingsUpdated, resp)
	}
	return resp, nil
}

func (s *SettingsServiceImpl) VerifyPin(ctx context.Context, req settings.VerifyPinRequest) (settings.VerifyPinResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.VerifyPinResponse{}, err
	}

	current, err := s.Current(ctx)
	if err != nil {
		return settings.VerifyPinResponse{}, err
	}

	hash := current.PinHashes[settings.PinKind(req.Kind)]
	if hash == "" {
		return settings.VerifyPinResponse{}, settings.ErrPinNotConfigured
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Pin))
	return settings.VerifyPinResponse{Valid: err == nil}, nil
}

func (s *SettingsServiceImpl) load(ctx context.Context) (settings.Settings, error) {
	current, err := s.SettingsRepository.Get(ctx)
	if errors.Is(err, settings.ErrSettingsNotFound) {
		return fixtures.GetDefaultSettings(), nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return current, nil
}

func (s *SettingsServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		slog.Warn("settings cache invalidation failed", "error", err)
	}
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
