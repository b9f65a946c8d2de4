package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ==========================================
// TAX CONFIG
// ==========================================

// GetDefaultTaxConfig returns the South African 2024/25 PAYE tables with the
// statutory UIF and SDL parameters.
func GetDefaultTaxConfig() payroll.TaxConfig {
	return payroll.TaxConfig{
		TaxYear: 2025,
		Brackets: []payroll.Bracket{
			{Min: dec("0"), Max: decPtr("237100"), Rate: dec("0.18"), BaseTax: dec("0")},
			{Min: dec("237100"), Max: decPtr("370500"), Rate: dec("0.26"), BaseTax: dec("42678")},
			{Min: dec("370500"), Max: decPtr("512800"), Rate: dec("0.31"), BaseTax: dec("77362")},
			{Min: dec("512800"), Max: decPtr("673000"), Rate: dec("0.36"), BaseTax: dec("121475")},
			{Min: dec("673000"), Max: decPtr("857900"), Rate: dec("0.39"), BaseTax: dec("179147")},
			{Min: dec("857900"), Max: decPtr("1817000"), Rate: dec("0.41"), BaseTax: dec("251258")},
			{Min: dec("1817000"), Max: nil, Rate: dec("0.45"), BaseTax: dec("644489")},
		},
		RebatePrimary:      dec("17235"),
		RebateSecondary:    dec("9444"),
		RebateTertiary:     dec("3145"),
		UIFRate:            dec("0.01"),
		UIFCeiling:         dec("17712"),
		SDLRate:            dec("0.01"),
		SDLExemptThreshold: dec("500000"),
	}
}

// ==========================================
// SETTINGS
// ==========================================

// GetDefaultSettings returns the settings used before any have been saved.
func GetDefaultSettings() settings.Settings {
	return settings.Settings{
		Version:        0,
		EarlyTolerance: settings.Toggle{Enabled: true, Value: 15},
		LateTolerance:  settings.Toggle{Enabled: true, Value: 15},
		AutoSignOut:    settings.Toggle{Enabled: true, Value: 14},
		AutoSignIn:     settings.Toggle{Enabled: false, Value: 14},
		AbsentGrace:    settings.Toggle{Enabled: true, Value: 60},
		Thresholds: settings.Thresholds{
			MaxRegularHours:  dec("0"),
			MaxOvertimeHours: dec("0"),
			MaxSundayHours:   dec("0"),
			MaxHolidayHours:  dec("0"),
			MaxTotalOwed:     dec("0"),
		},
		Backup: settings.Backup{
			Enabled:   false,
			Frequency: settings.BackupDaily,
			Time:      "02:00",
		},
		PinHashes:     map[settings.PinKind]string{},
		AllowedEmails: []string{},
	}
}

// ==========================================
// SEEDING
// ==========================================

// SeedTaxConfig stores the default tax config when none exists yet.
func SeedTaxConfig(ctx context.Context, repo payroll.TaxConfigRepository) error {
	_, err := repo.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, payroll.ErrTaxConfigNotFound) {
		return fmt.Errorf("failed to load tax config: %w", err)
	}

	cfg, err := repo.Save(ctx, GetDefaultTaxConfig())
	if err != nil {
		return fmt.Errorf("failed to seed tax config: %w", err)
	}
	slog.Info("seeded default tax config", "tax_year", cfg.TaxYear)
	return nil
}
