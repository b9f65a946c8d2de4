package cron

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/storage"
)

const backupPrefix = "backups"

type backupManifest struct {
	Slot      time.Time `json:"slot"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []string  `json:"files"`
}

// BackupJobs exports every finalized payroll run to file storage on the
// schedule configured in settings. A slot is written once; its manifest
// marks it complete.
type BackupJobs struct {
	settingsService settings.SettingsService
	payrollService  payroll.PayrollService
	storage         storage.FileStorage
	interval        time.Duration
	now             func() time.Time
}

func NewBackupJobs(
	settingsService settings.SettingsService,
	payrollService payroll.PayrollService,
	fileStorage storage.FileStorage,
	interval time.Duration,
	loc *time.Location,
) *BackupJobs {
	return &BackupJobs{
		settingsService: settingsService,
		payrollService:  payrollService,
		storage:         fileStorage,
		interval:        interval,
		now:             func() time.Time { return time.Now().In(loc) },
	}
}

func (j *BackupJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "backup_payroll_runs",
		Interval: j.interval,
		Delay:    30 * time.Second,
		Fn:       j.BackupRuns,
	})
}

func (j *BackupJobs) BackupRuns(ctx context.Context) error {
	cfg, err := j.settingsService.GetSettings(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	now := j.now()
	slot, ok := cfg.Backup.LatestSlot(now)
	if !ok {
		return nil
	}

	dir := backupPrefix + "/" + slot.Format("2006-01-02")
	manifestKey := dir + "/manifest.json"
	done, err := j.storage.Exists(ctx, manifestKey)
	if err != nil {
		return fmt.Errorf("failed to check backup manifest: %w", err)
	}
	if done {
		return nil
	}

	runs, err := j.payrollService.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payroll runs: %w", err)
	}

	manifest := backupManifest{Slot: slot, CreatedAt: now, Files: []string{}}
	for _, run := range runs {
		if run.Status != payroll.RunStatusFinalized {
			continue
		}
		file, err := j.payrollService.ExportRun(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to export run %s: %w", run.ID, err)
		}
		key, err := j.storage.Upload(ctx, bytes.NewReader(file.Content), dir+"/"+file.Name)
		if err != nil {
			return fmt.Errorf("failed to store run %s: %w", run.ID, err)
		}
		manifest.Files = append(manifest.Files, key)
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	if _, err := j.storage.Upload(ctx, bytes.NewReader(body), manifestKey); err != nil {
		return fmt.Errorf("failed to write backup manifest: %w", err)
	}

	slog.Info("cron: payroll backup written", "slot", dir, "runs", len(manifest.Files))
	return nil
}
