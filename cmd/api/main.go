package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/staffpay/staffpay-backend-go/internal/config"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	appHTTP "github.com/staffpay/staffpay-backend-go/internal/handler/http"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/cache"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/calendar"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/cron"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/jwt"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/storage"
	"github.com/staffpay/staffpay-backend-go/internal/repository/postgresql"
	attendanceService "github.com/staffpay/staffpay-backend-go/internal/service/attendance"
	holidayService "github.com/staffpay/staffpay-backend-go/internal/service/holiday"
	leaveService "github.com/staffpay/staffpay-backend-go/internal/service/leave"
	payrollService "github.com/staffpay/staffpay-backend-go/internal/service/payroll"
	rosterService "github.com/staffpay/staffpay-backend-go/internal/service/roster"
	settingsService "github.com/staffpay/staffpay-backend-go/internal/service/settings"
	staffService "github.com/staffpay/staffpay-backend-go/internal/service/staff"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "staffpay"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return err
		}
	}

	// Cache and run lock: Redis when configured, in-process otherwise
	var (
		store  cache.Store
		locker cache.Locker
	)
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		store = cache.NewRedisStore(client, cfg.Redis.Prefix)
		locker = cache.NewRedisLocker(client, cfg.Redis.Prefix)
		logger.Info("using redis cache")
	} else {
		store = cache.NewMemoryStore()
		locker = cache.NewMemoryLocker()
		logger.Info("using in-memory cache")
	}

	holidayProvider, err := newHolidayProvider(ctx, cfg.Holiday)
	if err != nil {
		return err
	}

	// Repositories
	tx := postgresql.NewTransactor(db)
	staffRepo := postgresql.NewStaffRepository(db)
	zoneRepo := postgresql.NewZoneRepository(db)
	payGroupRepo := postgresql.NewPayGroupRepository(db)
	scanRepo := postgresql.NewScanRepository(db)
	interventionRepo := postgresql.NewInterventionRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	templateRepo := postgresql.NewTemplateRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	overrideRepo := postgresql.NewOverrideRepository(db)
	taxConfigRepo := postgresql.NewTaxConfigRepository(db)

	if cfg.App.SeedDefaults {
		if err := fixtures.SeedTaxConfig(ctx, taxConfigRepo); err != nil {
			return err
		}
	}

	// Services
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	settingsSvc := settingsService.NewSettingsService(settingsRepo, store, hub)
	staffSvc := staffService.NewStaffService(staffRepo, zoneRepo, payGroupRepo)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, holidayProvider)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRepo, staffRepo, hub)
	rosterSvc := rosterService.NewRosterService(tx, rosterRepo, templateRepo, staffRepo, zoneRepo, hub)
	attendanceSvc := attendanceService.NewAttendanceService(tx, scanRepo, interventionRepo, staffRepo, settingsSvc, hub)
	payrollSvc := payrollService.NewPayrollService(payrollService.Dependencies{
		Tx:            tx,
		Runs:          runRepo,
		Payslips:      payslipRepo,
		Overrides:     overrideRepo,
		TaxConfigs:    taxConfigRepo,
		Staff:         staffRepo,
		PayGroups:     payGroupRepo,
		Zones:         zoneRepo,
		Scans:         scanRepo,
		Interventions: interventionRepo,
		Settings:      settingsSvc,
		Holidays:      holidaySvc,
		Leave:         leaveSvc,
		Rosters:       rosterSvc,
		Locker:        locker,
		Events:        hub,
		Location:      cfg.Payroll.Location,
		Concurrency:   cfg.Payroll.Concurrency,
		LockTTL:       cfg.Payroll.LockTTL,
	})

	// Background jobs
	scheduler := cron.NewScheduler(ctx, logger)
	if cfg.Jobs.Enabled {
		cron.NewAttendanceJobs(attendanceSvc, cfg.Jobs.StaleShiftInterval).RegisterJobs(scheduler)
		cron.NewHolidayJobs(holidaySvc, cfg.Jobs.HolidaySyncInterval).RegisterJobs(scheduler)

		backupStorage, err := storage.NewLocalStorage(cfg.Jobs.BackupDir)
		if err != nil {
			return err
		}
		cron.NewBackupJobs(settingsSvc, payrollSvc, backupStorage, cfg.Jobs.BackupInterval, cfg.Payroll.Location).
			RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, JWTService, appHTTP.Handlers{
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Settings:   appHTTP.NewSettingsHandler(settingsSvc),
		Roster:     appHTTP.NewRosterHandler(rosterSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Holiday:    appHTTP.NewHolidayHandler(holidaySvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Staff:      appHTTP.NewStaffHandler(staffSvc),
		Events:     appHTTP.NewEventsHandler(hub, JWTService),
	})

	// No write timeout since /events streams stay open; BaseContext ends
	// them on shutdown.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newHolidayProvider prefers the Google calendar and falls back to the
// computed calendar when it is unavailable or not configured.
func newHolidayProvider(ctx context.Context, cfg config.HolidayConfig) (holiday.Provider, error) {
	static := calendar.NewStaticProvider()
	if cfg.GoogleCredentialsFile == "" {
		return static, nil
	}

	creds, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	google, err := calendar.NewGoogleProvider(ctx, creds, cfg.GoogleCalendarID)
	if err != nil {
		return nil, err
	}
	return calendar.FallbackProvider{google, static}, nil
}
