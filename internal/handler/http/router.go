package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/middleware"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

type Handlers struct {
	Payroll    PayrollHandler
	Settings   SettingsHandler
	Roster     RosterHandler
	Leave      LeaveHandler
	Holiday    HolidayHandler
	Attendance AttendanceHandler
	Staff      StaffHandler
	Events     EventsHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource authenticates with a query token
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Post("/events/token", h.Events.IssueToken)

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/preview", func(r chi.Router) {
					r.Get("/", h.Payroll.Preview)
					r.Post("/daily-breakdown", h.Payroll.UpsertDailyOverride)
					r.Delete("/daily-breakdown", h.Payroll.ResetDailyOverride)
				})

				r.Route("/runs", func(r chi.Router) {
					r.Get("/", h.Payroll.ListRuns)
					r.Post("/", h.Payroll.CreateRun)
					r.Route("/{id}", func(r chi.Router) {
						r.Use(middleware.UUIDParam("id"))
						r.Get("/", h.Payroll.GetRun)
						r.Post("/calculate", h.Payroll.CalculateRun)
						r.Get("/export", h.Payroll.ExportRun)

						// Admin only
						r.With(middleware.AdminOnly).Post("/lock", h.Payroll.LockRun)
					})
				})

				r.Route("/tax-config", func(r chi.Router) {
					r.Get("/", h.Payroll.GetTaxConfig)
					r.With(middleware.AdminOnly).Put("/", h.Payroll.UpdateTaxConfig)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.Post("/verify-pin", h.Settings.VerifyPin)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Settings.Save)
				})
			})

			r.Route("/rosters", func(r chi.Router) {
				r.Get("/", h.Roster.Get)
				r.Post("/", h.Roster.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Get("/", h.Roster.GetByID)
					r.Post("/batch-assign", h.Roster.BatchAssign)
					r.Post("/publish", h.Roster.Publish)
				})
			})

			r.Route("/roster-templates", func(r chi.Router) {
				r.Get("/", h.Roster.ListTemplates)
				r.Post("/", h.Roster.CreateTemplate)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Delete("/", h.Roster.DeleteTemplate)
					r.Post("/load", h.Roster.LoadTemplate)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", h.Leave.List)
				r.Post("/", h.Leave.Record)
				r.Post("/bulk-roster", h.Leave.BulkRoster)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Post("/approve", h.Leave.Approve)
					r.Post("/reject", h.Leave.Reject)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Holiday.List)
				r.Post("/", h.Holiday.Create)
				r.Post("/sync", h.Holiday.Sync)
				r.Post("/{date}/ignore", h.Holiday.Ignore)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/scans", h.Attendance.RecordScan)
				r.Get("/scans", h.Attendance.ListScans)
				r.Get("/interventions", h.Attendance.ListInterventions)
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.Staff.ListStaff)
				r.Post("/", h.Staff.CreateStaff)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Get("/", h.Staff.GetStaff)
					r.Put("/", h.Staff.UpdateStaff)
					r.Delete("/", h.Staff.DeleteStaff)
				})
			})

			r.Route("/zones", func(r chi.Router) {
				r.Get("/", h.Staff.ListZones)
				r.Post("/", h.Staff.CreateZone)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Get("/", h.Staff.GetZone)
					r.Put("/", h.Staff.UpdateZone)
					r.Delete("/", h.Staff.DeleteZone)
				})
			})

			r.Route("/pay-groups", func(r chi.Router) {
				r.Get("/", h.Staff.ListPayGroups)
				r.Post("/", h.Staff.CreatePayGroup)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParam("id"))
					r.Get("/", h.Staff.GetPayGroup)
					r.Put("/", h.Staff.UpdatePayGroup)
					r.Delete("/", h.Staff.DeletePayGroup)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
