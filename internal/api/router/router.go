package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-voice-api/internal/dashboard"
	"github.com/wolfman30/dental-voice-api/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-voice-api/internal/http/middleware"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	System             *handlers.SystemHandler
	Tools              *handlers.ToolsHandler
	AdminAuth          *handlers.AdminAuthHandler
	Dashboard          *dashboard.Handler
	Authenticator      httpmiddleware.Authenticator
	Users              httpmiddleware.UserCounter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	TrustProxyHeaders  bool

	// Per-IP limit on POST /admin/token. Zero RPS disables it.
	LoginRateLimitRPS   float64
	LoginRateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	if cfg.System != nil {
		r.Get("/", cfg.System.Root)
		r.Get("/health", cfg.System.Health)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Tools != nil {
		r.Route("/tools", func(tools chi.Router) {
			tools.Post("/verify-patient", cfg.Tools.VerifyPatient)
			tools.Post("/create-patient", cfg.Tools.CreatePatient)
			tools.Post("/check-availability", cfg.Tools.CheckAvailability)
			tools.Post("/book-dentist-appointment", cfg.Tools.BookAppointment)
			tools.Post("/get-patient-appointments", cfg.Tools.ListAppointments)
			tools.Post("/cancel-booking", cfg.Tools.CancelBooking)
		})
	}

	if cfg.AdminAuth != nil && cfg.Authenticator != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Group(func(login chi.Router) {
				if cfg.LoginRateLimitRPS > 0 {
					login.Use(httpmiddleware.RateLimit(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst))
				}
				login.Post("/token", cfg.AdminAuth.Login)
			})

			if cfg.Users != nil {
				admin.With(httpmiddleware.BootstrapOrBearer(cfg.Authenticator, cfg.Users)).
					Post("/create-user", cfg.AdminAuth.CreateUser)
			}

			admin.Group(func(protected chi.Router) {
				protected.Use(httpmiddleware.AdminBearer(cfg.Authenticator))
				protected.Get("/me", cfg.AdminAuth.Me)
				if cfg.Dashboard != nil {
					protected.Get("/stats", cfg.Dashboard.GetStats)
					protected.Get("/chart-data", cfg.Dashboard.GetChartData)
					protected.Get("/todays-bookings", cfg.Dashboard.GetTodaysBookings)
					protected.Get("/monthly-breakdown", cfg.Dashboard.GetMonthlyBreakdown)
					protected.Get("/tool-usage", cfg.Dashboard.GetToolUsage)
				}
			})
		})
	}

	return r
}
