package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/internal/clinic"
	"github.com/clinicore/booking-platform/internal/doctors"
	httpmiddleware "github.com/clinicore/booking-platform/internal/http/middleware"
	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/payments"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	DoctorsHandler      *doctors.Handler
	AppointmentsHandler *appointments.Handler
	PaymentsHandler     *payments.Handler
	DashboardHandler    *clinic.Handler
	AuthSecret          string
	AllowFakeOrders     bool
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/doctors", cfg.DoctorsHandler.List)
		public.Get("/doctors/{id}/slots", cfg.DoctorsHandler.OccupiedSlots)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AllowFakeOrders && cfg.PaymentsHandler != nil {
			public.Post("/payments/fake/{orderID}", cfg.PaymentsHandler.SettleFakeOrder)
		}
	})

	// Patient endpoints
	r.Group(func(patient chi.Router) {
		patient.Use(httpmiddleware.RequireRole(cfg.AuthSecret, identity.RolePatient))
		patient.Post("/appointments", cfg.AppointmentsHandler.Book)
		patient.Get("/appointments", cfg.AppointmentsHandler.ListMine)
		if cfg.PaymentsHandler != nil {
			patient.Post("/payments/orders", cfg.PaymentsHandler.CreateOrder)
			patient.Post("/payments/confirm", cfg.PaymentsHandler.Confirm)
		}
	})

	// Cancel is shared: patients, doctors and admins may cancel, the
	// coordinator decides ownership.
	r.Group(func(shared chi.Router) {
		shared.Use(httpmiddleware.RequireRole(cfg.AuthSecret, identity.RolePatient, identity.RoleDoctor, identity.RoleAdmin))
		shared.Post("/appointments/{id}/cancel", cfg.AppointmentsHandler.Cancel)
	})

	// Doctor endpoints
	r.Group(func(doctor chi.Router) {
		doctor.Use(httpmiddleware.RequireRole(cfg.AuthSecret, identity.RoleDoctor))
		doctor.Post("/appointments/{id}/complete", cfg.AppointmentsHandler.Complete)
		doctor.Get("/doctor/appointments", cfg.AppointmentsHandler.ListForDoctor)
		doctor.Post("/doctor/availability", cfg.DoctorsHandler.ChangeAvailability)
		doctor.Post("/doctor/profile", cfg.DoctorsHandler.UpdateProfile)
		if cfg.DashboardHandler != nil {
			doctor.Get("/doctor/dashboard", cfg.DashboardHandler.DoctorDashboard)
		}
	})

	// Admin endpoints
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.RequireRole(cfg.AuthSecret, identity.RoleAdmin))
		admin.Post("/admin/doctors", cfg.DoctorsHandler.Create)
		admin.Get("/admin/appointments", cfg.AppointmentsHandler.ListAll)
		if cfg.DashboardHandler != nil {
			admin.Get("/admin/dashboard", cfg.DashboardHandler.AdminDashboard)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
