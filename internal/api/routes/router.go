package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zatekoja/workshopbooking/internal/api/handlers"
	"github.com/zatekoja/workshopbooking/internal/api/middleware"
	"github.com/zatekoja/workshopbooking/internal/application/loaders"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
)

// Options tunes the cross-cutting middleware
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	AuthPerMinute  int
	AuthBurst      int
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// Router holds all route handlers
type Router struct {
	mux chi.Router

	authHandler     *handlers.AuthHandler
	calendarHandler *handlers.CalendarHandler
	timeSlotHandler *handlers.TimeSlotHandler
	adminHandler    *handlers.AdminHandler
	viewHandler     *handlers.ViewHandler
	sseHandler      *handlers.SSEHandler
	healthHandler   *handlers.HealthHandler

	sessions   middleware.SessionResolver
	roles      middleware.RoleChecker
	newLoaders func() *loaders.Loaders
	opts       Options
	metrics    *observability.Metrics
	limiter    *middleware.RateLimiter
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	calendarHandler *handlers.CalendarHandler,
	timeSlotHandler *handlers.TimeSlotHandler,
	adminHandler *handlers.AdminHandler,
	viewHandler *handlers.ViewHandler,
	sseHandler *handlers.SSEHandler,
	healthHandler *handlers.HealthHandler,
	sessions middleware.SessionResolver,
	roles middleware.RoleChecker,
	newLoaders func() *loaders.Loaders,
	opts Options,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             chi.NewRouter(),
		authHandler:     authHandler,
		calendarHandler: calendarHandler,
		timeSlotHandler: timeSlotHandler,
		adminHandler:    adminHandler,
		viewHandler:     viewHandler,
		sseHandler:      sseHandler,
		healthHandler:   healthHandler,
		sessions:        sessions,
		roles:           roles,
		newLoaders:      newLoaders,
		opts:            opts,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes. Groups nest the same way
// the gates do: public, then the authenticated gate, then the admin gate.
func (r *Router) SetupRoutes() http.Handler {
	m := r.mux

	if r.opts.TrustProxyHeaders {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.Recoverer)
	m.Use(middleware.Logging(r.opts.Logger))
	m.Use(middleware.ObservabilityMiddleware(r.metrics))
	m.Use(middleware.SecurityHeaders)
	m.Use(middleware.CORS(r.opts.AllowedOrigins))
	m.Use(chimw.Compress(5, "application/json"))
	m.Use(r.requestLoaders)

	m.Get("/health", r.healthHandler.Health)
	m.Get("/", r.viewHandler.Root)
	m.Get("/confirm", r.viewHandler.Confirm)

	// Sign-in pages bounce authenticated users to the dashboard
	m.Group(func(public chi.Router) {
		public.Use(middleware.RedirectIfAuthenticated(r.sessions))
		public.Get(middleware.LoginPath, r.viewHandler.Login)
		public.Get("/register", r.viewHandler.Register)
	})

	r.limiter = middleware.NewRateLimiter(r.opts.AuthPerMinute, r.opts.AuthBurst)
	m.Group(func(auth chi.Router) {
		auth.Use(r.limiter.Limit)
		auth.Post("/api/auth/login", r.authHandler.Login)
		auth.Post("/api/auth/register", r.authHandler.Register)
		auth.Post("/api/auth/confirm", r.authHandler.Confirm)
	})

	m.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireSession(r.sessions))

		protected.Get(middleware.DashboardPath, r.viewHandler.Dashboard)
		protected.Get("/calendar", r.viewHandler.Calendar)
		protected.Get("/admin/users/{userId}", r.viewHandler.AdminUser)
		protected.Get("/admin/calendar", r.viewHandler.AdminCalendar)
		protected.Get("/admin/calendar/{date}", r.viewHandler.AdminDate)

		protected.Post("/api/auth/logout", r.authHandler.Logout)
		protected.Get("/api/auth/user", r.authHandler.CurrentUser)
		protected.Get("/api/auth/events", r.sseHandler.StreamSessionEvents)

		protected.Route("/api/calendar", func(cal chi.Router) {
			cal.Get("/window", r.calendarHandler.GetWindow)
			cal.Get("/month", r.calendarHandler.GetMonth)
			cal.Get("/selection", r.calendarHandler.GetSelection)
			cal.Delete("/selection", r.calendarHandler.ClearSelection)
			cal.Post("/selection/toggle", r.calendarHandler.ToggleDate)
			cal.Post("/dates", r.calendarHandler.SubmitDates)
			cal.Get("/dates/mine", r.calendarHandler.MyDates)
		})

		protected.Get("/api/timeslots/options", r.timeSlotHandler.GetOptions)
		protected.Post("/api/timeslots", r.timeSlotHandler.BookTimeSlot)

		protected.Get("/api/admin/users/{userId}", r.adminHandler.GetUser)
		protected.Get("/api/admin/calendar", r.adminHandler.GetCalendar)
		protected.Get("/api/admin/calendar/{date}", r.adminHandler.GetDate)

		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(r.roles))
			admin.Get("/admin/users", r.viewHandler.AdminUsers)
			admin.Get("/api/admin/users", r.adminHandler.ListUsers)
			admin.Patch("/api/admin/users/{userId}/role", r.adminHandler.SetRole)
		})
	})

	return m
}

// requestLoaders gives every request its own batching loaders
func (r *Router) requestLoaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.newLoaders == nil {
			next.ServeHTTP(w, req)
			return
		}
		next.ServeHTTP(w, req.WithContext(loaders.WithLoaders(req.Context(), r.newLoaders())))
	})
}

// Close stops background work started by SetupRoutes
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Stop()
	}
}
