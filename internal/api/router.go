package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yashith03/portfolio/internal/portfolio"
	"github.com/yashith03/portfolio/internal/widget"
)

// MaxMountedViews caps in-memory widget views across all visitors
const MaxMountedViews = 1000

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Registry *widget.Registry
	Fetcher  widget.Fetcher
	Page     *portfolio.Page
	Username string

	CORSOrigins []string
	CORSAll     bool
}

// RouterResult holds the router and resources that need cleanup
type RouterResult struct {
	Router       *chi.Mux
	RateLimiters *RateLimiters
}

// NewRouter creates and configures the HTTP router.
// Caller must call result.RateLimiters.Stop() on shutdown.
func NewRouter(cfg *RouterConfig) *RouterResult {
	r := chi.NewRouter()

	rateLimiters := NewRateLimiters()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORSOrigins, cfg.CORSAll))

	widgetHandler := NewWidgetHandler(cfg.Registry, cfg.Username)
	contributionsHandler := NewContributionsHandler(cfg.Fetcher)

	r.Group(func(r chi.Router) {
		r.Use(rateLimiters.Global.Middleware)

		r.Get("/", NewPageHandler(cfg.Page))
		r.Get("/api/health", NewHealthHandler(cfg.Registry))

		// Every mount costs three upstream calls against the shared token
		r.With(MountGuardMiddleware(rateLimiters.Mount, func() bool {
			return cfg.Registry.Count() >= MaxMountedViews
		})).Post("/api/widget", widgetHandler.Mount)

		r.With(rateLimiters.Mount.Middleware).
			Get("/api/contributions/{username}", contributionsHandler.Get)
	})

	// Interaction on a mounted view is served from memory, so it is
	// limited per view rather than per visitor
	r.Route("/api/widget/{id}", func(r chi.Router) {
		r.Use(rateLimiters.View.Middleware)

		r.Get("/", widgetHandler.Fragment)
		r.Delete("/", widgetHandler.Unmount)
		r.Get("/state", widgetHandler.State)
		r.Post("/year/{year}", widgetHandler.SelectYear)
		r.Post("/hover", widgetHandler.Hover)
		r.Delete("/hover", widgetHandler.Leave)
	})

	return &RouterResult{
		Router:       r,
		RateLimiters: rateLimiters,
	}
}
