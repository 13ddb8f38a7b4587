package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"cafeteria/backend/internal/reporting"
	"cafeteria/backend/internal/service"
)

type Options struct {
	AllowedOrigin      string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	Logger             zerolog.Logger
	Metrics            *Metrics
}

type API struct {
	service       *service.Service
	reports       *reporting.Engine
	allowedOrigin string
	rateLimit     int
	timeout       time.Duration
	logger        zerolog.Logger
	metrics       *Metrics
}

func New(svc *service.Service, reports *reporting.Engine, opts Options) *API {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	if opts.RateLimitPerMinute < 1 {
		opts.RateLimitPerMinute = 120
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 20 * time.Second
	}
	return &API{
		service:       svc,
		reports:       reports,
		allowedOrigin: opts.AllowedOrigin,
		rateLimit:     opts.RateLimitPerMinute,
		timeout:       opts.RequestTimeout,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		a.requestLogger,
		middleware.Recoverer,
		a.securityHeaders,
		a.metrics.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "ruta no encontrada"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(
			httprate.LimitByIP(a.rateLimit, time.Minute),
			middleware.Timeout(a.timeout),
			limitBody,
		)

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", a.handleListProducts)
			r.Post("/", a.handleCreateProduct)
			r.Put("/{id}", a.handleUpdateProduct)
			r.Delete("/{id}", a.handleDeleteProduct)
		})
		r.Route("/ventas", func(r chi.Router) {
			r.Get("/", a.handleListSales)
			r.Post("/", a.handleCreateSale)
			r.Delete("/{id}", a.handleDeleteSale)
		})
		r.Route("/gastos", func(r chi.Router) {
			r.Get("/", a.handleListExpenses)
			r.Post("/", a.handleCreateExpense)
			r.Put("/{id}", a.handleUpdateExpense)
			r.Delete("/{id}", a.handleDeleteExpense)
		})
		r.Route("/reportes", func(r chi.Router) {
			r.Get("/diario", a.handleDailyReport)
			r.Get("/estadisticas", a.handleStatistics)
			r.Route("/avanzados", func(r chi.Router) {
				r.Get("/diario", a.handleDailySnapshot)
				r.Get("/dashboard", a.handleDashboard)
				r.Get("/semanal", a.handleWeekly)
				r.Get("/mensual", a.handleMonthly)
				r.Get("/predicciones", a.handlePredictions)
				r.Get("/tendencias", a.handleTrends)
				r.Get("/comparativo", a.handleComparative)
			})
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Ping(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok": false,
			"at": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}
