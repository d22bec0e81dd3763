package http

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
	appweb "finboard/web"
)

const cacheCleanupInterval = 10 * time.Minute

// Deps are the services the server renders.
type Deps struct {
	Accounts       *services.Catalog[core.Account]
	Categories     *services.Catalog[core.Category]
	PaymentMethods *services.Catalog[core.PaymentMethod]
	Transactions   *services.Transactions
	Reports        *services.Reports
	Dashboard      *services.Dashboard

	// Ready backs /readyz; nil means the backend needs no probe.
	Ready   func(ctx context.Context) error
	Backend string
	Logger  *applog.Logger
}

type Server struct {
	http.Server
	deps      Deps
	templates *template.Template
	startedAt time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheManager     *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	detector := security.NewDetector()
	s := &Server{
		deps:             deps,
		startedAt:        time.Now(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		cacheManager:     cache.NewManager(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if deps.Reports != nil {
		s.cacheManager.Register(deps.Reports.Caches()...)
		s.cacheManager.StartCleanup(cacheCleanupInterval)
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /static/", http.FileServerFS(appweb.StaticFS))

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("GET /reports", s.handleReports)

	mux.HandleFunc("GET /api/dashboard", s.handleAPIDashboard)
	mux.HandleFunc("GET /api/transactions", s.handleAPITransactions)
	mux.HandleFunc("GET /api/reports", s.handleAPIYearReport)
	mux.HandleFunc("GET /api/reports/month", s.handleAPIMonthSummary)

	if s.deps.Accounts != nil {
		mountCatalog(s, mux, accountRoutes(s.deps.Accounts))
	}
	if s.deps.Categories != nil {
		mountCatalog(s, mux, categoryRoutes(s.deps.Categories))
	}
	if s.deps.PaymentMethods != nil {
		mountCatalog(s, mux, paymentMethodRoutes(s.deps.PaymentMethods))
	}
}

// middleware wraps the mux, outermost first: tracing, security headers,
// probe detection, then rate limiting of mutating requests.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)(next)
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.traceMiddleware.Middleware(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many changes, try again in a minute").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		requestLog(r).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		requestLog(r).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

func (s *Server) renderFragment(r *http.Request, name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesMissing
	}
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		requestLog(r).ErrorContext(r.Context(), "Template execution failed", applog.FieldError, err, "template", name)
		return nil, err
	}
	return []byte(buf.String()), nil
}
