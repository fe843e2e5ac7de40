// Package http is the web surface: server-rendered pages over the service
// layer, one session cookie, and the ambient middleware stack.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"babysteps/internal/cache"
	"babysteps/internal/config"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/middleware/ratelimit"
	"babysteps/internal/middleware/security"
	"babysteps/internal/middleware/trace"
	"babysteps/internal/services"
	"babysteps/internal/session"
	"babysteps/internal/state"
	appweb "babysteps/web"
)

// Services groups the service-layer dependencies of the web surface.
type Services struct {
	Auth      *services.AuthService
	Profile   *services.ProfileService
	Finance   *services.FinanceService
	Expense   *services.ExpenseService
	Dashboard *services.DashboardService
	Milestone *services.MilestoneService
}

type Server struct {
	http.Server

	services Services
	sessions *session.Store
	states   *state.Registry
	logger   *log.Logger

	templates map[string]*template.Template

	catalogCache *cache.LRUCache[[]core.Milestone]
	cacheManager *cache.Manager

	loginLimiter *ratelimit.Limiter
	headers      *security.HeadersMiddleware
	detector     *security.Detector
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes, templates, middleware and caches into a
// ready-to-run server.
func NewServer(cfg *config.Config, svcs Services, sessions *session.Store, states *state.Registry, logger *log.Logger) (*Server, error) {
	s := &Server{
		services: svcs,
		sessions: sessions,
		states:   states,
		logger:   logger.WithComponent(log.ComponentHTTP),

		catalogCache: cache.NewLRUCache[[]core.Milestone](cfg.CacheSize, cfg.CacheTTL),
		cacheManager: cache.NewManager(logger),

		loginLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: cfg.LoginRateLimit,
			Window:            cfg.LoginRateWindow,
		}),
		headers:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		detector: security.NewDetector(),
	}
	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy: %w", err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.cacheManager.Register(s.catalogCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = templates

	mux := http.NewServeMux()

	// Static assets from the embedded FS.
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static fs: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/", s.page(s.handleIndex))
	mux.HandleFunc("/login", s.limited(s.page(s.handleLogin)))
	mux.HandleFunc("/register", s.limited(s.page(s.handleRegister)))
	mux.HandleFunc("/logout", s.page(s.handleLogout))

	mux.HandleFunc("/dashboard", s.page(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("/expenses", s.page(s.requireAuth(s.handleExpenses)))
	mux.HandleFunc("/questionnaire", s.page(s.requireAuth(s.handleQuestionnaire)))
	mux.HandleFunc("/milestones", s.page(s.requireAuth(s.handleMilestones)))
	mux.HandleFunc("/profile", s.page(s.requireAuth(s.handleProfile)))

	handler := log.Middleware(logger)(
		s.headers.Middleware(
			s.tracer.Middleware(mux)))

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// Shutdown stops the background cleaners along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.loginLimiter.Stop()
		s.states.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// limited applies the login rate limiter to credential-bearing POSTs.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	limit := s.loginLimiter.Middleware(s.detector.ExtractClientIP, nil)
	limited := limit(next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks the session store, the one dependency owned by this
// process.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Get(r.Context(), "readiness-probe"); err != nil && err != session.ErrNotFound {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("session store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if pc.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
