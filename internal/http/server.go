// Package http serves the RPC API, the health probes and the embedded
// single page app.
package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	applog "financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
	appweb "financas/web"
)

// Pinger reports whether the store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr          string
	DefaultUserID int64
	// TrustedProxies are CIDRs, besides loopback and private ranges, whose
	// X-User-ID and X-Forwarded-For headers are honoured.
	TrustedProxies []string
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	router        *Router
	store         Pinger
	detector      *security.Detector
	limiter       *ratelimit.Limiter
	logger        *applog.Logger
	defaultUserID int64
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, finance *services.FinanceService, stats *services.StatisticsService, store Pinger, logger *applog.Logger) (*Server, error) {
	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(strings.TrimSpace(cidr)); err != nil {
			return nil, err
		}
	}

	s := &Server{
		router:        NewRouter(),
		store:         store,
		detector:      detector,
		limiter:       ratelimit.NewLimiter(opts.RateLimit),
		logger:        logger.WithComponent(applog.ComponentHTTP),
		defaultUserID: opts.DefaultUserID,
	}
	registerProcedures(s.router, finance, stats)

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/{procedure}", s.handleRPC)
	mux.HandleFunc("/rpc/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no procedure given").Write(w)
	})
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount embedded static FS: %w", err)
	}
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))
	mux.HandleFunc("/", s.handleIndex(static))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(
		detector.ExtractClientIP,
		func(r *http.Request) bool { return r.Method == http.MethodPost },
		func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, CodeTooManyRequests, "rate limit exceeded, try again later").Write(w)
		})
	tracer := trace.NewMiddleware(logger, detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s, nil
}

// Shutdown stops the rate limiter and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("procedure")

	proc, ok := s.router.lookup(name)
	if !ok {
		NotFoundError(fmt.Sprintf("no procedure %q", name)).Write(w)
		return
	}

	method := http.MethodGet
	if proc.kind == mutationKind {
		method = http.MethodPost
	}
	if resp := RequireMethod(r, method); resp != nil {
		resp.Write(w)
		return
	}

	userID := s.detector.ExtractUserID(r, s.defaultUserID)
	logger := applog.FromContext(ctx)

	raw, err := ReadInput(r)
	if err == nil {
		var out any
		out, err = proc.handle(ctx, userID, raw)
		if err == nil {
			DataResponse(out).Write(w)
			return
		}
	}

	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Procedure failed",
			applog.FieldProcedure, name,
			applog.FieldUserID, userID,
			applog.FieldError, err)
	} else {
		logger.DebugContext(ctx, "Procedure rejected input",
			applog.FieldProcedure, name,
			applog.FieldUserID, userID,
			applog.FieldError, err)
	}
	resp.Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex serves the app shell for every path the client router owns.
func (s *Server) handleIndex(static fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		page, err := fs.ReadFile(static, "index.html")
		if err != nil {
			s.logger.ErrorContext(r.Context(), "App shell missing", applog.FieldError, err)
			http.Error(w, "app shell not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(page)
	}
}
