package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cynit/hub/internal/hub/service"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/pkg/httpx"
	"github.com/cynit/hub/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	ExchangeService *service.ExchangeService
	VaultService    *service.VaultService
	ResultService   *service.ResultService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerCredentials()
	r.registerVault()
	r.registerCertificates()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCredentials() {
	handler := &ExchangeHandler{
		Service: r.ExchangeService,
		Logger:  r.logger,
	}

	// POST /v1/credentials/token - strict rate limit (each hit can cost an
	// outbound exchange)
	r.Mux.Handle("POST /v1/credentials/token",
		httpx.Chain(http.HandlerFunc(handler.HandleExchange),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /v1/credentials/sessions - lenient, read-only
	r.Mux.Handle("GET /v1/credentials/sessions",
		httpx.Chain(http.HandlerFunc(handler.HandleListSessions),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerVault() {
	handler := &VaultHandler{
		Service: r.VaultService,
		Logger:  r.logger,
	}

	r.Mux.Handle("GET /v1/vault",
		httpx.Chain(http.HandlerFunc(handler.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/vault",
		httpx.Chain(http.HandlerFunc(handler.HandlePut),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/vault/{kid}",
		httpx.Chain(http.HandlerFunc(handler.HandleDelete),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCertificates() {
	handler := &CertificateHandler{
		Results: r.ResultService,
		Logger:  r.logger,
	}

	r.Mux.Handle("POST /v1/certificates/decode",
		httpx.Chain(http.HandlerFunc(handler.HandleDecode),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/certificates/{token}/export/{format}",
		httpx.Chain(http.HandlerFunc(handler.HandleExport),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	handler := &SystemHandler{
		Store:        r.store,
		BuildVersion: r.buildVersion,
		StartTime:    r.startTime,
	}

	r.Mux.HandleFunc("GET /livez", handler.HandleLivez)
}
