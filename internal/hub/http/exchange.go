package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/internal/hub/service"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/pkg/httpx"
	"github.com/cynit/hub/pkg/jwkx"
	"github.com/cynit/hub/pkg/opclient"
)

// maxUploadSize bounds multipart uploads. Keys and certificates are tiny;
// anything bigger is a mistake.
const maxUploadSize = 1 << 20

// ExchangeHandler serves the token exchange endpoint.
type ExchangeHandler struct {
	Service *service.ExchangeService
	Logger  *slog.Logger
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	AccessToken string `json:"access_token,omitempty"`
	Scope       string `json:"scope"`
	OPBase      string `json:"op_base"`
	Issuer      string `json:"issuer"`
	Reused      bool   `json:"reused"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

func toSessionResponse(s domain.Session, reused, withToken bool) sessionResponse {
	resp := sessionResponse{
		SessionID: s.ID,
		Scope:     s.Scope,
		OPBase:    s.OPBase,
		Issuer:    s.Issuer,
		Reused:    reused,
	}
	if withToken {
		resp.AccessToken = s.AccessToken
	}
	if !s.ExpiresAt.IsZero() {
		resp.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// HandleExchange performs a token exchange from a multipart form carrying
// either an uploaded private JWK (file field "private_jwk") or a vault kid
// (field "kid"), plus "issuer", "op_base", and "scope" fields.
func (h *ExchangeHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"expected a multipart form")
		return
	}

	req := service.ExchangeRequest{
		VaultKid: r.FormValue("kid"),
		Issuer:   r.FormValue("issuer"),
		OPBase:   r.FormValue("op_base"),
		Scope:    r.FormValue("scope"),
	}

	if file, _, err := r.FormFile("private_jwk"); err == nil {
		defer file.Close()
		jwkBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
				"failed to read uploaded key")
			return
		}
		req.JWK = jwkBytes
	}

	result, err := h.Service.Exchange(r.Context(), req)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Reused {
		status = http.StatusCreated
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, status, toSessionResponse(result.Session, result.Reused, true))
}

// writeExchangeError maps exchange failures onto responses. An upstream
// denial passes the server's status and body through untouched so the
// caller sees exactly what the authorization server said.
func (h *ExchangeHandler) writeExchangeError(w http.ResponseWriter, err error) {
	var xerr *opclient.ExchangeError
	if errors.As(err, &xerr) {
		httpx.NoCache(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(xerr.Status)
		_, _ = w.Write([]byte(xerr.Body))
		return
	}

	switch {
	case errors.Is(err, service.ErrNoKey),
		errors.Is(err, jwkx.ErrMissingIssuer),
		errors.Is(err, jwkx.ErrMalformedKey),
		errors.Is(err, jwkx.ErrUnsupportedKeyType):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrOPBaseNotAllowed):
		httpx.WriteError(w, http.StatusForbidden, "op_base_not_allowed", err.Error())
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no vault entry with that kid")
	default:
		h.Logger.Error("token exchange failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "exchange_failed",
			"token exchange could not be completed")
	}
}

// HandleListSessions lists the in-memory sessions without their tokens.
func (h *ExchangeHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.Service.Sessions.List()

	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s, false, false)
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"sessions": out})
}
