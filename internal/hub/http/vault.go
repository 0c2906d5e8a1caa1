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
)

// VaultHandler serves the stored-key endpoints. Key material never leaves
// through this surface; listings carry kid, label, and age only.
type VaultHandler struct {
	Service *service.VaultService
	Logger  *slog.Logger
}

type vaultEntryResponse struct {
	Kid       string `json:"kid"`
	Label     string `json:"label"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toVaultEntryResponse(e domain.VaultEntry) vaultEntryResponse {
	resp := vaultEntryResponse{Kid: e.Kid, Label: e.Label}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func (h *VaultHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("vault list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "failed to list vault")
		return
	}

	out := make([]vaultEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toVaultEntryResponse(e)
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// HandlePut stores a private JWK from a multipart form: file field
// "private_jwk", optional "kid" override and "label".
func (h *VaultHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "expected a multipart form")
		return
	}

	file, _, err := r.FormFile("private_jwk")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing private_jwk file")
		return
	}
	defer file.Close()

	jwkBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "failed to read uploaded key")
		return
	}

	entry, err := h.Service.Put(r.Context(), r.FormValue("kid"), r.FormValue("label"), jwkBytes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "already_exists", "a vault entry with that kid already exists")
		case errors.Is(err, jwkx.ErrMalformedKey), errors.Is(err, jwkx.ErrUnsupportedKeyType):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.Logger.Error("vault put failed", "error", err)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toVaultEntryResponse(entry))
}

func (h *VaultHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	kid := r.PathValue("kid")

	if err := h.Service.Delete(r.Context(), kid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no vault entry with that kid")
			return
		}
		h.Logger.Error("vault delete failed", "kid", kid, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "failed to delete vault entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
