package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cynit/hub/internal/hub/service"
	"github.com/cynit/hub/pkg/certx"
	"github.com/cynit/hub/pkg/httpx"
)

// CertificateHandler serves certificate decoding and result export.
type CertificateHandler struct {
	Results *service.ResultService
	Logger  *slog.Logger
}

// HandleDecode decodes an uploaded certificate or CSR. The payload is either
// a multipart file field "certificate" or the raw request body, so both
// file uploads and piped curl invocations work.
func (h *CertificateHandler) HandleDecode(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readCertificatePayload(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	info, err := certx.Decode(data, filename)
	if err != nil {
		switch {
		case errors.Is(err, certx.ErrEmptyInput):
			httpx.WriteError(w, http.StatusBadRequest, "empty_input", "no certificate data supplied")
		case errors.Is(err, certx.ErrUnrecognizedFormat):
			httpx.WriteError(w, http.StatusUnprocessableEntity, "unrecognized_format", err.Error())
		default:
			h.Logger.Error("certificate decode failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "decode failed")
		}
		return
	}

	token := h.Results.Save(info)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"info":  info,
	})
}

// HandleExport re-renders a stored decode result as json, csv, md, or html.
func (h *CertificateHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	format := r.PathValue("format")

	info, ok := h.Results.Get(token)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no decode result with that token")
		return
	}

	switch format {
	case "json":
		out, err := info.ExportJSON()
		if err != nil {
			h.Logger.Error("export failed", "format", format, "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="certificate.csv"`)
		_, _ = io.WriteString(w, info.ExportCSV())
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, info.ExportMarkdown())
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, info.ExportHTML())
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"format must be one of json, csv, md, html")
	}
}

func readCertificatePayload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err == nil {
		if file, header, err := r.FormFile("certificate"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
			if err != nil {
				return nil, "", errors.New("failed to read uploaded file")
			}
			return data, header.Filename, nil
		}
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		return nil, "", errors.New("failed to read request body")
	}
	return data, "", nil
}
