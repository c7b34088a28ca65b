package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/daap14/formats/internal/api/middleware"
	"github.com/daap14/formats/internal/api/response"
)

// OpenAPIHandler serves the OpenAPI document as JSON, or as the raw YAML
// when the client asks for it in the Accept header.
type OpenAPIHandler struct {
	rawYAML  []byte
	jsonOnce sync.Once
	jsonSpec []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a handler that converts the YAML spec to JSON on first request.
func NewOpenAPIHandler(yamlSpec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec}
}

// JSON returns the converted document, converting it once.
func (h *OpenAPIHandler) JSON() ([]byte, error) {
	h.jsonOnce.Do(func() {
		h.jsonSpec, h.jsonErr = yaml.YAMLToJSON(h.rawYAML)
	})
	return h.jsonSpec, h.jsonErr
}

// ServeHTTP writes the document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "yaml") {
		writeSpec(w, "application/yaml", h.rawYAML)
		return
	}

	body, err := h.JSON()
	if err != nil {
		slog.Error("failed to convert OpenAPI spec to JSON", "error", err)
		requestID := middleware.GetRequestID(r.Context())
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to convert OpenAPI spec", requestID)
		return
	}

	writeSpec(w, "application/json", body)
}

func writeSpec(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write OpenAPI spec response", "error", err)
	}
}
