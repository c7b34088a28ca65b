package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/formats/internal/api/middleware"
	"github.com/daap14/formats/internal/api/response"
	"github.com/daap14/formats/internal/format"
)

// formatRequest is the request body for POST /formats and PATCH /formats/{id}.
type formatRequest struct {
	Value  *string `json:"value"`
	Active *bool   `json:"active"`
}

// formatResponse is the API representation of a format. Audit fields stay internal.
type formatResponse struct {
	ID     string `json:"id"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

func toFormatResponse(f *format.Format) formatResponse {
	return formatResponse{
		ID:     f.ID.String(),
		Value:  f.Value,
		Active: f.Active,
	}
}

// FormatHandler handles format CRUD endpoints.
type FormatHandler struct {
	svc *format.Service
}

// NewFormatHandler creates a new FormatHandler.
func NewFormatHandler(svc *format.Service) *FormatHandler {
	return &FormatHandler{svc: svc}
}

// decodePayload reads the request body. A JSON null body yields a nil payload.
func decodePayload(w http.ResponseWriter, r *http.Request) (*format.Payload, bool) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req *formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			fields := []format.FieldError{{Field: typeErr.Field, Message: typeMismatchMessage(typeErr.Field)}}
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Format is invalid", fields, requestID)
			return nil, false
		}
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return nil, false
	}
	if req == nil {
		return nil, true
	}
	return &format.Payload{Value: req.Value, Active: req.Active}, true
}

func typeMismatchMessage(field string) string {
	switch field {
	case "value":
		return "value must be a string"
	case "active":
		return "active must be a boolean"
	}
	return field + " has the wrong type"
}

// writeError maps service errors onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	requestID := middleware.GetRequestID(r.Context())

	var vErr *format.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Format is invalid", vErr.Fields, requestID)
	case errors.Is(err, format.ErrInvalidInput):
		response.Err(w, http.StatusBadRequest, "INVALID_INPUT", "Request is missing required input", requestID)
	case errors.Is(err, format.ErrDuplicateValue):
		response.Err(w, http.StatusBadRequest, "DUPLICATE_VALUE", "Format already exists", requestID)
	case errors.Is(err, format.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Format not found", requestID)
	default:
		slog.Error("failed to "+action, "error", err, "id", chi.URLParam(r, "id"), "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action, requestID)
	}
}

// Create handles POST /formats.
func (h *FormatHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}

	f, err := h.svc.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err, "create format")
		return
	}

	response.Success(w, http.StatusCreated, toFormatResponse(f), middleware.GetRequestID(r.Context()))
}

// List handles GET /formats.
func (h *FormatHandler) List(w http.ResponseWriter, r *http.Request) {
	formats, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err, "list formats")
		return
	}

	items := make([]formatResponse, 0, len(formats))
	for i := range formats {
		items = append(items, toFormatResponse(&formats[i]))
	}
	response.SuccessList(w, http.StatusOK, items, len(items), middleware.GetRequestID(r.Context()))
}

// GetByID handles GET /formats/{id}.
func (h *FormatHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "get format")
		return
	}

	response.Success(w, http.StatusOK, toFormatResponse(f), middleware.GetRequestID(r.Context()))
}

// Update handles PATCH /formats/{id}.
func (h *FormatHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}

	f, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err, "update format")
		return
	}

	response.Success(w, http.StatusOK, toFormatResponse(f), middleware.GetRequestID(r.Context()))
}
