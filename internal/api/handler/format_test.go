package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/formats/internal/api/handler"
	"github.com/daap14/formats/internal/format"
)

// --- Failing Repository ---

// brokenRepo fails every call, standing in for an unreachable database.
type brokenRepo struct{}

var errStorage = errors.New("connection refused")

func (brokenRepo) FindByID(_ context.Context, _ uuid.UUID) (*format.Format, error) {
	return nil, errStorage
}
func (brokenRepo) FindWhere(_ context.Context, _ format.Predicate) ([]format.Format, error) {
	return nil, errStorage
}
func (brokenRepo) FindAll(_ context.Context) ([]format.Format, error) {
	return nil, errStorage
}
func (brokenRepo) Save(_ context.Context, _ *format.Format) error {
	return errStorage
}
func (brokenRepo) UpdateByID(_ context.Context, _ uuid.UUID, _ format.UpdateFields) (int64, error) {
	return 0, errStorage
}

// --- Helpers ---

func newFormatHandler(t *testing.T, seedValues ...string) (*handler.FormatHandler, []format.Format) {
	t.Helper()
	repo := format.NewMemoryRepository()
	var seeded []format.Format
	for _, v := range seedValues {
		f := &format.Format{Value: v, Active: true}
		require.NoError(t, repo.Save(context.Background(), f))
		seeded = append(seeded, *f)
	}
	return handler.NewFormatHandler(format.NewService(repo)), seeded
}

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "response should carry an error object")
	return errObj["code"].(string)
}

// ===== POST /formats =====

func TestFormatCreate_Success(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t)
	body, _ := json.Marshal(map[string]interface{}{"value": "pdf", "active": true})

	req, w := makeChiRequest(http.MethodPost, "/formats", body, nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	env := parseEnvelope(t, w)
	assert.Nil(t, env["error"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "pdf", data["value"])
	assert.Equal(t, true, data["active"])
	_, err := uuid.Parse(data["id"].(string))
	assert.NoError(t, err)
	assert.Len(t, data, 3, "audit fields must not be exposed")
}

func TestFormatCreate_Duplicate(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t, "pdf")
	body, _ := json.Marshal(map[string]interface{}{"value": "pdf", "active": true})

	req, w := makeChiRequest(http.MethodPost, "/formats", body, nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "DUPLICATE_VALUE", errObj["code"])
	assert.Equal(t, "Format already exists", errObj["message"])
}

func TestFormatCreate_ValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty value", body: `{"value": "", "active": true}`},
		{name: "missing value", body: `{"active": true}`},
		{name: "null value", body: `{"value": null, "active": true}`},
		{name: "missing active", body: `{"value": "pdf"}`},
		{name: "null body", body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newFormatHandler(t)

			req, w := makeChiRequest(http.MethodPost, "/formats", []byte(tt.body), nil)
			h.Create(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := parseEnvelope(t, w)
			errObj := env["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
			assert.Equal(t, "Format is invalid", errObj["message"])
			assert.NotEmpty(t, errObj["details"])
		})
	}
}

func TestFormatCreate_InvalidJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: "{invalid"},
		{name: "body not an object", body: `["pdf"]`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newFormatHandler(t)

			req, w := makeChiRequest(http.MethodPost, "/formats", []byte(tt.body), nil)
			h.Create(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_JSON", errorCode(t, w))
		})
	}
}

func TestFormatCreate_WrongFieldType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{name: "value not a string", body: `{"value": 123, "active": true}`, field: "value", message: "value must be a string"},
		{name: "active not a boolean", body: `{"value": "pdf", "active": "true"}`, field: "active", message: "active must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newFormatHandler(t)

			req, w := makeChiRequest(http.MethodPost, "/formats", []byte(tt.body), nil)
			h.Create(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := parseEnvelope(t, w)
			errObj := env["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
			assert.Equal(t, "Format is invalid", errObj["message"])
			details := errObj["details"].([]interface{})
			require.Len(t, details, 1)
			assert.Equal(t, tt.field, details[0].(map[string]interface{})["field"])
			assert.Equal(t, tt.message, details[0].(map[string]interface{})["message"])
		})
	}
}

func TestFormatUpdate_WrongFieldType(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, []byte(`{"value": "pdf", "active": 1}`), map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestFormatCreate_StorageFailure(t *testing.T) {
	t.Parallel()

	h := handler.NewFormatHandler(format.NewService(brokenRepo{}))
	body, _ := json.Marshal(map[string]interface{}{"value": "pdf", "active": true})

	req, w := makeChiRequest(http.MethodPost, "/formats", body, nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}

// ===== GET /formats =====

func TestFormatList_ReturnsAll(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t, "pdf", "png")

	req, w := makeChiRequest(http.MethodGet, "/formats", nil, nil)
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "pdf", data[0].(map[string]interface{})["value"])
	assert.Equal(t, "png", data[1].(map[string]interface{})["value"])

	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
}

func TestFormatList_Empty(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t)

	req, w := makeChiRequest(http.MethodGet, "/formats", nil, nil)
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data, ok := env["data"].([]interface{})
	require.True(t, ok, "data should be an empty array, not null")
	assert.Empty(t, data)
}

func TestFormatList_StorageFailure(t *testing.T) {
	t.Parallel()

	h := handler.NewFormatHandler(format.NewService(brokenRepo{}))

	req, w := makeChiRequest(http.MethodGet, "/formats", nil, nil)
	h.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ===== GET /formats/{id} =====

func TestFormatGetByID_Success(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()

	req, w := makeChiRequest(http.MethodGet, "/formats/"+id, nil, map[string]string{"id": id})
	h.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "pdf", data["value"])
}

func TestFormatGetByID_NotFound(t *testing.T) {
	t.Parallel()

	for _, id := range []string{uuid.NewString(), "id-inexistente"} {
		h, _ := newFormatHandler(t, "pdf")

		req, w := makeChiRequest(http.MethodGet, "/formats/"+id, nil, map[string]string{"id": id})
		h.GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	}
}

func TestFormatGetByID_MissingID(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t)

	req, w := makeChiRequest(http.MethodGet, "/formats/", nil, nil)
	h.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

// ===== PATCH /formats/{id} =====

func TestFormatUpdate_Success(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()
	body, _ := json.Marshal(map[string]interface{}{"value": "txt", "active": false})

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, body, map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "txt", data["value"])
	assert.Equal(t, false, data["active"])
}

func TestFormatUpdate_SameValue(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()
	body, _ := json.Marshal(map[string]interface{}{"value": "pdf", "active": false})

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, body, map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatUpdate_Duplicate(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf", "png")
	id := seeded[1].ID.String()
	body, _ := json.Marshal(map[string]interface{}{"value": "pdf", "active": true})

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, body, map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_VALUE", errorCode(t, w))
}

func TestFormatUpdate_NotFound(t *testing.T) {
	t.Parallel()

	h, _ := newFormatHandler(t, "pdf")
	id := uuid.NewString()
	body, _ := json.Marshal(map[string]interface{}{"value": "png", "active": true})

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, body, map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestFormatUpdate_NullBody(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, []byte("null"), map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestFormatUpdate_ValidationError(t *testing.T) {
	t.Parallel()

	h, seeded := newFormatHandler(t, "pdf")
	id := seeded[0].ID.String()

	req, w := makeChiRequest(http.MethodPatch, "/formats/"+id, []byte(`{"value": "", "active": true}`), map[string]string{"id": id})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}
