package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["success"])
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "world", data["hello"])
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteErrorTypedValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "ride_id is required").
		WithDetails(map[string]string{"ride_id": "is required"})
	WriteError(context.Background(), nil, rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, false, payload["success"])

	errBody, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(pkgerrors.CodeValidation), errBody["code"])
	assert.Equal(t, "ride_id is required", errBody["message"])
	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "is required", details["ride_id"])
}

func TestWriteErrorStateConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition canceled intent to succeeded"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeBody(t, rec)
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), errBody["code"])
	assert.Equal(t, "cannot transition canceled intent to succeeded", errBody["message"])
}

func TestWriteErrorMasksInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.New(pkgerrors.CodeInternal, "pq: relation payment_intents does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeBody(t, rec)
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, string(pkgerrors.CodeInternal), errBody["code"])
	assert.Equal(t, "internal server error", errBody["message"])
	assert.NotContains(t, rec.Body.String(), "payment_intents")
}

func TestWriteErrorUntypedFallsBackToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeBody(t, rec)
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, string(pkgerrors.CodeInternal), errBody["code"])
}

func TestWriteErrorProcessorRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, errors.New("card_declined"), "creating payment intent"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	payload := decodeBody(t, rec)
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, string(pkgerrors.CodeProcessorRejected), errBody["code"])
	assert.Equal(t, "payment processor rejected the operation", errBody["message"])
}
