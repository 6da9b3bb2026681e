package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_NestedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteError(rec, http.StatusConflict, "IMPORT_ALREADY_RUNNING", "import is already executing", map[string]string{
		"phase": "executing",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "IMPORT_ALREADY_RUNNING", envelope.Error.Code)
	assert.Equal(t, "import is already executing", envelope.Error.Message)
	assert.Equal(t, "executing", envelope.Error.Meta["phase"])
}

func TestWriteError_EmptyMessageUsesStatusText(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, http.StatusNotFound, "NOT_FOUND", "", nil))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusText(http.StatusNotFound), envelope.Error.Message)
	assert.Nil(t, envelope.Error.Meta)
}

func TestWriteJSON_NilPayloadWritesHeadersOnly(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusNoContent, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
