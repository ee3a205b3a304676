package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondConflict(rec, "слот больше недоступен, повторите попытку")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Conflict", body.Error)
	assert.Equal(t, "слот больше недоступен, повторите попытку", body.Message)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		SlotID int64 `json:"slotId"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slotId": 5}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, int64(5), dst.SlotID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slotId": 5, "extra": true}`))
	assert.Error(t, DecodeJSON(req, &dst))
}
