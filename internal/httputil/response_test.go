package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "Bill not found!")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Bill not found!"}`, rec.Body.String())
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Month string `json:"month"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"5"}`))
	require.NoError(t, ParseJSON(req, &dest))
	assert.Equal(t, "5", dest.Month)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"5","extra":1}`))
	assert.Error(t, ParseJSON(req, &dest))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	assert.Error(t, ParseJSON(req, &dest))
}
