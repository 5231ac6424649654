package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefront_NotFound(t *testing.T) {
	shop := newTestShop(t)

	page := shop.get("/does-not-exist")

	assert.Equal(t, http.StatusNotFound, page.status)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(page.body), &resp))
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, "No page at /does-not-exist", resp.Message)
}

func TestStorefront_Health(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	page := shop.get("/healthz")

	assert.Equal(t, http.StatusOK, page.status)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal([]byte(page.body), &resp))
	assert.Equal(t, HealthResponse{Status: "ok", Sessions: 1}, resp)
}

func TestSendErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		statusCode     int
		expectedStatus int
	}{
		{"bad request", "invalid product id", http.StatusBadRequest, http.StatusBadRequest},
		{"server error", "Something went wrong", http.StatusInternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			sendErrorResponse(w, tt.message, tt.statusCode)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, http.StatusText(tt.statusCode), resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestStorefront_FailHidesServerErrors(t *testing.T) {
	store := &Storefront{log: logging.NewNop()}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/cart.html", nil)

	store.fail(w, r, http.StatusInternalServerError, errors.New("pq: relation \"orders\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}
