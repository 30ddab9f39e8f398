package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/items/abc-123", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	rr = httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `path="/api/items/{id}",status="418"`)
	assert.NotContains(t, body, "abc-123")
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	RecordExchange("redeem", "ok")
	RecordPointsSpent(75)
	RecordModeration("approve")
	RecordNotification("welcome", true)
	SetInconsistencies(2)
	RecordCacheLookup("miss")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	for _, name := range []string{
		"rewear_exchange_operations_total",
		"rewear_exchange_points_spent_total",
		"rewear_moderation_actions_total",
		"rewear_notify_emails_total",
		"rewear_reconcile_findings 2",
		"rewear_cache_catalog_lookups_total",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "/", canonicalPath("/"))
	assert.Equal(t, "/api/items", canonicalPath("/api/items/123/redeem"))
	assert.Equal(t, "/health", canonicalPath("/health"))
}
