package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func serve(h http.Handler, method, path string) {
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/shops/{shop}/page/{n}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/scrape/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	pageRoute := httpRequestsTotal.WithLabelValues(http.MethodGet, "/shops/{shop}/page/{n}", "200")
	forbidden := httpRequestsTotal.WithLabelValues(http.MethodPost, "/scrape/", "403")
	unmatched := httpRequestsTotal.WithLabelValues(http.MethodGet, UnmatchedRoute, "404")
	beforePage := testutil.ToFloat64(pageRoute)
	beforeForbidden := testutil.ToFloat64(forbidden)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	serve(r, http.MethodGet, "/shops/dentalstall/page/1")
	serve(r, http.MethodGet, "/shops/dentalstall/page/2")
	serve(r, http.MethodPost, "/scrape/")
	serve(r, http.MethodGet, "/no-such-route")

	assert.Equal(t, beforePage+2, testutil.ToFloat64(pageRoute), "both page URLs share one route series")
	assert.Equal(t, beforeForbidden+1, testutil.ToFloat64(forbidden))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
	assert.Positive(t, testutil.CollectAndCount(httpRequestDurationSeconds))
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	assert.Equal(t, UnmatchedRoute, routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}
