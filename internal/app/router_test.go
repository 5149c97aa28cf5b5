package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadboard/lead-dashboard/internal/backend"
	leadhttp "github.com/leadboard/lead-dashboard/internal/leads/http"
	"github.com/leadboard/lead-dashboard/internal/observability"
	"github.com/leadboard/lead-dashboard/internal/view"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }
func (s stubPinger) BaseURL() string                { return "http://leads.test" }

func testConfig() *Config {
	return &Config{AppEnv: "test", AppRequestTimeout: 0, LeadsFetchLimit: 100, GlobalRateLimit: 1000}
}

func newTestServer(t *testing.T, pinger Pinger) (*httptest.Server, *observability.Metrics) {
	t.Helper()
	leadService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case backend.PathLeads:
			_, _ = w.Write([]byte(`[{"Name":"Ada","Lead_Source":"Web","Lead_Score":"70"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(leadService.Close)

	templates, err := view.NewEngine()
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	client := backend.NewClient(leadService.URL, backend.WithObserver(metrics))
	handler := leadhttp.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), client, templates,
		BarRenderer{}, LineRenderer{}, PieRenderer{}, leadhttp.Config{FetchLimit: 100}).WithObserver(metrics)

	router := NewRouter(RouterParams{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:       testConfig(),
		LeadsHandler: handler,
		Backend:      pinger,
		Metrics:      metrics,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, metrics
}

func get(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	transport := &http.Transport{DisableCompression: true}
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
		transport.CloseIdleConnections()
	})
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Empty(t, body["backend"])
}

func TestHealthzDeep(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/healthz?deep=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	down, _ := newTestServer(t, stubPinger{err: errors.New("refused")})
	resp = get(t, down.URL+"/healthz?deep=1", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "http://leads.test", body["backend"])
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/charts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestRootRedirects(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/charts", resp.Header.Get("Location"))
}

func TestChartsPageIsCompressed(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/charts", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	html, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Ada")
	assert.Contains(t, string(html), "<svg")
}

func TestStaticAssetsAreCached(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	resp := get(t, srv.URL+"/static/css/app.css", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

func TestMetricsEndpointCountsBackendCalls(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	page := get(t, srv.URL+"/table", nil)
	_, err := io.ReadAll(page.Body)
	require.NoError(t, err)

	resp := get(t, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dashboard_backend_calls_total{endpoint="leads",outcome="ok"} 1`)
	assert.Contains(t, string(body), `dashboard_http_requests_total{code="200",route="/table"} 1`)
	assert.Contains(t, string(body), "dashboard_leads_last_fetch_count 1")
}
