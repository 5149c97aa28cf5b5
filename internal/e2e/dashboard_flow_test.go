package e2e

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadboard/lead-dashboard/internal/app"
	"github.com/leadboard/lead-dashboard/internal/backend"
	leadhttp "github.com/leadboard/lead-dashboard/internal/leads/http"
	"github.com/leadboard/lead-dashboard/internal/observability"
	"github.com/leadboard/lead-dashboard/internal/view"
)

// fakeLeadService mimics the external lead API.
type fakeLeadService struct {
	mu         sync.Mutex
	requestIDs []string
	uploads    map[string]string
	failLeads  bool
}

func (f *fakeLeadService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	fail := f.failLeads
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == backend.PathLeads:
		if fail {
			http.Error(w, "snowflake unavailable", http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("limit") != "100" {
			http.Error(w, "unexpected limit", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[
			{"Prospect_ID":"P1","Lead_Source":"Web","Lead_Score":"85","Lead_Stage":"New"},
			{"Prospect_ID":"P2","Lead_Source":"Referral","Lead_Stage":"Won","Last_Activity":"Email Opened"},
			{"Prospect_ID":"P3","Lead_Source":"Web"},
			{"Prospect_ID":"P4"}
		]`))
	case r.Method == http.MethodGet && r.URL.Path == backend.PathScores:
		_, _ = w.Write([]byte(`[{"Prospect_ID":"P1","probability":0.91}]`))
	case r.Method == http.MethodPost && r.URL.Path == backend.PathUpload:
		file, header, err := r.FormFile(backend.UploadField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		f.mu.Lock()
		f.uploads[header.Filename] = string(data)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"File uploaded and loaded","filename":"` + header.Filename + `"}`))
	default:
		http.NotFound(w, r)
	}
}

func startDashboard(t *testing.T, fake *fakeLeadService) *httptest.Server {
	t.Helper()
	leadService := httptest.NewServer(fake)
	t.Cleanup(leadService.Close)

	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	client := backend.NewClient(leadService.URL, backend.WithObserver(metrics))
	handler := leadhttp.NewHandler(logger, client, templates, app.BarRenderer{}, app.LineRenderer{}, app.PieRenderer{}, leadhttp.Config{FetchLimit: 100}).
		WithObserver(metrics)

	dashboard := httptest.NewServer(app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       &app.Config{AppEnv: "test", GlobalRateLimit: 1000},
		LeadsHandler: handler,
		Backend:      client,
		Metrics:      metrics,
	}))
	t.Cleanup(dashboard.Close)
	return dashboard
}

func fetchPage(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestDashboardFlow(t *testing.T) {
	fake := &fakeLeadService{uploads: map[string]string{}}
	dashboard := startDashboard(t, fake)

	charts := fetchPage(t, dashboard.URL+"/charts")
	assert.Equal(t, 4, strings.Count(charts, "<svg"))
	assert.Contains(t, charts, "Web (2)")
	assert.Contains(t, charts, "<td>P4</td>")

	table := fetchPage(t, dashboard.URL+"/table")
	assert.Contains(t, table, "<th>Last_Activity</th>")

	scoring := fetchPage(t, dashboard.URL+"/scoring")
	assert.Contains(t, scoring, "&#34;probability&#34;: 0.91")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Prospect_ID,Lead_Source\nP9,Web\n"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(dashboard.URL+"/upload", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "✅ File uploaded and loaded")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "Prospect_ID,Lead_Source\nP9,Web\n", fake.uploads["leads.csv"])
	for _, id := range fake.requestIDs {
		assert.NotEmpty(t, id)
	}
}

func TestDashboardSurvivesLeadServiceOutage(t *testing.T) {
	fake := &fakeLeadService{uploads: map[string]string{}, failLeads: true}
	dashboard := startDashboard(t, fake)

	charts := fetchPage(t, dashboard.URL+"/charts")
	assert.Contains(t, charts, "Cargando gráfico...")
	assert.NotContains(t, charts, "<svg")

	resp, err := http.Get(dashboard.URL + "/api/leads/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
