package leadhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leadboard/lead-dashboard/internal/backend"
	"github.com/leadboard/lead-dashboard/internal/i18n"
	"github.com/leadboard/lead-dashboard/internal/leads"
	"github.com/leadboard/lead-dashboard/internal/leads/export"
	"github.com/leadboard/lead-dashboard/internal/leads/svg"
	"github.com/leadboard/lead-dashboard/internal/leads/ui"
	"github.com/leadboard/lead-dashboard/internal/platform/httpx"
	"github.com/leadboard/lead-dashboard/internal/view"
)

const (
	defaultFetchLimit      = 100
	defaultUploadMaxMemory = 32 << 20
	defaultUploadRateLimit = 10

	scoreColor         = "#8884d8"
	stageColor         = "rgba(255, 99, 132, 0.6)"
	stageBorderColor   = "rgba(255, 99, 132, 1)"
	activityColor      = "rgba(75, 192, 192, 1)"
	stageTitle         = "Lead Conversion"
	sourceTitle        = "Lead Source"
	activityTitle      = "Lead Activity"
	activityChartTitle = "Lead Activity Over Time"
)

// emptyScoring is what the scoring page shows before any result arrives.
const emptyScoring = "[]"

// Backend is the lead service contract used by the handler.
type Backend interface {
	FetchLeads(ctx context.Context, limit int) (leads.Collection, error)
	ScoreAllLeads(ctx context.Context) (json.RawMessage, error)
	Upload(ctx context.Context, filename string, content io.Reader) (backend.UploadResult, error)
}

// Observer receives dashboard level events, typically the metrics registry.
type Observer interface {
	ObserveUpload(result string)
	ObserveLeadsFetched(n int)
}

// Config tunes the handler.
type Config struct {
	FetchLimit      int
	UploadMaxMemory int64
	UploadRateLimit int
}

func (c Config) withDefaults() Config {
	if c.FetchLimit <= 0 {
		c.FetchLimit = defaultFetchLimit
	}
	if c.UploadMaxMemory <= 0 {
		c.UploadMaxMemory = defaultUploadMaxMemory
	}
	if c.UploadRateLimit <= 0 {
		c.UploadRateLimit = defaultUploadRateLimit
	}
	return c
}

// Handler serves the lead dashboard pages.
type Handler struct {
	logger    *slog.Logger
	backend   Backend
	templates *view.Engine
	bar       ui.BarRenderer
	line      ui.LineRenderer
	pie       ui.PieRenderer
	observer  Observer
	cfg       Config
	bufPool   sync.Pool
}

// NewHandler constructs the lead dashboard HTTP handler.
func NewHandler(logger *slog.Logger, backend Backend, templates *view.Engine, bar ui.BarRenderer, line ui.LineRenderer, pie ui.PieRenderer, cfg Config) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		backend:   backend,
		templates: templates,
		bar:       bar,
		line:      line,
		pie:       pie,
		cfg:       cfg.withDefaults(),
	}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithObserver installs an event observer.
func (h *Handler) WithObserver(o Observer) *Handler {
	h.observer = o
	return h
}

// mount performs the fetch a page does when it is opened. Failures are
// logged and leave the state empty.
func (h *Handler) mount(r *http.Request) leads.Collection {
	var state leads.ViewState
	err := state.Refresh(r.Context(), func(ctx context.Context) (leads.Collection, error) {
		return h.backend.FetchLeads(ctx, h.cfg.FetchLimit)
	})
	if err != nil {
		h.logError(r, "fetch leads", err)
		return state.Leads
	}
	if h.observer != nil {
		h.observer.ObserveLeadsFetched(len(state.Leads))
	}
	return state.Leads
}

// fetchStrict is used by downloads and the JSON API, which report
// backend failures instead of rendering placeholders.
func (h *Handler) fetchStrict(r *http.Request) (leads.Collection, error) {
	collection, err := h.backend.FetchLeads(r.Context(), h.cfg.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch leads: %v: %w", err, httpx.ErrUpstream)
	}
	if h.observer != nil {
		h.observer.ObserveLeadsFetched(len(collection))
	}
	return collection, nil
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/charts", http.StatusFound)
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	p := i18n.FromRequest(r)
	collection := h.mount(r)

	charts, err := h.buildCharts(r.Context(), p, collection)
	if err != nil {
		h.handleServerError(w, r, "render charts", err)
		return
	}
	vm := ui.ChartsViewModel{
		Heading:  p.T(i18n.KeyDashboardTitle),
		Charts:   charts,
		Table:    ui.ToTable(leads.BuildGrid(collection)),
		Messages: messages(p),
		Count:    len(collection),
	}
	h.render(w, r, "pages/charts.html", p, p.T(i18n.KeyDashboardTitle), vm)
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	p := i18n.FromRequest(r)
	collection := h.mount(r)
	vm := ui.TableViewModel{
		Table:    ui.ToTable(leads.BuildGrid(collection)),
		Messages: messages(p),
		Count:    len(collection),
	}
	h.render(w, r, "pages/table.html", p, p.T(i18n.KeyNavTable), vm)
}

func (h *Handler) handleScoring(w http.ResponseWriter, r *http.Request) {
	p := i18n.FromRequest(r)
	vm := ui.ScoringViewModel{Heading: p.T(i18n.KeyScoringTitle), Pretty: emptyScoring}

	raw, err := h.backend.ScoreAllLeads(r.Context())
	switch {
	case err != nil:
		h.logError(r, "fetch scores", err)
	case r.Context().Err() != nil:
		h.logError(r, "fetch scores", r.Context().Err())
	default:
		vm.Pretty = prettyJSON(raw)
	}
	h.render(w, r, "pages/scoring.html", p, p.T(i18n.KeyNavScoring), vm)
}

func (h *Handler) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	p := i18n.FromRequest(r)
	h.render(w, r, "pages/upload.html", p, p.T(i18n.KeyNavUpload), h.uploadView(p, ""))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	p := i18n.FromRequest(r)
	message := h.forwardUpload(r, p)
	h.render(w, r, "pages/upload.html", p, p.T(i18n.KeyNavUpload), h.uploadView(p, message))
}

// forwardUpload sends the submitted file to the lead service and returns
// the status line shown under the form.
func (h *Handler) forwardUpload(r *http.Request, p *i18n.Printer) string {
	if err := r.ParseMultipartForm(h.cfg.UploadMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.logError(r, "parse upload form", err)
		h.observeUpload("error")
		return p.T(i18n.KeyUploadFailed)
	}
	if r.MultipartForm != nil {
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
	}

	file, header, err := r.FormFile(backend.UploadField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			h.logError(r, "read upload file", err)
		}
		h.observeUpload("no_file")
		return p.T(i18n.KeySelectFile)
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := h.backend.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, backend.ErrNoFile) {
			h.observeUpload("no_file")
			return p.T(i18n.KeySelectFile)
		}
		h.logError(r, "upload file", err, slog.String("filename", header.Filename))
		h.observeUpload("error")
		return p.T(i18n.KeyUploadFailed)
	}
	h.logger.Info("file uploaded",
		slog.String("filename", header.Filename),
		slog.String("status", result.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.observeUpload("ok")
	return p.T(i18n.KeyUploadOK, result.Status)
}

func (h *Handler) uploadView(p *i18n.Printer, message string) ui.UploadViewModel {
	return ui.UploadViewModel{
		Heading: p.T(i18n.KeyUploadTitle),
		Button:  p.T(i18n.KeyUploadButton),
		Message: message,
		Field:   backend.UploadField,
	}
}

// handleChartDownload serves /charts/{kind}.png and /charts/{kind}.csv.
func (h *Handler) handleChartDownload(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	kind := ui.ChartKind(strings.TrimSuffix(file, ext))
	if !knownKind(kind) || (ext != ".png" && ext != ".csv") {
		httpx.RespondError(w, fmt.Errorf("chart download %q: %w", file, httpx.ErrNotFound))
		return
	}
	collection, err := h.fetchStrict(r)
	if err != nil {
		h.logError(r, "fetch leads", err)
		httpx.RespondError(w, err)
		return
	}

	buf := h.getBuffer()
	defer h.putBuffer(buf)

	p := i18n.FromRequest(r)
	contentType := "image/png"
	if ext == ".csv" {
		contentType = "text/csv; charset=utf-8"
		err = writeChartCSV(buf, kind, collection)
	} else {
		err = writeChartPNG(buf, kind, p.T(i18n.KeyScoreTitle), collection)
	}
	if errors.Is(err, export.ErrNoData) {
		httpx.RespondError(w, fmt.Errorf("chart %q has no data: %w", kind, httpx.ErrNotFound))
		return
	}
	if err != nil {
		h.handleServerError(w, r, "render chart download", err)
		return
	}
	httpx.Attachment(w, contentType, "lead-"+file)
	if _, err := buf.WriteTo(w); err != nil {
		h.logError(r, "stream chart download", err)
	}
}

func writeChartPNG(w io.Writer, kind ui.ChartKind, scoreTitle string, collection leads.Collection) error {
	switch kind {
	case ui.ChartScore:
		return export.RenderScorePNG(w, scoreTitle, leads.ScoreSeries(collection))
	case ui.ChartStage:
		return export.RenderFrequencyBarPNG(w, stageTitle, leads.StageFrequency(collection))
	case ui.ChartSource:
		return export.RenderFrequencyPiePNG(w, sourceTitle, leads.SourceFrequency(collection))
	case ui.ChartActivity:
		return export.RenderFrequencyLinePNG(w, activityChartTitle, leads.ActivityFrequency(collection))
	}
	return fmt.Errorf("unknown chart %q", kind)
}

func writeChartCSV(w io.Writer, kind ui.ChartKind, collection leads.Collection) error {
	switch kind {
	case ui.ChartScore:
		return export.WriteScoreCSV(w, leads.ScoreSeries(collection))
	case ui.ChartStage:
		return export.WriteFrequencyCSV(w, "Lead_Stage", leads.StageFrequency(collection))
	case ui.ChartSource:
		return export.WriteFrequencyCSV(w, "Lead_Source", leads.SourceFrequency(collection))
	case ui.ChartActivity:
		return export.WriteFrequencyCSV(w, "Last_Activity", leads.ActivityFrequency(collection))
	}
	return fmt.Errorf("unknown chart %q", kind)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	collection, err := h.fetchStrict(r)
	if err != nil {
		h.logError(r, "fetch leads", err)
		httpx.RespondError(w, err)
		return
	}
	buf := h.getBuffer()
	defer h.putBuffer(buf)

	if err := export.WriteLeadsCSV(buf, collection); err != nil {
		h.handleServerError(w, r, "write leads csv", err)
		return
	}
	httpx.Attachment(w, "text/csv; charset=utf-8", "leads.csv")
	if _, err := buf.WriteTo(w); err != nil {
		h.logError(r, "stream csv", err)
	}
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	collection, err := h.fetchStrict(r)
	if err != nil {
		h.logError(r, "fetch leads", err)
		httpx.RespondError(w, err)
		return
	}
	buf := h.getBuffer()
	defer h.putBuffer(buf)

	if err := export.WriteLeadsXLSX(buf, collection); err != nil {
		h.handleServerError(w, r, "write leads xlsx", err)
		return
	}
	httpx.Attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "leads.xlsx")
	if _, err := buf.WriteTo(w); err != nil {
		h.logError(r, "stream xlsx", err)
	}
}

// Summary is the JSON form of the dashboard aggregations.
type Summary struct {
	Count      int                `json:"count"`
	Scores     []leads.ScorePoint `json:"scores"`
	Sources    []leads.Bucket     `json:"sources"`
	Stages     []leads.Bucket     `json:"stages"`
	Activities []leads.Bucket     `json:"activities"`
}

// Summarize computes every aggregation of a collection.
func Summarize(collection leads.Collection) Summary {
	return Summary{
		Count:      len(collection),
		Scores:     leads.ScoreSeries(collection),
		Sources:    leads.SourceFrequency(collection).Buckets(),
		Stages:     leads.StageFrequency(collection).Buckets(),
		Activities: leads.ActivityFrequency(collection).Buckets(),
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	collection, err := h.fetchStrict(r)
	if err != nil {
		h.logError(r, "fetch leads", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Summarize(collection))
}

// buildCharts renders the four charts concurrently. An empty collection
// yields charts without SVG so the page shows its loading placeholders.
func (h *Handler) buildCharts(ctx context.Context, p *i18n.Printer, collection leads.Collection) ([]ui.Chart, error) {
	charts := []ui.Chart{
		{Kind: ui.ChartScore, Title: p.T(i18n.KeyScoreTitle)},
		{Kind: ui.ChartStage, Title: stageTitle},
		{Kind: ui.ChartSource, Title: sourceTitle},
		{Kind: ui.ChartActivity, Title: activityTitle},
	}
	for i := range charts {
		charts[i].PNGPath = "/charts/" + string(charts[i].Kind) + ".png"
		charts[i].CSVPath = "/charts/" + string(charts[i].Kind) + ".csv"
	}
	if len(collection) == 0 {
		return charts, nil
	}
	if h.bar == nil || h.line == nil || h.pie == nil {
		return nil, fmt.Errorf("svg renderer missing")
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		labels, values := leads.ScoreLabels(leads.ScoreSeries(collection))
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.BarOpts{
			Title:       charts[0].Title,
			Description: "Lead_Score per lead",
			SeriesLabel: "score",
			Color:       scoreColor,
		})
		charts[0].SVG = out
		return err
	})
	g.Go(func() error {
		freq := leads.StageFrequency(collection)
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, freq.Series(), freq.Labels(), svg.BarOpts{
			Title:       stageTitle,
			Description: "Leads per stage",
			SeriesLabel: stageTitle,
			Color:       stageColor,
			BorderColor: stageBorderColor,
			ShowLegend:  true,
		})
		charts[1].SVG = out
		return err
	})
	g.Go(func() error {
		freq := leads.SourceFrequency(collection)
		out, err := h.pie.Pie(svg.DefaultWidth, svg.DefaultHeight, freq.Series(), freq.Labels(), svg.PieOpts{
			Title:       sourceTitle,
			Description: "Leads per source",
		})
		charts[2].SVG = out
		return err
	})
	g.Go(func() error {
		freq := leads.ActivityFrequency(collection)
		out, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, freq.Series(), freq.Labels(), svg.LineOpts{
			Title:       activityChartTitle,
			Description: "Leads per last activity",
			SeriesLabel: activityTitle,
			StrokeColor: activityColor,
			ShowDots:    true,
			ShowTitle:   true,
			ShowLegend:  true,
		})
		charts[3].SVG = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return charts, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, p *i18n.Printer, title string, data any) {
	viewData := view.TemplateData{
		Title:       title,
		Lang:        p.Lang(),
		CurrentPath: r.URL.Path,
		Nav:         view.Navigation(p),
		Data:        data,
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.handleServerError(w, r, "render template", err)
	}
}

func (h *Handler) observeUpload(result string) {
	if h.observer != nil {
		h.observer.ObserveUpload(result)
	}
}

func (h *Handler) getBuffer() *bytes.Buffer {
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (h *Handler) putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	h.bufPool.Put(buf)
}

func (h *Handler) handleServerError(w http.ResponseWriter, r *http.Request, context string, err error) {
	h.logError(r, context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(r *http.Request, context string, err error, attrs ...any) {
	args := append([]any{
		slog.Any("error", err),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}, attrs...)
	h.logger.Error(context, args...)
}

func messages(p *i18n.Printer) ui.Messages {
	return ui.Messages{
		LoadingData:  p.T(i18n.KeyLoadingData),
		LoadingChart: p.T(i18n.KeyLoadingChart),
	}
}

func knownKind(kind ui.ChartKind) bool {
	for _, k := range ui.ChartKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// prettyJSON indents a JSON document by two spaces, falling back to the
// raw text when it does not parse.
func prettyJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return emptyScoring
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
