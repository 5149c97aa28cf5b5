// Package i18n localises the short user-facing messages of the dashboard.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	KeySelectFile     = "upload.select_file"
	KeyUploadOK       = "upload.ok"
	KeyUploadFailed   = "upload.failed"
	KeyLoadingData    = "table.loading"
	KeyLoadingChart   = "chart.loading"
	KeyDashboardTitle = "dashboard.title"
	KeyScoreTitle     = "chart.score.title"
	KeyScoringTitle   = "scoring.title"
	KeyUploadTitle    = "upload.title"
	KeyUploadButton   = "upload.button"
	KeyNavCharts      = "nav.charts"
	KeyNavTable       = "nav.table"
	KeyNavScoring     = "nav.scoring"
	KeyNavUpload      = "nav.upload"
)

// Supported languages; the first entry is the fallback.
var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.Spanish: {
		KeySelectFile:     "Por favor selecciona un archivo.",
		KeyUploadOK:       "✅ %s",
		KeyUploadFailed:   "❌ Error al subir el archivo",
		KeyLoadingData:    "Cargando datos...",
		KeyLoadingChart:   "Cargando gráfico...",
		KeyDashboardTitle: "Dashboard de Leads",
		KeyScoreTitle:     "Puntuación de Leads",
		KeyScoringTitle:   "🧠 Resultados de Scoring",
		KeyUploadTitle:    "Subir archivo a snowflake",
		KeyUploadButton:   "Subir",
		KeyNavCharts:      "📊 Gráficos",
		KeyNavTable:       "📋 Tabla",
		KeyNavScoring:     "🧠 Scoring",
		KeyNavUpload:      "⬆️ Subir Archivos",
	},
	language.English: {
		KeySelectFile:     "Please select a file.",
		KeyUploadOK:       "✅ %s",
		KeyUploadFailed:   "❌ Error uploading the file",
		KeyLoadingData:    "Loading data...",
		KeyLoadingChart:   "Loading chart...",
		KeyDashboardTitle: "Leads Dashboard",
		KeyScoreTitle:     "Lead Scores",
		KeyScoringTitle:   "🧠 Scoring Results",
		KeyUploadTitle:    "Upload file to snowflake",
		KeyUploadButton:   "Upload",
		KeyNavCharts:      "📊 Charts",
		KeyNavTable:       "📋 Table",
		KeyNavScoring:     "🧠 Scoring",
		KeyNavUpload:      "⬆️ Upload Files",
	},
}

func init() {
	for tag, entries := range catalog {
		for key, msg := range entries {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Match picks the best supported language for an Accept-Language value.
func Match(acceptLanguage string) language.Tag {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return supported[0]
}

// Printer formats localised messages for one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a Printer for tag.
func NewPrinter(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag)}
}

// FromRequest returns a Printer for the request's Accept-Language header.
func FromRequest(r *http.Request) *Printer {
	return NewPrinter(Match(r.Header.Get("Accept-Language")))
}

// T formats the message stored under key.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Lang returns the BCP 47 tag used by the printer.
func (p *Printer) Lang() string {
	return p.tag.String()
}
