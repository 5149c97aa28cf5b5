package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Pie renders a pie chart with a legend listing each slice and its value.
func Pie(width, height int, values []float64, labels []string, opts PieOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	total := 0.0
	for _, v := range values {
		if v < 0 {
			return "", fmt.Errorf("svg: pie values must be non-negative")
		}
		total += v
	}
	if almostEqual(total, 0) {
		return "", fmt.Errorf("svg: pie requires a non-zero total")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	colors := opts.Colors
	if len(colors) == 0 {
		colors = PaletteFill
	}
	borders := opts.Borders
	if len(borders) == 0 {
		borders = PaletteBorder
	}
	textColor := fallback(opts.TextColor, "#475569")

	legendWidth := float64(width) * 0.35
	radius := math.Min(float64(width)-legendWidth, float64(height))/2 - 8
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cx := (float64(width)-legendWidth)/2 + 4
	cy := float64(height) / 2

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share per category"))))

	angle := -math.Pi / 2
	for i, v := range values {
		if v <= 0 {
			continue
		}
		fill := colors[i%len(colors)]
		stroke := borders[i%len(borders)]
		tip := fmt.Sprintf("<title>%s: %s</title>", template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(v)))
		sweep := v / total * 2 * math.Pi
		if almostEqual(sweep, 2*math.Pi) {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\">%s</circle>", cx, cy, radius, fill, stroke, tip))
			angle += sweep
			continue
		}
		x1 := cx + radius*math.Cos(angle)
		y1 := cy + radius*math.Sin(angle)
		angle += sweep
		x2 := cx + radius*math.Cos(angle)
		y2 := cy + radius*math.Sin(angle)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		b.WriteString(fmt.Sprintf("<path d=\"M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\">%s</path>",
			cx, cy, x1, y1, radius, radius, large, x2, y2, fill, stroke, tip))
	}

	legendX := float64(width) - legendWidth + 8
	rowHeight := 16.0
	legendY := cy - rowHeight*float64(len(labels))/2 + rowHeight/2
	if legendY < 14 {
		legendY = 14
	}
	for i, label := range labels {
		y := legendY + float64(i)*rowHeight
		if y > float64(height)-4 {
			break
		}
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\" stroke=\"%s\"></rect>", legendX, y-9, colors[i%len(colors)], borders[i%len(borders)]))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s (%s)</text>", legendX+16, y, textColor, template.HTMLEscapeString(label), formatTick(values[i])))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
