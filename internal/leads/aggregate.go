package leads

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ScorePoint is one bar of the score chart.
type ScorePoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Bucket is a single entry of a Frequency mapping.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Frequency counts records per category label. Labels keep the order in
// which they were first seen.
type Frequency struct {
	labels []string
	counts map[string]int
}

// Add increments the counter for label, creating it when unseen.
func (f *Frequency) Add(label string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	if _, ok := f.counts[label]; !ok {
		f.labels = append(f.labels, label)
	}
	f.counts[label]++
}

// Labels returns the bucket labels in first-seen order.
func (f Frequency) Labels() []string {
	return append([]string(nil), f.labels...)
}

// Counts returns the bucket counts aligned with Labels.
func (f Frequency) Counts() []int {
	out := make([]int, len(f.labels))
	for i, label := range f.labels {
		out[i] = f.counts[label]
	}
	return out
}

// Count returns the counter for label, zero when unseen.
func (f Frequency) Count(label string) int {
	return f.counts[label]
}

// Len returns the number of distinct buckets.
func (f Frequency) Len() int {
	return len(f.labels)
}

// Total returns the sum of all counters.
func (f Frequency) Total() int {
	total := 0
	for _, c := range f.counts {
		total += c
	}
	return total
}

// Buckets returns the mapping as an ordered slice.
func (f Frequency) Buckets() []Bucket {
	out := make([]Bucket, len(f.labels))
	for i, label := range f.labels {
		out[i] = Bucket{Label: label, Count: f.counts[label]}
	}
	return out
}

// Series returns the counts as chart values aligned with Labels.
func (f Frequency) Series() []float64 {
	out := make([]float64, len(f.labels))
	for i, label := range f.labels {
		out[i] = float64(f.counts[label])
	}
	return out
}

// Histogram scans the collection once and buckets every record under the
// label returned by pick. Blank labels fall into UnknownLabel.
func Histogram(leads Collection, pick func(Lead) *string) Frequency {
	var f Frequency
	for _, lead := range leads {
		f.Add(categoryLabel(pick(lead)))
	}
	return f
}

// SourceFrequency buckets leads by Lead_Source.
func SourceFrequency(leads Collection) Frequency {
	return Histogram(leads, func(l Lead) *string { return l.Source })
}

// StageFrequency buckets leads by Lead_Stage.
func StageFrequency(leads Collection) Frequency {
	return Histogram(leads, func(l Lead) *string { return l.Stage })
}

// ActivityFrequency buckets leads by Last_Activity.
func ActivityFrequency(leads Collection) Frequency {
	return Histogram(leads, func(l Lead) *string { return l.LastActivity })
}

func categoryLabel(value *string) string {
	if value == nil || *value == "" {
		return UnknownLabel
	}
	return *value
}

// ScoreSeries emits one point per lead, in collection order.
func ScoreSeries(leads Collection) []ScorePoint {
	out := make([]ScorePoint, 0, len(leads))
	for i, lead := range leads {
		label := fmt.Sprintf("Lead %d", i+1)
		if lead.Name != nil && strings.TrimSpace(*lead.Name) != "" {
			label = *lead.Name
		}
		out = append(out, ScorePoint{Label: label, Value: ParseScore(lead.Score)})
	}
	return out
}

// ParseScore reads the leading integer of a score value. Absent,
// unparsable, negative or out of range values yield 0.
func ParseScore(value *string) int {
	if value == nil {
		return 0
	}
	s := strings.TrimLeftFunc(*value, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ScoreLabels splits a score series into chart labels and values.
func ScoreLabels(points []ScorePoint) ([]string, []float64) {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = float64(p.Value)
	}
	return labels, values
}
