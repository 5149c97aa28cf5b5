package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Collection {
	t.Helper()
	leads, err := ParseCollection([]byte(raw))
	require.NoError(t, err)
	return leads
}

func TestSourceFrequencyScenario(t *testing.T) {
	leads := mustParse(t, `[{"Lead_Source":"Web"},{"Lead_Source":"Referral"},{"Lead_Source":"Web"},{}]`)

	freq := SourceFrequency(leads)

	assert.Equal(t, []string{"Web", "Referral", "Unknown"}, freq.Labels())
	assert.Equal(t, []int{2, 1, 1}, freq.Counts())
	assert.Equal(t, 4, freq.Total())
}

func TestFrequencyUnknownBucket(t *testing.T) {
	leads := mustParse(t, `[
		{"Lead_Stage":null,"Last_Activity":""},
		{"Lead_Stage":"Won"},
		{"Name":"x"}
	]`)

	stage := StageFrequency(leads)
	assert.Equal(t, 2, stage.Count(UnknownLabel))
	assert.Equal(t, 1, stage.Count("Won"))

	activity := ActivityFrequency(leads)
	assert.Equal(t, 3, activity.Count(UnknownLabel))
	assert.Equal(t, 1, activity.Len())
}

func TestFrequencyFalsyValuesAreUnknown(t *testing.T) {
	leads := mustParse(t, `[
		{"Lead_Source":0},
		{"Lead_Source":false},
		{"Lead_Source":0.0},
		{"Lead_Source":"0"},
		{"Lead_Source":true},
		{"Lead_Source":7}
	]`)

	freq := SourceFrequency(leads)
	assert.Equal(t, []Bucket{{UnknownLabel, 3}, {"0", 1}, {"true", 1}, {"7", 1}}, freq.Buckets())

	v, ok := leads[0].Value(FieldSource)
	assert.True(t, ok)
	assert.Equal(t, "0", v)
}

func TestFrequencyTotalsMatchLength(t *testing.T) {
	cases := []string{
		`[]`,
		`[{}]`,
		`[{"Lead_Source":"A","Lead_Stage":"B","Last_Activity":"C"},{"Lead_Source":"A"},{"Lead_Source":3}]`,
		`[{"Lead_Source":"Unknown"},{},{"Lead_Source":"unknown"}]`,
	}
	for _, raw := range cases {
		leads := mustParse(t, raw)
		for _, freq := range []Frequency{SourceFrequency(leads), StageFrequency(leads), ActivityFrequency(leads)} {
			assert.Equal(t, len(leads), freq.Total(), raw)
		}
	}
}

func TestFrequencyCountsIndependentOfOrder(t *testing.T) {
	forward := mustParse(t, `[{"Lead_Source":"Web"},{"Lead_Source":"Ads"},{},{"Lead_Source":"Web"}]`)
	reversed := make(Collection, len(forward))
	for i, lead := range forward {
		reversed[len(forward)-1-i] = lead
	}

	a := SourceFrequency(forward)
	b := SourceFrequency(reversed)

	assert.ElementsMatch(t, a.Labels(), b.Labels())
	for _, label := range a.Labels() {
		assert.Equal(t, a.Count(label), b.Count(label), label)
	}
	assert.Equal(t, []string{"Web", "Ads", "Unknown"}, a.Labels())
	assert.Equal(t, []string{"Web", "Unknown", "Ads"}, b.Labels())
}

func TestFrequencyIdempotent(t *testing.T) {
	leads := mustParse(t, `[{"Lead_Stage":"New"},{"Lead_Stage":"Lost"},{"Lead_Stage":"New"}]`)
	assert.Equal(t, StageFrequency(leads).Buckets(), StageFrequency(leads).Buckets())
	assert.Equal(t, ScoreSeries(leads), ScoreSeries(leads))
}

func TestFrequencyNeverMergesDistinctValues(t *testing.T) {
	leads := mustParse(t, `[{"Lead_Source":"web"},{"Lead_Source":"Web"},{"Lead_Source":"Web "}]`)
	freq := SourceFrequency(leads)
	assert.Equal(t, 3, freq.Len())
	assert.Equal(t, []Bucket{{"web", 1}, {"Web", 1}, {"Web ", 1}}, freq.Buckets())
}

func TestScoreSeriesScenario(t *testing.T) {
	leads := mustParse(t, `[{"Lead_Score":"85"},{"Lead_Score":"abc"},{}]`)

	series := ScoreSeries(leads)

	require.Len(t, series, 3)
	assert.Equal(t, []int{85, 0, 0}, []int{series[0].Value, series[1].Value, series[2].Value})
	assert.Equal(t, "Lead 1", series[0].Label)
	assert.Equal(t, "Lead 3", series[2].Label)
}

func TestScoreSeriesUsesName(t *testing.T) {
	leads := mustParse(t, `[{"Name":"Ada","Lead_Score":12},{"Name":"  ","Lead_Score":7.9}]`)
	series := ScoreSeries(leads)
	assert.Equal(t, []ScorePoint{{Label: "Ada", Value: 12}, {Label: "Lead 2", Value: 7}}, series)
}

func TestParseScore(t *testing.T) {
	str := func(s string) *string { return &s }
	cases := []struct {
		in   *string
		want int
	}{
		{nil, 0},
		{str(""), 0},
		{str("42"), 42},
		{str("  42"), 42},
		{str("+7"), 7},
		{str("12.9"), 12},
		{str("30points"), 30},
		{str("-5"), 0},
		{str("abc"), 0},
		{str("true"), 0},
		{str("99999999999999999999999"), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseScore(tc.in))
	}
}

func TestScoreSeriesNonNegative(t *testing.T) {
	leads := mustParse(t, `[{"Lead_Score":"-10"},{"Lead_Score":null},{"Lead_Score":[1]},{"Lead_Score":"5"}]`)
	series := ScoreSeries(leads)
	require.Len(t, series, len(leads))
	for _, p := range series {
		assert.GreaterOrEqual(t, p.Value, 0)
	}
	assert.Equal(t, 5, series[3].Value)
}

func TestScoreLabels(t *testing.T) {
	labels, values := ScoreLabels([]ScorePoint{{"a", 1}, {"b", 2}})
	assert.Equal(t, []string{"a", "b"}, labels)
	assert.Equal(t, []float64{1, 2}, values)
}
