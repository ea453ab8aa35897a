package telemetry

import (
	"sort"
	"strings"
)

// Rating classifies a metric value against its well-known thresholds.
type Rating string

const (
	RatingGood    Rating = "good"
	RatingWarn    Rating = "warn"
	RatingBad     Rating = "bad"
	RatingNeutral Rating = "neutral"
)

// Thresholds bound the good and poor ranges of a metric. Values at or below Good are
// good, values above Poor are bad, and anything between needs improvement.
type Thresholds struct {
	Good float64
	Poor float64
}

var vitalThresholds = map[string]Thresholds{
	"lcp":  {Good: 2500, Poor: 4000},
	"fcp":  {Good: 1800, Poor: 3000},
	"fid":  {Good: 100, Poor: 300},
	"inp":  {Good: 200, Poor: 500},
	"cls":  {Good: 0.1, Poor: 0.25},
	"ttfb": {Good: 800, Poor: 1800},
}

var vitalAliases = map[string]string{
	"largest-contentful-paint":  "lcp",
	"first-contentful-paint":    "fcp",
	"first-input-delay":         "fid",
	"interaction-to-next-paint": "inp",
	"cumulative-layout-shift":   "cls",
	"time-to-first-byte":        "ttfb",
}

func canonicalVital(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if alias, ok := vitalAliases[key]; ok {
		return alias
	}
	return key
}

// ThresholdsFor returns the thresholds for a well-known metric name.
func ThresholdsFor(name string) (Thresholds, bool) {
	t, ok := vitalThresholds[canonicalVital(name)]
	return t, ok
}

// Classify rates value for metric name. Unknown names are neutral.
func Classify(name string, value float64) Rating {
	t, ok := ThresholdsFor(name)
	if !ok {
		return RatingNeutral
	}
	switch {
	case value <= t.Good:
		return RatingGood
	case value > t.Poor:
		return RatingBad
	default:
		return RatingWarn
	}
}

// Reading is one classified summary row.
type Reading struct {
	Name   string `json:"name"`
	Metric Metric `json:"metric"`
	Rating Rating `json:"rating"`
}

// Report classifies a summary and orders it by metric name.
func Report(summary map[string]Metric) []Reading {
	out := make([]Reading, 0, len(summary))
	for name, m := range summary {
		out = append(out, Reading{Name: name, Metric: m, Rating: Classify(name, m.Value)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
