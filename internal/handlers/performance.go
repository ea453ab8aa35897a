package handlers

import "waveify.dev/web/internal/telemetry"

// PerformanceData is the view model for the metrics dashboard.
type PerformanceData struct {
	Readings []telemetry.Reading
}

// Counts tallies readings per rating.
func (p PerformanceData) Counts() map[telemetry.Rating]int {
	out := map[telemetry.Rating]int{}
	for _, r := range p.Readings {
		out[r.Rating]++
	}
	return out
}

// BuildPerformanceData classifies a telemetry summary for display.
func BuildPerformanceData(summary map[string]telemetry.Metric) *PerformanceData {
	return &PerformanceData{Readings: telemetry.Report(summary)}
}
