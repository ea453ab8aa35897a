package handlers

import "waveify.dev/web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	BeaconURL        string // same-origin endpoint receiving web-vitals beacons
	Debug            bool
}

// AnalyticsFromConfig builds Analytics from loaded configuration.
func AnalyticsFromConfig(cfg config.AnalyticsConfig) Analytics {
	return Analytics{
		GA4MeasurementID: cfg.GA4MeasurementID,
		BeaconURL:        "/api/telemetry",
		Debug:            cfg.Debug,
	}
}
