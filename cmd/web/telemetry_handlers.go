package main

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"waveify.dev/web/internal/httpx"
	"waveify.dev/web/internal/telemetry"
)

const (
	maxBeaconBytes   = 4 << 10
	maxMetricNameLen = 64
)

// beacon is the payload posted by the browser's web-vitals hooks.
type beacon struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Path  string   `json:"path"`
}

// trackHandler records one metric. sendBeacon posts text/plain, so the content type is
// not checked.
func (a *app) trackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var b beacon
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBytes))
	if err := dec.Decode(&b); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_payload", "request body must be a JSON metric", http.StatusBadRequest))
		return
	}
	b.Name = strings.TrimSpace(b.Name)
	switch {
	case b.Name == "" || len(b.Name) > maxMetricNameLen:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_metric", "name is required and must be at most 64 characters", http.StatusBadRequest).
			WithDetails(map[string]any{"field": "name"}))
		return
	case b.Value == nil || math.IsNaN(*b.Value) || math.IsInf(*b.Value, 0):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_metric", "value must be a finite number", http.StatusBadRequest).
			WithDetails(map[string]any{"field": "value"}))
		return
	}
	// The request path is the beacon route itself, never the page being measured.
	page := b.Path
	if page == "" {
		page = r.Referer()
	}
	ctx = telemetry.WithPath(ctx, page)
	a.buffer.Track(ctx, b.Name, *b.Value)
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Metrics []telemetry.Reading `json:"metrics"`
}

func (a *app) summaryHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, summaryResponse{Metrics: telemetry.Report(a.buffer.Summary(r.Context()))})
}

func (a *app) clearHandler(w http.ResponseWriter, r *http.Request) {
	a.buffer.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
