package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"waveify.dev/web/internal/observability"
	"waveify.dev/web/internal/telemetry"
)

func TestLoggerEmitsOneLinePerRequest(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	r.Use(Logger(zap.New(core)))
	r.Get("/docs/*", func(w http.ResponseWriter, r *http.Request) {
		observability.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	require.Equal(t, "/docs/nope", inside[0].ContextMap()["path"])
	require.NotEmpty(t, inside[0].ContextMap()["request_id"])

	done := logs.FilterMessage("request completed").All()
	require.Len(t, done, 1)
	require.Equal(t, zap.WarnLevel, done[0].Level)
	fields := done[0].ContextMap()
	require.EqualValues(t, 404, fields["status"])
	require.EqualValues(t, 7, fields["bytes"])
	require.Equal(t, "/docs/*", fields["route"])
}

func TestRecovererWritesJSONError(t *testing.T) {
	t.Parallel()

	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "internal_server_error", body["error"])
}

func TestPagePathStoresRequestPath(t *testing.T) {
	t.Parallel()

	var got string
	h := PagePath(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = telemetry.PathFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs/api/rest?tab=1", nil))
	require.Equal(t, "/docs/api/rest", got)
}

func TestAssetsWithCacheETag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))

	h := http.StripPrefix("/assets", AssetsWithCache(dir, false))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=604800")

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestAssetsDevModeDisablesCaching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("1"), 0o644))

	rec := httptest.NewRecorder()
	http.StripPrefix("/assets", AssetsWithCache(dir, true)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Empty(t, rec.Header().Get("ETag"))
}
