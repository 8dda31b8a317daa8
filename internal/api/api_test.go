package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/auth"
	"github.com/yourname/bloomhealth/internal/config"
	"github.com/yourname/bloomhealth/internal/health"
	"github.com/yourname/bloomhealth/internal/metrics"
	"github.com/yourname/bloomhealth/internal/provider"
	"github.com/yourname/bloomhealth/internal/service"
	"github.com/yourname/bloomhealth/internal/storage"
)

type testApp struct {
	logger internal.Logger
	hub    *service.Hub
	sink   service.SampleSink
}

func (a *testApp) Logger() internal.Logger        { return a.logger }
func (a *testApp) Hub() *service.Hub              { return a.hub }
func (a *testApp) SampleSink() service.SampleSink { return a.sink }

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

type fixture struct {
	router *gin.Engine
	mem    *provider.Memory
	store  *storage.FileStore
	hub    *service.Hub
}

func setupRouter(t *testing.T, withSink bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()
	cfg := &config.Config{Env: "development", AuthToken: "MOCK-TOKEN", CORSOrigins: []string{"http://localhost:3000"}}

	mem := provider.NewMemory(logger)
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "health_data.json"), logger)
	require.NoError(t, err)
	collector := metrics.NewCollector()
	hub := service.NewHub(mem, store, logger, service.HubOptions{Recorder: collector, Observer: collector})
	t.Cleanup(func() {
		hub.Close()
		store.Close()
	})

	app := &testApp{logger: logger, hub: hub}
	if withSink {
		app.sink = mem
	}
	r := NewRouter(app, cfg, auth.NewProvider(cfg, logger), collector)
	return &fixture{router: r, mem: mem, store: store, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (f *fixture) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		agg, err := f.hub.Get("u1")
		return err == nil && agg.Status().State == health.StateIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	f := setupRouter(t, true)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, 401, env.Error.Code)
}

func TestAPI_Me(t *testing.T) {
	f := setupRouter(t, true)
	w, env := f.do(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)

	var me userView
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "u1", me.ID)
	assert.Equal(t, "DU", me.Initials)
	assert.NotContains(t, w.Body.String(), "MOCK-TOKEN")
}

func TestAPI_SessionLifecycle(t *testing.T) {
	f := setupRouter(t, true)

	w, _ := f.do(t, http.MethodGet, "/api/health/snapshot", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/samples", `{"kind":"heartRate","value":72,"unit":"count/min","end":"2024-03-01T08:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/samples", `{"kind":"stepCount","value":5000,"unit":"count","end":"2024-03-01T08:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/health/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.Meta["authorized"])
	f.waitIdle(t)

	w, env = f.do(t, http.MethodGet, "/api/health/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap internal.HealthSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 72.0, snap.HeartRate)
	assert.Equal(t, 5000, snap.StepCount)
	assert.Equal(t, internal.BloodTypeNotSet, snap.BloodType)
	assert.Equal(t, 25.5, snap.BodyMassIndex)
	assert.Equal(t, "idle", env.Meta["state"])

	w, env = f.do(t, http.MethodGet, "/api/health/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "72 bpm")

	w, env = f.do(t, http.MethodPost, "/api/health/push", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	var pushed struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pushed))
	require.NotEmpty(t, pushed.ID)
	require.Eventually(t, func() bool {
		return f.store.Count(health.DefaultCollection) == 1
	}, 2*time.Second, 5*time.Millisecond)
	rec, err := f.store.Get(context.Background(), health.DefaultCollection, pushed.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.0, rec["heartRate"])
	assert.Equal(t, "Unknown", rec["dateOfBirth"])

	w, _ = f.do(t, http.MethodPost, "/api/health/refresh", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w, _ = f.do(t, http.MethodDelete, "/api/health/session", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = f.do(t, http.MethodGet, "/api/health/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = f.do(t, http.MethodDelete, "/api/health/session", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_RefreshWithoutAuthorization(t *testing.T) {
	f := setupRouter(t, true)
	f.mem.SetAuthorization("u1", false)

	w, _ := f.do(t, http.MethodPost, "/api/health/refresh", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/health/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Meta["authorized"])

	w, env = f.do(t, http.MethodPost, "/api/health/refresh", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, 409, env.Error.Code)

	w, env = f.do(t, http.MethodGet, "/api/health/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st health.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 0, st.Cycles)
}

func TestAPI_SampleValidation(t *testing.T) {
	f := setupRouter(t, true)

	w, _ := f.do(t, http.MethodPost, "/api/samples", `{"kind":"height","value":1.8,"unit":"kg","end":"2024-03-01T08:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/samples", `{"kind":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPut, "/api/profile", `{"bloodType":"AB+","biologicalSex":"Female","dateOfBirth":"1990-05-17T00:00:00Z"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPut, "/api/profile", `{"bloodType":"Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SamplesUnsupportedByRemoteProvider(t *testing.T) {
	f := setupRouter(t, false)
	w, _ := f.do(t, http.MethodPost, "/api/samples", `{"kind":"heartRate","value":72,"unit":"count/min","end":"2024-03-01T08:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Stream(t *testing.T) {
	f := setupRouter(t, true)
	w, _ := f.do(t, http.MethodPost, "/api/health/session", "")
	require.Equal(t, http.StatusOK, w.Code)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/health/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimPrefix(line, "event:")
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimPrefix(line, "data:")
			break
		}
	}
	assert.Equal(t, "snapshot", event)
	var snap internal.HealthSnapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
}

func TestAPI_Metrics(t *testing.T) {
	f := setupRouter(t, true)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bloom_active_sessions")
}

func TestAPI_DeniedReactivationStatusMatchesMeta(t *testing.T) {
	f := setupRouter(t, true)
	w, env := f.do(t, http.MethodPost, "/api/health/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.Meta["authorized"])
	f.waitIdle(t)

	f.mem.SetAuthorization("u1", false)
	w, env = f.do(t, http.MethodPost, "/api/health/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Meta["authorized"])
	var st health.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.False(t, st.Authorized)
	assert.Equal(t, health.StateUnauthorized, st.State)
}
