package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
)

func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/u1/authorization", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req authorizationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Kinds, len(health.AllKinds()))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"granted": true}`))
	})
	mux.HandleFunc("/users/u1/samples/heartRate/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quantity":{"value":1.2,"unit":"count/s"},"start":"2024-03-01T08:00:00Z","end":"2024-03-01T08:01:00Z"}`))
	})
	mux.HandleFunc("/users/u1/samples/stepCount/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/users/u1/samples/bloodGlucose/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	mux.HandleFunc("/users/u1/characteristics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bloodType":"AB-","biologicalSex":"Male","dateOfBirth":"1985-11-02T00:00:00Z"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Provider(t *testing.T) {
	srv := newGateway(t)
	p := NewHTTP(srv.URL+"/", internal.NewNopLogger()).For("u1")
	ctx := context.Background()

	granted, err := p.RequestAuthorization(ctx, health.AllKinds())
	require.NoError(t, err)
	assert.True(t, granted)

	s, err := p.QueryLatest(ctx, health.KindHeartRate)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, health.KindHeartRate, s.Kind)
	assert.Equal(t, health.Unit("count/s"), s.Quantity.Unit)
	assert.InDelta(t, 1.2, s.Quantity.Value, 1e-9)

	s, err = p.QueryLatest(ctx, health.KindStepCount)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = p.QueryLatest(ctx, health.KindHeight)
	require.NoError(t, err, "404 means no sample")
	assert.Nil(t, s)

	_, err = p.QueryLatest(ctx, health.KindBloodGlucose)
	assert.Error(t, err)

	bt, err := p.BloodType(ctx)
	require.NoError(t, err)
	assert.Equal(t, internal.BloodTypeABNegative, bt)
	sex, err := p.BiologicalSex(ctx)
	require.NoError(t, err)
	assert.Equal(t, internal.BiologicalSexMale, sex)
	dob, err := p.DateOfBirth(ctx)
	require.NoError(t, err)
	require.NotNil(t, dob)
	assert.Equal(t, 1985, dob.Year())
}

func TestHTTP_UnknownUserCharacteristicsFail(t *testing.T) {
	srv := newGateway(t)
	p := NewHTTP(srv.URL, internal.NewNopLogger()).For("u2")

	_, err := p.BloodType(context.Background())
	assert.ErrorIs(t, err, ErrUnknownUser)
}

// newDroppingGateway accepts every request and closes the connection without
// answering.
func newDroppingGateway(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if assert.NoError(t, err) {
			conn.Close()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_FailedCallIsAttemptedOnce(t *testing.T) {
	var hits int32
	srv := newDroppingGateway(t, &hits)
	p := NewHTTP(srv.URL, internal.NewNopLogger()).For("u1")

	_, err := p.QueryLatest(context.Background(), health.KindHeartRate)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	atomic.StoreInt32(&hits, 0)
	granted, err := p.RequestAuthorization(context.Background(), health.AllKinds())
	assert.Error(t, err)
	assert.False(t, granted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	atomic.StoreInt32(&hits, 0)
	_, err = p.BloodType(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTP_ClientLogsThroughLogger(t *testing.T) {
	var hits int32
	srv := newDroppingGateway(t, &hits)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stderr := os.Stderr
	os.Stderr = w
	func() {
		defer func() { os.Stderr = stderr }()
		p := NewHTTP(srv.URL, internal.NewNopLogger()).For("u1")
		_, _ = p.QueryLatest(context.Background(), health.KindHeartRate)
		_, _ = p.RequestAuthorization(context.Background(), health.AllKinds())
	}()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, string(out))
}
