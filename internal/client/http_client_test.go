package client

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmetrics/internal/config"
)

func testHTTPClient(attempts int) *HTTPClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHTTPClient(&config.Config{
		HTTPTimeout:   5 * time.Second,
		RetryAttempts: attempts,
	}, logger)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer server.Close()

	var out struct {
		Value string `json:"value"`
	}
	err := testHTTPClient(2).GetJSON(server.URL, nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Value)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetJSONClientErrorFailsFast(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := testHTTPClient(3).GetJSON(server.URL, nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error: 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "4xx must not retry")
}

func TestGetJSONExhaustsRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := testHTTPClient(2).GetJSON(server.URL, nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retry attempts failed")
	assert.Contains(t, err.Error(), "server error: 500")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestPostJSONSendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"june"}`, string(body))
		w.Write([]byte(`{"accepted":true}`))
	}))
	defer server.Close()

	var out struct {
		Accepted bool `json:"accepted"`
	}
	err := testHTTPClient(1).PostJSON(server.URL, map[string]string{"Authorization": "Bearer token"},
		map[string]string{"name": "june"}, &out)

	require.NoError(t, err)
	assert.True(t, out.Accepted)
}

func TestGetJSONBadPayloadRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Write([]byte(`{not json`))
			return
		}
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer server.Close()

	var out struct {
		Value string `json:"value"`
	}
	err := testHTTPClient(2).GetJSON(server.URL, nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Value)
}
