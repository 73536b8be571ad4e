package hf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient(Config{BaseURL: url, Token: "test-token", Model: "test/model"})
	c.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	return c
}

func TestSummarize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/test/model", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "market digest", req["inputs"])

		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "a concise summary"}})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "market digest")
	require.NoError(t, err)
	require.Equal(t, "a concise summary", got)
}

func TestSummarize_RetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "Model is currently loading", "estimated_time": 0.01})
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "warmed up"}})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "digest")
	require.NoError(t, err)
	require.Equal(t, "warmed up", got)
	require.Equal(t, int32(2), calls.Load())
}

func TestSummarize_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "loading", "estimated_time": 0.01})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.MaxRetries = 1
	_, err := c.Summarize(context.Background(), "digest")
	require.ErrorContains(t, err, "model loading")
}

func TestSummarize_APIErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Authorization header is invalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summarize(context.Background(), "digest")
	require.ErrorContains(t, err, "status 401")
}

func TestSummarize_MissingToken(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Summarize(context.Background(), "digest")
	require.ErrorContains(t, err, "token not configured")
}
