// ABOUTME: Tests for request ID, access logging and panic recovery middleware
// ABOUTME: Captures log output in a buffer to assert levels and fields

package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("body"))
	})
}

func TestLoggingMiddleware_LevelFromStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusSeeOther, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logger, buf := bufferLogger()
			h := requestIDMiddleware(loggingMiddleware(statusHandler(tt.status), logger))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/item/1", nil))

			line := buf.String()
			assert.Equal(t, tt.level, gjson.Get(line, "level").String())
			assert.Equal(t, int64(tt.status), gjson.Get(line, "status").Int())
			assert.Equal(t, "/item/1", gjson.Get(line, "path").String())
			assert.Equal(t, int64(4), gjson.Get(line, "bytes").Int())
			assert.Equal(t, rec.Header().Get(RequestIDHeader), gjson.Get(line, "request_id").String())
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	logger, buf := bufferLogger()
	called := false
	h := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), logger, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.True(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", gjson.Get(buf.String(), "panic").String())
	assert.Contains(t, gjson.Get(buf.String(), "stack").String(), "goroutine")
}

func TestRecoverMiddleware_AbortHandlerPropagates(t *testing.T) {
	logger, _ := bufferLogger()
	h := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}), logger, func(w http.ResponseWriter, r *http.Request) {})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestIsAPIPath(t *testing.T) {
	assert.True(t, isAPIPath("/api"))
	assert.True(t, isAPIPath("/api/v1/user"))
	assert.False(t, isAPIPath("/apiary"))
	assert.False(t, isAPIPath("/app"))
}
