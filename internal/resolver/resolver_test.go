// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package resolver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		wantCode int
	}{
		{"ok", http.StatusOK, "hello", false, 0},
		{"no content", http.StatusNoContent, "", false, 0},
		{"bad request", http.StatusBadRequest, "bad ids", true, http.StatusBadRequest},
		{"server error", http.StatusInternalServerError, "boom", true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			req, err := http.NewRequest(http.MethodGet, srv.URL+"/x", nil)
			require.NoError(t, err)

			got, err := Do(srv.Client(), "svc", req)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(got))
				return
			}

			var se *ServiceError
			require.True(t, errors.As(err, &se), "want *ServiceError, got %T", err)
			assert.Equal(t, "svc", se.Service)
			assert.Equal(t, tt.wantCode, se.StatusCode)
			assert.Equal(t, tt.body, se.Body)
			assert.Contains(t, err.Error(), "svc:")
		})
	}
}

func TestDo_TruncatesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorBody)))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = Do(srv.Client(), "svc", req)
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Len(t, se.Body, maxErrorBody)
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, err = Do(NewHTTPClient(1), "svc", req)
	require.Error(t, err)

	var se *ServiceError
	assert.False(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "failed to execute request")
}

func TestNewHTTPClient(t *testing.T) {
	assert.Equal(t, time.Duration(0), NewHTTPClient(0).Timeout)
	assert.Equal(t, 30*time.Second, NewHTTPClient(30).Timeout)
}
