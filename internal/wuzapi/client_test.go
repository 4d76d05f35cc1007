package wuzapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Connected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/status", r.URL.Path)
		assert.Equal(t, "instance-token", r.Header.Get("Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"connected":true,"phone":"+5511988887777"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	status, err := client.Status(context.Background(), "instance-token")
	require.NoError(t, err)
	assert.True(t, status.Connected)
	require.NotNil(t, status.Phone)
	assert.Equal(t, "+5511988887777", *status.Phone)
}

func TestStatus_NotConnectedNullPhone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"connected":false,"phone":null}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	status, err := client.Status(context.Background(), "instance-token")
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Nil(t, status.Phone)
}

func TestStatus_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bridge down"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.Status(context.Background(), "instance-token")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "bridge down", statusErr.Body)
}

func TestLogout(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	err := client.Logout(context.Background(), "instance-token")
	require.NoError(t, err)
	assert.Equal(t, "/session/logout", path)
}

func TestQRImage_ReturnsExactBytes(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/qr/image", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	got, err := client.QRImage(context.Background(), "instance-token")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestQRImage_UpstreamFailureCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("no session"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.QRImage(context.Background(), "instance-token")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "500")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Status(ctx, "instance-token")
		require.Error(t, err)
	}

	// Breaker is open now; the next call must fail fast without hitting the server
	srv.Close()
	_, err := client.Status(ctx, "instance-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
