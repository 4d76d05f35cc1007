package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
)

const testUserID = "6f1b1d2e-8c6f-4a7b-9a3e-2d5f8c1b4a6d"

func TestVerifyToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + testUserID + `","email":"afiliado@example.com"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key")

	user, err := client.VerifyToken(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID.String())
	assert.Equal(t, "afiliado@example.com", user.Email)
}

func TestVerifyToken_EmptyToken(t *testing.T) {
	client := NewAuthClient("http://unused.invalid", "anon-key")

	_, err := client.VerifyToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid JWT"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key")

	_, err := client.VerifyToken(context.Background(), "expired-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyToken_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key")

	_, err := client.VerifyToken(context.Background(), "valid-token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidToken)
	assert.Contains(t, err.Error(), "500")
}

func TestVerifyToken_MalformedUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-uuid","email":"x@example.com"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key")

	_, err := client.VerifyToken(context.Background(), "valid-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
