package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Veraticus/finflow/internal/common"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func staticTokens(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func TestClient_Do_AttachesBearerOnlyWhenAuthenticated(t *testing.T) {
	var gotAuth []string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	})

	c := NewClient(srv.URL, staticTokens("abc"))
	ctx := context.Background()

	require.NoError(t, c.Do(ctx, http.MethodGet, "/a", nil, nil, true))
	require.NoError(t, c.Do(ctx, http.MethodGet, "/b", nil, nil, false))

	assert.Equal(t, []string{"Bearer abc", ""}, gotAuth)
}

func TestClient_Do_NoContentIsEmptySuccess(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	out := map[string]string{"untouched": "yes"}
	err := NewClient(srv.URL, staticTokens("abc")).Do(context.Background(), http.MethodDelete, "/x", nil, &out, true)

	require.NoError(t, err)
	assert.Equal(t, "yes", out["untouched"])
}

func TestClient_Do_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		status      int
		wantNotFnd  bool
	}{
		{
			name:        "message from body",
			status:      http.StatusBadRequest,
			body:        `{"message":"Categoria já existe"}`,
			wantMessage: "Categoria já existe",
		},
		{
			name:        "empty body falls back to status code",
			status:      http.StatusInternalServerError,
			wantMessage: "error processing request (HTTP 500)",
		},
		{
			name:        "non json body falls back",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			wantMessage: "error processing request (HTTP 502)",
		},
		{
			name:        "not found matches sentinel",
			status:      http.StatusNotFound,
			body:        `{"message":"Receita não encontrada"}`,
			wantMessage: "Receita não encontrada",
			wantNotFnd:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := NewClient(srv.URL, staticTokens("abc")).Do(context.Background(), http.MethodGet, "/x", nil, nil, true)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, tt.wantNotFnd, errors.Is(err, common.ErrNotFound))
		})
	}
}

func TestClient_Do_WithoutTokenSource(t *testing.T) {
	called := false
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	err := NewClient(srv.URL, nil).Do(context.Background(), http.MethodGet, "/x", nil, nil, true)

	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.False(t, called)
}

func TestClient_Do_EncodesBodyAndDecodesResponse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ping", in["msg"])
		_, _ = w.Write([]byte(`{"msg":"pong"}`))
	})

	var out struct {
		Msg string `json:"msg"`
	}
	err := NewClient(srv.URL+"/", nil).Do(context.Background(), http.MethodPost, "/echo", map[string]string{"msg": "ping"}, &out, false)

	require.NoError(t, err)
	assert.Equal(t, "pong", out.Msg)
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	err := NewClient(srv.URL, nil, WithTimeout(20*time.Millisecond)).Do(context.Background(), http.MethodGet, "/slow", nil, nil, false)
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_BaseURLTrimsTrailingSlash(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/api", NewClient("http://localhost:8080/api/", nil).BaseURL())
}
