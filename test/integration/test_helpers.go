//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-forum/internal/app"
	"go-forum/internal/config"
	"go-forum/internal/database"
)

// noRedirectClient surfaces the 302 from /login and /register instead of
// following it.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:          "0",
		ShutdownTimeout:     time.Second,
		RequestTimeout:      5 * time.Second,
		DBDriver:            database.DriverSQLite,
		DatabaseURL:         filepath.Join(t.TempDir(), "forum.db"),
		DBMaxConns:          1,
		DBMinConns:          1,
		JWTSecret:           "integration-secret",
		JWTTTL:              time.Hour,
		BcryptCost:          4,
		RevocationCacheSize: 100,
		RateLimitRPM:        0,
		AuthRateLimitRPM:    1000,
		LogLevel:            "error",
		LogFormat:           "json",
	}
	require.NoError(t, cfg.Validate())

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

func registerAndLogin(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/register", map[string]string{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "Password123!",
		"confirmPassword": "Password123!",
	}, "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/login", map[string]string{
		"username": username,
		"password": "Password123!",
	}, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Token)

	return parsed.Token
}

func doJSON(t *testing.T, method string, url string, payload any, token string) *http.Response {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()

	envelope := struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
	}{Data: dst}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
}
