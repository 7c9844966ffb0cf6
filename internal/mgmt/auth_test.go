package mgmt

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiresIn).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuth_ValidToken(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-123", time.Hour))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_MissingHeader(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_WrongScheme(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ExpiredToken(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-123", -time.Hour))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_WrongSecret(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-123", time.Hour))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_TokenWithoutSubject(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/v1/automation/status", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ProbesOpenWithoutToken(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req, _ := http.NewRequest("GET", path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAuth_SubjectScopesSessions(t *testing.T) {
	app := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	// Alice starts a session.
	req, _ := http.NewRequest("POST", "/api/v1/automation/start", strings.NewReader(startBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "alice", time.Hour))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Bob's pause does not touch Alice's session.
	req, _ = http.NewRequest("POST", "/api/v1/automation/pause", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "bob", time.Hour))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
