package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintAdminToken(t *testing.T, secret, tokenType string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"role": "admin",
		"type": tokenType,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestLoginHandler(t *testing.T) {
	app := testApp(t)
	app.Config.AdminPassword = "letmein"

	r := gin.New()
	r.POST("/login", app.LoginHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"letmein"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestAdminRequired(t *testing.T) {
	app := testApp(t)

	r := gin.New()
	guarded := r.Group("/")
	guarded.Use(app.AdminRequired())
	guarded.GET("/guarded", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(mutate func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		mutate(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(func(req *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no credentials")

	token := mintAdminToken(t, app.Config.JWTSecret, "admin_auth")
	w = send(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code, "bearer header")

	w = send(func(req *http.Request) {
		q := req.URL.Query()
		q.Set("token", token)
		req.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, w.Code, "token query fallback")

	w = send(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+mintAdminToken(t, "other-secret", "admin_auth"))
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong secret")

	nonce, err := MintNonce(app.Config.JWTSecret, time.Hour)
	require.NoError(t, err)
	w = send(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+nonce)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "form nonce is not an admin token")
}
