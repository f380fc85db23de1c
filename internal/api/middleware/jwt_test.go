package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "auth.example",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func newRouter(cfg JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthWithConfig(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, "%s/%s", c.GetString("user_id"), c.GetString("role"))
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret, Issuer: "auth.example"}
	r := newRouter(cfg)

	admin := validClaims("u-2")
	admin.AppMetadata = map[string]any{"role": "admin"}
	expired := validClaims("u-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	foreign := validClaims("u-1")
	foreign.Issuer = "elsewhere"

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"header", "Bearer " + sign(t, validClaims("u-1"), jwt.SigningMethodHS256, []byte(testSecret)), "", http.StatusOK, "u-1/user"},
		{"query", "", sign(t, validClaims("u-1"), jwt.SigningMethodHS256, []byte(testSecret)), http.StatusOK, "u-1/user"},
		{"admin role", "Bearer " + sign(t, admin, jwt.SigningMethodHS256, []byte(testSecret)), "", http.StatusOK, "u-2/admin"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + sign(t, validClaims("u-1"), jwt.SigningMethodHS256, []byte("nope")), "", http.StatusUnauthorized, ""},
		{"wrong alg", "Bearer " + sign(t, validClaims("u-1"), jwt.SigningMethodHS512, []byte(testSecret)), "", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, expired, jwt.SigningMethodHS256, []byte(testSecret)), "", http.StatusUnauthorized, ""},
		{"issuer", "Bearer " + sign(t, foreign, jwt.SigningMethodHS256, []byte(testSecret)), "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?access_token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestJWTAuthWithoutSecret(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(JWTConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(JWTConfig{Secret: testSecret}, RequireAdmin())

	user := sign(t, validClaims("u-1"), jwt.SigningMethodHS256, []byte(testSecret))
	admin := validClaims("u-2")
	admin.AppMetadata = map[string]any{"role": "Admin"}

	for tok, want := range map[string]int{
		user: http.StatusForbidden,
		sign(t, admin, jwt.SigningMethodHS256, []byte(testSecret)): http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("status = %d, want %d", w.Code, want)
		}
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scenarios", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scenarios", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
