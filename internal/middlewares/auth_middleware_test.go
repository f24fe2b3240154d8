package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setJWTSecretEnv(t *testing.T, secret string) {
	t.Helper()

	_ = os.Setenv("JWT_SECRET", secret)
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
	})
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/ok", func(c *gin.Context) {
		uid, _ := c.Get("userID")
		c.JSON(200, gin.H{
			"userID":       uid,
			"reached_next": true,
		})
	})
	return r
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func doReq(r *gin.Engine, token string, setCookie bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ok", nil)
	if setCookie {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingCookie_401(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	w := doReq(r, "", false)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_InvalidToken_401(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	w := doReq(r, "not-a-jwt", true)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_WrongSecret_401(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	token := signHS256(t, "other-secret", jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doReq(r, token, true)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_ExpiredToken_401(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	token := signHS256(t, "s3cret", jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	w := doReq(r, token, true)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_ValidToken_SetsUserID(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	token := signHS256(t, "s3cret", jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doReq(r, token, true)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["reached_next"] != true {
		t.Fatal("handler not reached")
	}
	if resp["userID"] != float64(42) {
		t.Fatalf("userID = %#v, want 42", resp["userID"])
	}
}

func TestAuthMiddleware_StringUserIDClaim_Accepted(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	token := signHS256(t, "s3cret", jwt.MapClaims{
		"user_id": "42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doReq(r, token, true)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_NonNumericUserIDClaim_401(t *testing.T) {
	setJWTSecretEnv(t, "s3cret")
	r := newTestRouter()

	token := signHS256(t, "s3cret", jwt.MapClaims{
		"user_id": "not-a-number",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doReq(r, token, true)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}
