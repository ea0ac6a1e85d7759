package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	md "github.com/Astemirdum/catalogue-service/pkg/middleware"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()
	secret := []byte("secret")
	valid := jwt.RegisteredClaims{Subject: "librarian", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	expired := jwt.RegisteredClaims{Subject: "librarian", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}

	tests := []struct {
		name          string
		authorization string
		expectedCode  int
	}{
		{name: "ok", authorization: "Bearer " + sign(t, jwt.SigningMethodHS256, secret, valid), expectedCode: http.StatusOK},
		{name: "no header", expectedCode: http.StatusUnauthorized},
		{name: "not bearer", authorization: "Basic dXNlcjpwYXNz", expectedCode: http.StatusUnauthorized},
		{name: "garbage", authorization: "Bearer abc.def.ghi", expectedCode: http.StatusUnauthorized},
		{name: "wrong key", authorization: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), expectedCode: http.StatusUnauthorized},
		{name: "expired", authorization: "Bearer " + sign(t, jwt.SigningMethodHS256, secret, expired), expectedCode: http.StatusUnauthorized},
		{name: "other alg", authorization: "Bearer " + sign(t, jwt.SigningMethodHS512, secret, valid), expectedCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.POST("/", func(c echo.Context) error {
				return c.String(http.StatusOK, c.Get(md.SubjectKey).(string))
			}, md.JwtAuthentication(secret, zap.NewNop()))

			r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
			if tt.authorization != "" {
				r.Header.Set(md.AuthorizationHeader, tt.authorization)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				require.Equal(t, "librarian", w.Body.String())
			}
		})
	}
}
