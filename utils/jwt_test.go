package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-media-gateway/config"
)

func testContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", ExtractToken(testContext(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "from-cookie", ExtractToken(testContext(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	assert.Empty(t, ExtractToken(testContext(req)))
}

func TestParseToken(t *testing.T) {
	cfg := &config.EnvConfig{}
	cfg.JWT.SecretKey = "jwt-secret"

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	token, err := ParseToken(signed, cfg)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	_, err = ParseToken(signed+"x", cfg)
	assert.Error(t, err)

	cfg.JWT.Algorithm = "HS512"
	_, err = ParseToken(signed, cfg)
	assert.Error(t, err)
}

func TestInjectClaimsToContext(t *testing.T) {
	c := testContext(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, InjectClaimsToContext(c, jwt.MapClaims{"user_id": float64(42), "permission": "admin"}))
	assert.Equal(t, "42", c.GetString("user_id"))
	assert.Equal(t, "admin", c.GetString("permission"))

	c = testContext(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, InjectClaimsToContext(c, jwt.MapClaims{"sub": "x"}))
}
