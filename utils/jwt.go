package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-media-gateway/config"
)

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func ParseToken(tokenString string, config *config.EnvConfig) (*jwt.Token, error) {
	secret := []byte(config.JWT.SecretKey)
	var opts []jwt.ParserOption
	if config.JWT.Algorithm != "" {
		opts = append(opts, jwt.WithValidMethods([]string{config.JWT.Algorithm}))
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, opts...)
}

// InjectClaimsToContext copies user_id (string or numeric) and permission into the gin context.
func InjectClaimsToContext(c *gin.Context, claims jwt.MapClaims) error {
	var userID string
	switch v := claims["user_id"].(type) {
	case string:
		userID = v
	case float64:
		userID = strconv.FormatInt(int64(v), 10)
	}
	if userID == "" {
		return errors.New("invalid user_id claim")
	}
	c.Set("user_id", userID)

	if permission, ok := claims["permission"].(string); ok {
		c.Set("permission", permission)
	} else {
		c.Set("permission", "")
	}
	return nil
}
