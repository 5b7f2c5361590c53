package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "userID"

// ServiceKeyHeader carries the shared key for service-to-service calls
const ServiceKeyHeader = "X-Service-Key"

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// ParseToken validates an HS256 token and returns the user id from the
// userId claim, falling back to sub
func ParseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	for _, key := range []string{"userId", "sub"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return fmt.Sprintf("%.0f", v), nil
		}
	}

	return "", errors.New("invalid user ID in token")
}

// AuthMiddleware creates middleware for JWT authentication
func AuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		userID, err := ParseToken(headerParts[1], secret)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// ServiceAuth creates middleware for service-to-service authentication
func ServiceAuth(serviceKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(ServiceKeyHeader)
		if provided == "" {
			logger.Warn("Missing service key", zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusUnauthorized, "Service key required")
			return
		}

		if serviceKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			logger.Warn("Invalid service key", zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusUnauthorized, "Invalid service key")
			return
		}

		c.Next()
	}
}
