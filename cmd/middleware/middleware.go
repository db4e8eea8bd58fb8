package middleware

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"clubhub/internal/service"
)

func LoggingMiddleware() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()
		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Identity extracts the caller's opaque identity from a bearer token and
// leaves it in the context. It never grants anything itself. A missing or
// bad token just means the request proceeds anonymous; role checks happen
// downstream against stored records.
func Identity(secret string) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			zlog.Logger.Debug().Err(err).Msg("rejected bearer token")
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			c.Set(service.ActorKey, sub)
		}
		c.Next()
	}
}
