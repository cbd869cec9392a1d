package httpapi

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/quadro/internal/auth"
	"github.com/thenoetrevino/quadro/internal/metrics"
	"github.com/thenoetrevino/quadro/internal/models"
)

const userIDKey = "user_id"

var errMissingToken = models.Unauthorized("missing bearer token")

// RequestLogger logs one line per request at a level chosen by status
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "http_request",
			"method", c.Request.Method,
			"path", routeOf(c),
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_id", c.GetString(userIDKey),
			"bytes", c.Writer.Size(),
		)
	}
}

// RequestMetrics counts requests by method, route and status
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// raw paths of unmatched requests would explode label cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status())
	}
}

// RequireAuth verifies the bearer token and stores the user ID in the context.
// With allowQuery the token may also come from ?token=, for websocket clients
// that cannot set headers.
func RequireAuth(tokens *auth.TokenIssuer, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" || tokens == nil {
			respondError(c, errMissingToken)
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// routeOf returns the matched route pattern, or the raw path for 404s
func routeOf(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}
