// Package httpapi exposes the board services over JSON/HTTP with gin and
// streams committed board changes over websockets
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/quadro/internal/app"
)

// Options configures the router
type Options struct {
	RateLimiter   *RateLimiter // nil disables rate limiting
	AllowedOrigin string       // websocket and CORS origin; empty allows any
	Version       string
}

// Server holds the handlers' dependencies
type Server struct {
	app       *app.App
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	version   string
	startTime time.Time
}

// NewRouter builds the gin engine with every route registered
func NewRouter(a *app.App, opts Options) *gin.Engine {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		app:       a,
		logger:    logger,
		version:   opts.Version,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if opts.AllowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == opts.AllowedOrigin
			},
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), RequestMetrics(a.Metrics), cors(opts.AllowedOrigin))

	// Health checks (no auth, no rate limiting)
	r.GET("/health", s.Health)
	r.GET("/healthz", s.Liveness)
	r.GET("/readyz", s.Readiness)
	if a.Metrics != nil {
		r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}

	limit := opts.RateLimiter.Middleware()
	requireAuth := RequireAuth(a.Tokens, false)

	authGroup := r.Group("/api/auth", limit)
	{
		authGroup.POST("/register", s.Register)
		authGroup.POST("/login", s.Login)
		authGroup.GET("/me", requireAuth, s.Me)
	}

	// Websocket clients may pass the token as a query parameter
	r.GET("/api/kanban/boards/:id/ws", RequireAuth(a.Tokens, true), s.BoardEvents)

	kanban := r.Group("/api/kanban", requireAuth, limit)
	{
		kanban.GET("/boards", s.ListBoards)
		kanban.POST("/boards", s.CreateBoard)
		kanban.GET("/boards/:id", s.GetBoard)
		kanban.PUT("/boards/:id", s.UpdateBoard)
		kanban.DELETE("/boards/:id", s.DeleteBoard)
		kanban.POST("/boards/:id/members", s.AddMember)
		kanban.DELETE("/boards/:id/members/:userId", s.RemoveMember)

		kanban.POST("/boards/:id/columns", s.CreateColumn)
		kanban.PATCH("/boards/:id/columns/reorder", s.ReorderColumns)
		kanban.PUT("/columns/:id", s.UpdateColumn)
		kanban.DELETE("/columns/:id", s.DeleteColumn)
		kanban.PATCH("/columns/:id/move", s.MoveColumn)

		kanban.POST("/columns/:id/cards", s.CreateCard)
		kanban.PATCH("/columns/:id/cards/reorder", s.ReorderCards)
		kanban.GET("/cards/:id", s.GetCard)
		kanban.PUT("/cards/:id", s.UpdateCard)
		kanban.DELETE("/cards/:id", s.DeleteCard)
		kanban.PATCH("/cards/:id/move", s.MoveCard)

		kanban.GET("/boards/:id/labels", s.ListLabels)
		kanban.POST("/boards/:id/labels", s.CreateLabel)
		kanban.PUT("/labels/:id", s.UpdateLabel)
		kanban.DELETE("/labels/:id", s.DeleteLabel)
	}

	return r
}

func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
