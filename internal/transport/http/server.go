package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/auth"
	"github.com/vovakirdan/lobby-server/internal/config"
	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
)

// NewServer builds the HTTP server exposing the lobby. journal may be nil.
func NewServer(
	manager *lobby.Manager,
	authService *auth.Service,
	journal store.Journal,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(manager, authService, journal, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers every lobby route on a gin engine.
func NewRouter(
	manager *lobby.Manager,
	authService *auth.Service,
	journal store.Journal,
	cfg *config.Config,
	logger *zerolog.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(manager, journal, logger)
	ws := NewWSHandler(manager, cfg.EventBuffer, logger)

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService, logger), RateLimitMiddleware(cfg.RateLimit))
	{
		api.GET("/rooms", rooms.ListRooms)
		api.POST("/rooms", rooms.CreateRoom)
		api.POST("/rooms/queues", rooms.QueueRoom)

		api.GET("/rooms/:id", rooms.GetRoom)
		api.PUT("/rooms/:id", rooms.UpdateRoom)
		api.DELETE("/rooms/:id", rooms.RemoveRoom)

		api.PUT("/rooms/:id/status/:status", rooms.UpdateStatus)

		api.POST("/rooms/:id/users", rooms.JoinRoom)
		api.DELETE("/rooms/:id/users/:userId", rooms.LeaveRoom)

		api.GET("/rooms/:id/events", rooms.ListEvents)
	}

	router.GET("/ws", AuthMiddleware(authService, logger), ws.Serve)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
