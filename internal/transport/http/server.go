package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbadar/chatrelay/internal/auth"
	"github.com/tbadar/chatrelay/internal/config"
	"github.com/tbadar/chatrelay/internal/core"
)

// NewServer builds the HTTP server: REST endpoints for auth and uploads plus
// the WebSocket chat endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.MaxMessageBytes, logger)))

	apiHandlers := NewAPIHandlers(authService, logger)
	uploadHandlers := NewUploadHandlers(cfg.MaxUploadBytes, logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	authed := api.Group("", AuthMiddleware(authService, logger))
	authed.POST("/upload", uploadHandlers.Upload)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
