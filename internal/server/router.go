// Package server assembles the HTTP surface: chat routes behind bearer auth,
// the two realtime transports, health and metrics.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"campus-messaging/internal/config"
	"campus-messaging/internal/handlers"
	"campus-messaging/internal/middleware"
	"campus-messaging/internal/observability"
	"campus-messaging/internal/services"
	"campus-messaging/internal/telemetry"
	"campus-messaging/internal/ws"
)

// ErrHubNotInitialized is returned when routes are built before the hub.
var ErrHubNotInitialized = errors.New("realtime hub not initialized")

type Deps struct {
	Config      *config.Config
	Log         zerolog.Logger
	Hub         *ws.Hub
	SocketIO    *socketio.Server
	Chat        *services.ChatService
	Connections *services.ConnectionService
	Tokens      middleware.TokenValidator
	Users       middleware.UserLookup
	Audit       *telemetry.AuditEmitter
}

// NewRouter wires every route. It refuses to build without a hub so that
// nothing can publish into a missing one.
func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Hub == nil {
		return nil, ErrHubNotInitialized
	}
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	origins := d.Config.AllowedOrigins()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(d.Config.ServiceName),
		observability.HTTPMetricsMiddleware(),
		middleware.RequestLogger(d.Log),
		middleware.CORSMiddleware(origins),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handlers.NewChatHandler(d.Chat, d.Connections, d.Hub, d.Audit)
	chat := router.Group("/chat", middleware.AuthMiddleware(d.Tokens, d.Users))
	chat.POST("/send", chatHandler.SendMessage)
	chat.GET("/history/:userId", chatHandler.GetHistory)
	chat.POST("/delete", chatHandler.DeleteConversation)
	chat.POST("/request", chatHandler.SendRequest)
	chat.POST("/accept", chatHandler.AcceptRequest)
	chat.POST("/reject", chatHandler.RejectRequest)
	chat.GET("/requests", chatHandler.GetRequests)
	chat.GET("/online", chatHandler.Online)

	if d.SocketIO != nil {
		socketHandler := ws.SocketIOHandler(d.SocketIO)
		router.GET("/socket.io/*any", socketHandler)
		router.POST("/socket.io/*any", socketHandler)
	}
	router.GET("/ws", ws.NewWebSocketHandler(d.Hub, middleware.OriginChecker(origins), d.Log).Handle)

	handlers.RegisterDebugRoutes(router, d.Audit, !d.Config.IsProduction())

	return router, nil
}
