package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"campus-messaging/internal/auth"
	"campus-messaging/internal/config"
	"campus-messaging/internal/db"
	"campus-messaging/internal/grpcserver"
	"campus-messaging/internal/logger"
	"campus-messaging/internal/middleware"
	"campus-messaging/internal/observability"
	"campus-messaging/internal/presence"
	"campus-messaging/internal/rabbitmq"
	"campus-messaging/internal/repositories"
	"campus-messaging/internal/repositories/memory"
	"campus-messaging/internal/server"
	"campus-messaging/internal/services"
	"campus-messaging/internal/telemetry"
	"campus-messaging/internal/ws"
)

const (
	auditRoutingKey = "chat.audit"
	tokenTTL        = 7 * 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

type stores struct {
	users         repositories.UserRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	close         func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("development", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger.Component(log, "rabbitmq"))
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("broker publisher ready")
	audit := telemetry.NewAuditEmitter(publisher, auditRoutingKey, cfg.ServiceName, cfg.Env, logger.Component(log, "audit"))

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.close()

	registry, closeRegistry, err := openRegistry(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open presence registry")
	}
	defer closeRegistry()

	// The hub exists before any route or service that publishes into it.
	hub := ws.NewHub(registry, logger.Component(log, "hub"), ws.WithEventRate(cfg.WSEventsPerSecond, cfg.WSEventBurst))
	originCheck := middleware.OriginChecker(cfg.AllowedOrigins())
	socketServer := ws.NewSocketIOServer(hub, originCheck, logger.Component(log, "socketio"))
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io server stopped")
		}
	}()
	defer socketServer.Close()

	chat := services.NewChatService(st.messages, st.users, hub, logger.Component(log, "chat"))
	connections := services.NewConnectionService(st.users, st.notifications, hub, logger.Component(log, "connections"))

	router, err := server.NewRouter(server.Deps{
		Config:      cfg,
		Log:         logger.Component(log, "http"),
		Hub:         hub,
		SocketIO:    socketServer,
		Chat:        chat,
		Connections: connections,
		Tokens:      auth.NewTokens(cfg.JWTSecret, cfg.ServiceName, tokenTTL),
		Users:       st.users,
		Audit:       audit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	grpcSrv := grpcserver.New(cfg.ServiceName)
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("grpc health server listening")
		if err := grpcSrv.ListenAndServe(":" + cfg.GRPCPort); err != nil {
			log.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	httpSrv := server.CreateServer(":"+cfg.Port, router)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("hub shutdown incomplete")
	}
	_ = server.ShutdownServer(httpSrv, shutdownTimeout, log)
	grpcSrv.Stop()
}

func openStores(cfg *config.Config, log zerolog.Logger) (stores, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return stores{users: store, messages: store, notifications: store, close: func() error { return nil }}, nil
	}

	database, err := db.Connect(cfg.DBDSN, logger.Component(log, "db"))
	if err != nil {
		return stores{}, err
	}
	return stores{
		users:         repositories.NewUserRepo(database),
		messages:      repositories.NewMessageRepo(database),
		notifications: repositories.NewNotificationRepo(database),
		close:         database.Close,
	}, nil
}

func openRegistry(ctx context.Context, cfg *config.Config) (presence.Registry, func() error, error) {
	if cfg.PresenceDriver != "redis" {
		return presence.NewMemoryRegistry(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	// Entries left by a previous run of this process are stale.
	if err := client.Del(ctx, cfg.PresenceKey).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return presence.NewRedisRegistry(client, cfg.PresenceKey), client.Close, nil
}
