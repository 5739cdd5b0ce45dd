package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// CreateServer wraps handler in an http.Server. No write timeout: realtime
// connections are long lived.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ShutdownServer stops accepting requests and waits for in-flight ones until
// timeout.
func ShutdownServer(server *http.Server, timeout time.Duration, log zerolog.Logger) error {
	log.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
		return err
	}
	log.Info().Msg("http server shutdown completed")
	return nil
}
