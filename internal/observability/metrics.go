package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "messaging_realtime_active_connections",
			Help: "Number of open realtime connections.",
		},
		[]string{"transport"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_realtime_events_total",
			Help: "Realtime events by direction and name.",
		},
		[]string{"direction", "event"},
	)
	onlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messaging_online_users",
			Help: "Users with a joined private room on this instance.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		onlineUsers,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive(transport string) {
	wsActiveConnections.WithLabelValues(transport).Inc()
}

func DecWSActive(transport string) {
	wsActiveConnections.WithLabelValues(transport).Dec()
}

// IncWSEvent counts a realtime event. direction is "in", "out", "dropped" or
// "lifecycle".
func IncWSEvent(direction, event string) {
	wsEventsTotal.WithLabelValues(direction, event).Inc()
}

func SetOnlineUsers(n int) {
	onlineUsers.Set(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
