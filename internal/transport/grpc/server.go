package grpcx

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer собирает grpc-сервер с health-эндпоинтом для проб
// gateway. Доменный API сервиса — JSON поверх WS/HTTP, поэтому
// grpc-поверхность ограничена health.
func NewServer() *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)

	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, h)

	return s
}
