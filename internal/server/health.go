package server

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService serves the standard grpc.health.v1 protocol. The overall
// status ("" service) is SERVING from Start until Drain.
type HealthService struct {
	addr   string
	logger *zap.Logger
	server *grpc.Server
	health *health.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewHealthService returns a health endpoint that will listen on addr.
//
// Precondition: logger must be non-nil.
func NewHealthService(addr string, logger *zap.Logger) *HealthService {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &HealthService{addr: addr, logger: logger, server: srv, health: hs}
}

// Start listens and serves until Stop.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}
	h.SetServing(true)
	h.mu.Lock()
	h.listener = lis
	h.mu.Unlock()

	h.logger.Info("health service listening", zap.String("addr", lis.Addr().String()))
	if err := h.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// SetServing switches the overall status.
func (h *HealthService) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
}

// Drain reports NOT_SERVING while the other services stop.
func (h *HealthService) Drain() {
	h.SetServing(false)
}

// Stop ends every stream and closes the listener.
func (h *HealthService) Stop() {
	h.health.Shutdown()
	h.server.Stop()
}

// Addr returns the bound address, or "" before Start.
func (h *HealthService) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}
