package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Reporter publishes service health over gRPC and HTTP.
type Reporter struct {
	logger   *zerolog.Logger
	server   *health.Server
	checkers map[string]Checker
	timeout  time.Duration
	interval time.Duration
}

// NewReporter creates a Reporter for the given dependency checks. The gRPC
// status is NOT_SERVING until the first check passes.
func NewReporter(logger *zerolog.Logger, checkers map[string]Checker) *Reporter {
	server := health.NewServer()
	server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Reporter{
		logger:   logger,
		server:   server,
		checkers: checkers,
		timeout:  2 * time.Second,
		interval: 10 * time.Second,
	}
}

// Watch runs the checks immediately and then on every interval until ctx is done.
func (r *Reporter) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.Check(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RegisterHealthServer registers the gRPC health check service.
func (r *Reporter) RegisterHealthServer(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, r.server)
}

// ServeGRPC runs a gRPC server exposing only the health service until ctx is done.
func (r *Reporter) ServeGRPC(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()
	r.RegisterHealthServer(grpcServer)

	go r.Watch(ctx, r.interval)

	go func() {
		<-ctx.Done()
		r.server.Shutdown()
		grpcServer.GracefulStop()
	}()

	r.logger.Info().Str("addr", addr).Msg("gRPC health server listening")
	return grpcServer.Serve(lis)
}

// Check runs every checker and updates the serving status of the gRPC health service.
func (r *Reporter) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(map[string]string, len(r.checkers))
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for name, check := range r.checkers {
		if err := check(ctx); err != nil {
			r.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			results[name] = err.Error()
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			continue
		}
		results[name] = "ok"
	}

	r.server.SetServingStatus("", status)
	return results
}

// ServeHTTP answers liveness checks with the dependency results.
func (r *Reporter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	results := r.Check(req.Context())

	code := http.StatusOK
	for _, v := range results {
		if v != "ok" {
			code = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(results)
}
