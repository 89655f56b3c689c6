package discovery

import (
	"fmt"
	"net"
	"strconv"

	consul "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes a service instance announced to Consul.
type Registration struct {
	ServiceID   string
	ServiceName string
	Address     string
	GRPCAddr    string
	Tags        []string
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	logger *zerolog.Logger
	client *consul.Client
}

// NewConsulRegistry creates a registry talking to the agent at addr.
func NewConsulRegistry(logger *zerolog.Logger, addr string) (*ConsulRegistry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ConsulRegistry{logger: logger, client: client}, nil
}

// Register announces the instance with a gRPC health check against GRPCAddr.
func (r *ConsulRegistry) Register(reg Registration) error {
	host, portStr, err := net.SplitHostPort(reg.Address)
	if err != nil {
		return fmt.Errorf("parse service address: %w", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parse service port: %w", err)
	}

	if err := r.client.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		ID:      reg.ServiceID,
		Name:    reg.ServiceName,
		Address: host,
		Port:    port,
		Tags:    reg.Tags,
		Check: &consul.AgentServiceCheck{
			GRPC:                           reg.GRPCAddr,
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	r.logger.Info().Str("service_id", reg.ServiceID).Msg("registered service with consul")
	return nil
}

// Deregister removes the instance from the agent.
func (r *ConsulRegistry) Deregister(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}

	return nil
}
