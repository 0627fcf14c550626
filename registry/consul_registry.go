package registry

import (
	"fmt"

	"admin-rbac/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

// Ensure consulRegistry implements ServiceRegistry
var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry creates a new registry backed by the Consul agent at cfg.Address.
func NewConsulRegistry(cfg config.ConsulConfig, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	if cfg.Address != "" {
		consulConfig.Address = cfg.Address
	}

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	if _, err = client.Agent().NodeName(); err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", consulConfig.Address, err)
	}
	logger.Infow("Successfully connected to Consul agent", "address", consulConfig.Address)

	return &consulRegistry{
		client: client,
		logger: logger.Named("ConsulRegistry"),
	}, nil
}

// Register registers a service instance with Consul, including a health check.
func (r *consulRegistry) Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Tags:    tags,
		Port:    port,
		Address: address,
		Check:   check,
		Meta:    map[string]string{"protocol": checkProtocol(check)},
	}

	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", id, "service_name", name, "address", address, "port", port, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", name, err)
	}
	r.logger.Infow("Successfully registered service with Consul", "service_id", id, "service_name", name, "address", address, "port", port)
	return nil
}

// Deregister removes a service instance from Consul.
func (r *consulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Successfully deregistered service from Consul", "service_id", id)
	return nil
}

// Healthy finds the instances of a service whose checks pass.
func (r *consulRegistry) Healthy(name string) ([]string, error) {
	instances, _, err := r.client.Health().Service(name, "", true, nil)
	if err != nil {
		r.logger.Warnw("Failed to discover service from Consul", "service_name", name, "error", err)
		return nil, fmt.Errorf("failed to discover service '%s': %w", name, err)
	}

	addrs := make([]string, 0, len(instances))
	for _, inst := range instances {
		// Prefer Service.Address, fallback to Node.Address
		addr := inst.Service.Address
		if addr == "" {
			addr = inst.Node.Address
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", addr, inst.Service.Port))
	}
	r.logger.Debugw("Discovered healthy service instances", "service_name", name, "count", len(addrs))
	return addrs, nil
}

// CreateHTTPCheck creates a Consul HTTP health check hitting checkPath on host:port.
func CreateHTTPCheck(serviceID, serviceHost string, servicePort int, checkPath string, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           fmt.Sprintf("http://%s:%d%s", serviceHost, servicePort, checkPath),
		Method:                         "GET",
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}

// CreateGRPCCheck creates a Consul check speaking the gRPC health protocol to grpcTarget.
func CreateGRPCCheck(serviceID, grpcTarget string, interval, timeout string, useTLS bool) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           grpcTarget,
		GRPCUseTLS:                     useTLS,
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}

func checkProtocol(check *consulapi.AgentServiceCheck) string {
	switch {
	case check == nil:
		return ""
	case check.GRPC != "":
		return "grpc"
	default:
		return "http"
	}
}
