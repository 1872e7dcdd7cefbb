package discovery

import (
	"fmt"
	"os"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Registration describes how this instance announces itself.
type Registration struct {
	ServiceName string
	Address     string
	Port        int
	Tags        []string
	// HealthPath is polled by the consul agent.
	HealthPath string
}

// ServiceID is unique per host and port so several instances can share a name.
func (r Registration) ServiceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%s-%d", r.ServiceName, host, r.Port)
}

func (r Registration) agentService() *consulapi.AgentServiceRegistration {
	address := r.Address
	if address == "" {
		address = "127.0.0.1"
	}
	return &consulapi.AgentServiceRegistration{
		ID:      r.ServiceID(),
		Name:    r.ServiceName,
		Address: address,
		Port:    r.Port,
		Tags:    r.Tags,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", address, r.Port, r.HealthPath),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

type Registrar struct {
	client *consulapi.Client
	id     string
	logger *zap.Logger
}

// Register announces the service to the consul agent at addr.
func Register(addr string, reg Registration, logger *zap.Logger) (*Registrar, error) {
	consulCfg := consulapi.DefaultConfig()
	consulCfg.Address = addr
	client, err := consulapi.NewClient(consulCfg)
	if err != nil {
		return nil, err
	}
	svc := reg.agentService()
	if err := client.Agent().ServiceRegister(svc); err != nil {
		return nil, fmt.Errorf("consul register %s: %w", svc.ID, err)
	}
	logger.Info("registered with consul", zap.String("id", svc.ID), zap.String("consul", addr))
	return &Registrar{client: client, id: svc.ID, logger: logger}, nil
}

func (r *Registrar) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.id)
}
