package registry

import (
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// ServiceRegistry announces admin service instances to a discovery backend.
type ServiceRegistry interface {
	// Register registers a service instance.
	// id must be unique per instance, name is the logical service name shared by all instances.
	Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error

	// Deregister removes a service instance using its unique ID.
	Deregister(id string) error

	// Healthy returns the "host:port" of every passing instance of name.
	Healthy(name string) ([]string, error)
}

// InstanceID builds the registration id of one namespace served by one process.
func InstanceID(service, app, protocol string, port int) string {
	return service + "-" + app + "-" + protocol + "-" + strconv.Itoa(port)
}
