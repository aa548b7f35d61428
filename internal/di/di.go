// Package di provides a minimal service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	// Get returns the service registered under name, resolving a factory
	// on first access. Panics if the name is unknown.
	Get(name string) any
}

// Container is a ServiceRegistry that also accepts registrations.
type Container interface {
	ServiceRegistry

	// Register stores an already-built service instance.
	Register(name string, svc any)

	// RegisterFactory stores a lazy constructor, invoked once on first Get.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[name] = svc
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if svc, ok := c.instances[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("di: no service registered for %q", name))
	}

	svc := factory(c)

	c.mu.Lock()
	c.instances[name] = svc
	c.mu.Unlock()

	return svc
}
