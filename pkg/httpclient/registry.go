package httpclient

import (
	"slices"
	"strings"
	"sync"
)

// CircuitBreakerStatus is one host breaker of one named client, for health reporting.
type CircuitBreakerStatus struct {
	Client   string `json:"client"`
	Host     string `json:"host"`
	State    string `json:"state"`
	Failures int    `json:"failures"`
}

// Registry maintains a collection of named HTTP clients so their circuit
// breaker states can be observed via the health endpoint.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates a new client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a named client, replacing any client with the same name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Get returns a client by name, or nil if not found.
func (r *Registry) Get(name string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[name]
}

// Names returns the registered client names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CircuitBreakerStatuses returns every host breaker of every registered
// client, sorted by client then host.
func (r *Registry) CircuitBreakerStatuses() []CircuitBreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var statuses []CircuitBreakerStatus
	for name, client := range r.clients {
		client.mu.Lock()
		for host, cb := range client.breakers {
			statuses = append(statuses, CircuitBreakerStatus{
				Client:   name,
				Host:     host,
				State:    cb.State().String(),
				Failures: cb.Failures(),
			})
		}
		client.mu.Unlock()
	}
	slices.SortFunc(statuses, func(a, b CircuitBreakerStatus) int {
		if c := strings.Compare(a.Client, b.Client); c != 0 {
			return c
		}
		return strings.Compare(a.Host, b.Host)
	})
	return statuses
}
