package session

import (
	"strings"
	"sync"
)

// Routes the session layer navigates between
const (
	RouteLogin     = "/auth/login"
	RouteCallback  = "/auth/callback"
	RouteDashboard = "/dashboard"
)

// Navigator owns the current screen location.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// IsAuthRoute reports whether path is one of the authentication screens.
func IsAuthRoute(path string) bool {
	return strings.Contains(path, "/auth/")
}

// Router is an in-process Navigator that notifies listeners on every move.
type Router struct {
	mu        sync.RWMutex
	location  string
	listeners []func(from, to string)
}

func NewRouter(start string) *Router {
	return &Router{location: start}
}

func (r *Router) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

func (r *Router) Navigate(path string) {
	r.mu.Lock()
	from := r.location
	r.location = path
	listeners := append([]func(from, to string){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(from, path)
	}
}

// OnNavigate registers fn to run after each navigation.
func (r *Router) OnNavigate(fn func(from, to string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
