package breaker

import "sync"

// Group manages one breaker per named dependency, created lazily from a
// shared config template. Use it when many call sites protect different
// upstreams with the same policy.
type Group struct {
	config Config

	mu       sync.RWMutex
	breakers map[string]*Breaker
	order    []string // Maintains creation order
}

// NewGroup creates a Group. The config acts as a template; each breaker
// gets its own name and fresh counters.
func NewGroup(config Config) *Group {
	return &Group{
		config:   config,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it on first use.
func (g *Group) Get(name string) *Breaker {
	g.mu.RLock()
	b, ok := g.breakers[name]
	g.mu.RUnlock()
	if ok {
		return b
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[name]; ok {
		return b
	}

	cfg := g.config
	cfg.Name = name
	b = New(cfg)
	g.breakers[name] = b
	g.order = append(g.order, name)
	return b
}

// Names returns the names of all breakers in creation order.
func (g *Group) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Range calls fn for each breaker in creation order until fn returns
// false.
func (g *Group) Range(fn func(name string, b *Breaker) bool) {
	g.mu.RLock()
	names := make([]string, len(g.order))
	copy(names, g.order)
	breakers := make(map[string]*Breaker, len(g.breakers))
	for name, b := range g.breakers {
		breakers[name] = b
	}
	g.mu.RUnlock()

	for _, name := range names {
		if !fn(name, breakers[name]) {
			return
		}
	}
}

// ResetAll resets every breaker in the group to closed.
func (g *Group) ResetAll() {
	g.Range(func(_ string, b *Breaker) bool {
		b.Reset()
		return true
	})
}
