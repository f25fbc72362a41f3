package cast

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// The descriptor registry is process-wide state initialized once at
// startup: model packages register their descriptors from init functions
// (typically keyed by a JSON discriminator value) and class-cluster
// resolvers look variants up by name. Freeze after startup to catch stray
// late registrations.

var registry = struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	frozen bool
}{
	byName: make(map[string]*Descriptor),
}

// Register adds a named descriptor to the process-wide registry. It panics
// on duplicate names and on registration after Freeze, both of which are
// wiring mistakes.
func Register(name string, desc *Descriptor) {
	if desc == nil {
		panic(errors.Newf("registering nil descriptor %q", name))
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if registry.frozen {
		panic(errors.Newf("registering descriptor %q after Freeze", name))
	}

	if _, exists := registry.byName[name]; exists {
		panic(errors.Newf("descriptor %q registered twice", name))
	}

	registry.byName[name] = desc
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (*Descriptor, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	desc, ok := registry.byName[name]

	return desc, ok
}

// Freeze forbids further registration. Call once startup wiring is done.
func Freeze() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.frozen = true
}
