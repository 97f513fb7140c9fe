package scaletype

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned (possibly wrapped) by a Resolver for an unknown id.
var ErrNotFound = stderrors.New("type not found")

// Resolver looks up type descriptors by id.
//
// Resolve must be safe for reentrant use: encoders call it recursively while
// walking nested types. An error wrapping ErrNotFound means the id does not
// exist; any other error means the resolver itself failed.
type Resolver interface {
	Resolve(id ID) (*Type, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id ID) (*Type, error)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id ID) (*Type, error) {
	return f(id)
}

// Registry is an in-memory Resolver. Types are appended and never removed;
// ids are dense indices starting at 0.
type Registry struct {
	byName     map[string]ID
	primitives map[Primitive]ID
	types      []Type
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]ID),
		primitives: make(map[Primitive]ID),
	}
}

// Add registers t and returns its id.
func (r *Registry) Add(t Type) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(t)
}

func (r *Registry) addLocked(t Type) ID {
	id := ID(len(r.types))
	r.types = append(r.types, t)
	if t.Name != "" {
		if _, exists := r.byName[t.Name]; !exists {
			r.byName[t.Name] = id
		}
	}
	return id
}

// Define registers t under name. A later definition with the same name
// replaces the name binding, not the earlier type.
func (r *Registry) Define(name string, t Type) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Name = name
	id := ID(len(r.types))
	r.types = append(r.types, t)
	r.byName[name] = id
	return id
}

// Alias binds name to an existing id.
func (r *Registry) Alias(name string, id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = id
}

// Primitive returns the id of primitive p, registering it on first use.
func (r *Registry) Primitive(p Primitive) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.primitives[p]; ok {
		return id
	}
	id := r.addLocked(PrimitiveOf(p))
	r.primitives[p] = id
	return id
}

// Reserve allocates an id for name whose descriptor is supplied later with
// Set. Used for forward references while loading documents.
func (r *Registry) Reserve(name string) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ID(len(r.types))
	r.types = append(r.types, Type{Name: name, Kind: KindTuple})
	if name != "" {
		r.byName[name] = id
	}
	return id
}

// Set replaces the descriptor stored at id, keeping its name if t has none.
func (r *Registry) Set(id ID, t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= len(r.types) {
		return fmt.Errorf("set type %d: %w", id, ErrNotFound)
	}
	if t.Name == "" {
		t.Name = r.types[id].Name
	}
	r.types[id] = t
	return nil
}

// Lookup returns the id bound to name.
func (r *Registry) Lookup(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Names returns all bound names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Resolve returns a copy of the descriptor at id. Slices inside the copy are
// shared with the registry and must not be modified.
func (r *Registry) Resolve(id ID) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.types) {
		return nil, fmt.Errorf("type %d: %w", id, ErrNotFound)
	}
	t := r.types[id]
	return &t, nil
}
