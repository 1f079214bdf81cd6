package reflection

import (
	"fmt"
	"sort"
	"sync"
)

// registry indexes every registered Type by name, alias, and TypeInfo.
// Registration happens from init functions; after startup the registry only
// serves reads, so queries take the read lock and never copy.
type registry struct {
	mu      sync.RWMutex
	byName  map[string]*Type // canonical names and aliases
	byTI    map[*TypeInfo]*Type
	enums   map[*TypeInfo]*Enum
	ordered []*Type
}

var globalRegistry = &registry{
	byName: make(map[string]*Type),
	byTI:   make(map[*TypeInfo]*Type),
	enums:  make(map[*TypeInfo]*Enum),
}

// builtins are registrations owned by this package. They run at init and
// are replayed after Reset so tests always see the core types.
var builtins []func()

func registerBuiltin(fn func()) {
	builtins = append(builtins, fn)
	fn()
}

// register inserts a finished Type. Name, alias, and TypeInfo collisions are
// programmer errors and panic, the same as duplicate flag registration.
func register(t *Type) *Type {
	r := globalRegistry
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[t.name]; ok {
		panic(fmt.Sprintf("reflection: type name %q already registered for %s", t.name, prev.ti))
	}
	if prev, ok := r.byTI[t.ti]; ok {
		panic(fmt.Sprintf("reflection: type %s already registered as %q", t.ti, prev.name))
	}
	for _, a := range t.aliases {
		if prev, ok := r.byName[a]; ok {
			panic(fmt.Sprintf("reflection: alias %q already registered for %s", a, prev.ti))
		}
	}
	for _, p := range t.parents {
		if _, ok := r.byTI[p.ti]; !ok {
			panic(fmt.Sprintf("reflection: parent %s of %q is not registered; register parents first", p.ti, t.name))
		}
	}

	t.finalize(len(r.ordered), func(ti *TypeInfo) *Type { return r.byTI[ti] })
	r.byName[t.name] = t
	for _, a := range t.aliases {
		r.byName[a] = t
	}
	r.byTI[t.ti] = t
	r.ordered = append(r.ordered, t)
	if t.enum != nil {
		r.enums[t.ti] = t.enum
		t.ti.markEnum()
	}
	return t
}

// typeByInfo resolves ti to its registered Type, or nil.
func typeByInfo(ti *TypeInfo) *Type {
	if ti == nil {
		return nil
	}
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byTI[ti]
}

// enumFor resolves ti to its registered enum metadata, or nil.
func enumFor(ti *TypeInfo) *Enum {
	if ti == nil {
		return nil
	}
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enums[ti]
}

// GetType finds a registered type by canonical name or alias.
func GetType(name string) (*Type, bool) {
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// TypeCount returns the number of registered types.
func TypeCount() int {
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// TypeAt returns the type at registration index i.
func TypeAt(i int) *Type {
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered[i]
}

// Types returns all registered types in registration order.
func Types() []*Type {
	r := globalRegistry
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// TypeNames returns the canonical names of all registered types, sorted.
func TypeNames() []string {
	r := globalRegistry
	r.mu.RLock()
	out := make([]string, len(r.ordered))
	for i, t := range r.ordered {
		out[i] = t.name
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Reset clears the registry and the derived adapter caches (used for
// testing).
func Reset() {
	r := globalRegistry
	r.mu.Lock()
	for ti := range r.enums {
		ti.unmarkEnum()
	}
	r.byName = make(map[string]*Type)
	r.byTI = make(map[*TypeInfo]*Type)
	r.enums = make(map[*TypeInfo]*Enum)
	r.ordered = nil
	r.mu.Unlock()

	arrayAdapters.Lock()
	arrayAdapters.m = make(map[*TypeInfo]Array)
	arrayAdapters.Unlock()
	tableAdapters.Lock()
	tableAdapters.m = make(map[*TypeInfo]Table)
	tableAdapters.Unlock()

	for _, fn := range builtins {
		fn()
	}
}
