package registry

import (
	"sort"
	"sync"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/result"
)

// Expander builds example values a handler cannot build on its own.
type Expander interface {
	// Object returns an example object made of f's nested members.
	Object(f *blueprint.FieldDef) jsonbody.Value
	// Element returns an example value of type t, using sample when set.
	Element(t blueprint.TypeRef, sample string) jsonbody.Value
}

// TypeHandler is the interface each built-in type handler must implement.
type TypeHandler interface {
	TypeName() string
	Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning)
	Example(f *blueprint.FieldDef, x Expander) jsonbody.Value
}

// Default is the global handler registry.
var Default = New()

// Registry holds type handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]TypeHandler
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]TypeHandler)}
}

// Register adds a handler for the given type name.
func (r *Registry) Register(typeName string, h TypeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typeName] = h
}

// Get returns the handler for the type name, or nil and false.
func (r *Registry) Get(typeName string) (TypeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typeName]
	return h, ok
}

// Has reports whether typeName is a registered built-in type.
func (r *Registry) Has(typeName string) bool {
	_, ok := r.Get(typeName)
	return ok
}

// For returns the handler for a declared type. Named structures have no handler.
func (r *Registry) For(t blueprint.TypeRef) (TypeHandler, bool) {
	switch t.Kind {
	case blueprint.TypeArray:
		return r.Get(blueprint.Array)
	case blueprint.TypeEnum:
		return r.Get(blueprint.Enum)
	case blueprint.TypePrimitive:
		return r.Get(t.Name)
	default:
		return nil, false
	}
}

// ListSupportedTypes returns all registered type names, sorted.
func (r *Registry) ListSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
