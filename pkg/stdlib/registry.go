// Package stdlib provides the BlockScript builtin functions and the methods
// callable on Int, Double, String and Array values.
package stdlib

import (
	"sort"

	"github.com/blockcraft/blockscript/pkg/evaluator"
)

// Registry holds registered builtins and methods.
type Registry struct {
	fns     map[string]*evaluator.Builtin
	methods map[string]*evaluator.Method
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:     make(map[string]*evaluator.Builtin),
		methods: make(map[string]*evaluator.Method),
	}
}

// Default returns a registry with every standard builtin and method.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// Register adds a builtin function to the registry.
func (r *Registry) Register(fn evaluator.Builtin) {
	r.fns[fn.Name] = &fn
}

// RegisterMethod adds a method to the registry.
func (r *Registry) RegisterMethod(m evaluator.Method) {
	r.methods[evaluator.MethodKey(m.Receiver, m.Name)] = &m
}

// Get retrieves a builtin by name.
func (r *Registry) Get(name string) *evaluator.Builtin {
	return r.fns[name]
}

// Builtins returns all registered builtins, keyed for ExecOptions.Builtins.
func (r *Registry) Builtins() map[string]*evaluator.Builtin {
	return r.fns
}

// Methods returns all registered methods, keyed for ExecOptions.Methods.
func (r *Registry) Methods() map[string]*evaluator.Method {
	return r.methods
}

// Names returns the builtin names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MethodNames returns the "Kind.name" keys of all methods in sorted order.
func (r *Registry) MethodNames() []string {
	names := make([]string, 0, len(r.methods))
	for key := range r.methods {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
