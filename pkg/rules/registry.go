package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// Function is a helper callable from expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry holds helpers by lower-cased name. It is safe for
// concurrent use.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register stores fn under name. Names must be identifiers and are matched
// case-insensitively; registering a name twice fails.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("rules: function %q is nil", name)
	}
	if !isIdentifier(name) {
		return fmt.Errorf("rules: function name %q is not an identifier", name)
	}
	key := strings.ToLower(name)
	if reserved(key) {
		return fmt.Errorf("rules: function name %q shadows a binding", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("rules: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// MustRegister is Register for static setup; it panics on error.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Clone returns a copy that can be extended without affecting r.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{functions: maps.Clone(r.functions)}
}

// Call runs the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("rules: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("rules: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func reserved(name string) bool {
	switch name {
	case "id", "change", "epoch", "value", "now", "args", "metadata", "call":
		return true
	}
	return false
}
