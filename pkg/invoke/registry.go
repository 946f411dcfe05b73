package invoke

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

// Target is a function registered for dynamic invocation.
type Target struct {
	// Name is the unique name of the target, usually "<module>.<action>", e.g. "fs.read".
	Name string `json:"name"`
	// Module is the part of Name before the first dot. Internal errors raised by the
	// target are attributed to it.
	Module string `json:"module"`
	// Signature is the Go signature of Fn.
	Signature string `json:"signature"`

	Fn any `json:"-"`
}

// Registry keeps named targets. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// ModuleOf returns the module label of a target name.
func ModuleOf(name string) string {
	module, _, _ := strings.Cut(name, ".")
	return module
}

func (r *Registry) Register(name string, fn any) error {
	if name == "" {
		return hazyerr.Runtimef("cannot register target: empty name")
	}

	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return hazyerr.Runtimef("cannot register target %s: %T is not a function", name, fn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[name]; exists {
		return errors.Wrapf(
			hazyerr.ErrAlreadyExists,
			"cannot register target %s, target with this name already registered",
			name,
		)
	}

	r.targets[name] = Target{
		Name:      name,
		Module:    ModuleOf(name),
		Signature: fv.Type().String(),
		Fn:        fn,
	}

	return nil
}

func (r *Registry) MustRegister(name string, fn any) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, exists := r.targets[name]
	if !exists {
		return Target{}, errors.Wrapf(hazyerr.ErrNotFound, "target %s not registered", name)
	}

	return target, nil
}

// Targets returns registered targets sorted by name.
func (r *Registry) Targets() []Target {
	r.mu.RLock()
	targets := lo.Values(r.targets)
	r.mu.RUnlock()

	slices.SortFunc(targets, func(a, b Target) int {
		return strings.Compare(a.Name, b.Name)
	})

	return targets
}

func (r *Registry) Names() []string {
	return lo.Map(r.Targets(), func(t Target, _ int) string { return t.Name })
}

// DefaultRegistry is the registry filled by Register.
var DefaultRegistry = NewRegistry()

// Register function must be called in package init function to register targets
// in DefaultRegistry. Panics if the name is taken or fn is not a function.
func Register(name string, fn any) {
	DefaultRegistry.MustRegister(name, fn)
}
