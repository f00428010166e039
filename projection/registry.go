package projection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownProjection = errors.New("unknown projection")

// Constructor builds a projection from its parameters.
type Constructor func(name string, params Params) (Projection, error)

// Registry maps projection names to their constructors.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func simplifyName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Register adds `c` under `name` and each of `aliases`.
func (r *Registry) Register(c Constructor, name string, aliases ...string) {
	for _, n := range append([]string{name}, aliases...) {
		r.constructors[simplifyName(n)] = c
	}
}

// Lookup returns the constructor registered as `name`,
// compared after lower casing and replacing spaces by '-'.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	c, ok := r.constructors[name]
	if !ok {
		c, ok = r.constructors[simplifyName(name)]
	}
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// New builds the projection registered as `name`.
func (r *Registry) New(name string, params Params) (Projection, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q (known: %s): %w", name, strings.Join(r.Names(), ", "), ErrUnknownProjection)
	}
	return c(simplifyName(name), params)
}

// Default returns a registry with the built-in projections.
func Default() *Registry {
	r := NewRegistry()
	r.Register(func(name string, params Params) (Projection, error) {
		e, err := NewEquirectangular(name, params)
		if err != nil {
			return nil, err
		}
		return e, nil
	}, "equirectangular", "plate-carree", "latlong")
	return r
}
