package geotag

import (
	"fmt"
	"strings"
	"sync"
)

// IDRegistry allocates unique feature identifiers.
// It is owned by whoever builds a document and passed to the
// feature constructors, so that two documents never share ids by accident.
// An IDRegistry is safe for concurrent use.
type IDRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewIDRegistry() *IDRegistry {
	return &IDRegistry{ids: make(map[string]struct{})}
}

// SimplifyName turns a display name into an identifier candidate:
// lower case, spaces replaced by '-'.
func SimplifyName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// Allocate reserves `candidate`, or, if it is already taken,
// the first free `candidate-NN` with NN starting at 01.
func (r *IDRegistry) Allocate(candidate string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocate(candidate)
}

func (r *IDRegistry) allocate(candidate string) string {
	if r.ids == nil {
		r.ids = make(map[string]struct{})
	}
	id := candidate
	for n := 1; ; n++ {
		if _, taken := r.ids[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%02d", candidate, n)
	}
	r.ids[id] = struct{}{}
	return id
}

// Release frees `id` for later allocations.
func (r *IDRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}

// Rename releases `old` and allocates `candidate` instead.
func (r *IDRegistry) Rename(old, candidate string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, old)
	return r.allocate(candidate)
}

func (r *IDRegistry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Len returns the number of allocated ids.
func (r *IDRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// NewTag returns a tag for a feature named `name`. When `id` is empty,
// the simplified name is used as identifier candidate.
func (r *IDRegistry) NewTag(name, id string) Tag {
	if id == "" {
		id = SimplifyName(name)
	}
	return Tag{Name: name, id: r.Allocate(id)}
}

// SetID changes the identifier of `t`, releasing the previous one.
func (r *IDRegistry) SetID(t *Tag, id string) {
	t.id = r.Rename(t.id, id)
}
