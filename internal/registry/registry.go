// Package registry tracks the objects created through the API, keyed by
// integer handles, together with their interpolation state.
package registry

import (
	"sort"
	"sync"

	"github.com/banshee-data/haptics/internal/interp"
	"github.com/banshee-data/haptics/internal/scene"
	"github.com/banshee-data/haptics/internal/status"
)

// FirstHandle is the handle given to the first object after construction
// or Clear.
const FirstHandle = 1

// Object is one registry entry. Node is owned by the scene and only touched
// under the world lock; Interp is only touched under the registry lock.
type Object struct {
	ID     int
	Tag    string
	Node   *scene.Node
	Interp interp.State
}

// Update is a pose produced by an interpolation step, to be applied to the
// node under the world lock.
type Update struct {
	Node *scene.Node
	Pose interp.Pose
}

// Registry maps handles to objects. Its mutex is the first lock in the
// session's lock order.
type Registry struct {
	mu      sync.Mutex
	next    int
	objects map[int]*Object
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{next: FirstHandle, objects: make(map[int]*Object)}
}

// Add registers a new object for node and returns its handle.
func (r *Registry) Add(node *scene.Node, tag string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	pos, rot := node.Pose()
	r.objects[id] = &Object{
		ID:     id,
		Tag:    tag,
		Node:   node,
		Interp: interp.New(pos, rot),
	}
	return id
}

// Exists reports whether id is a live handle.
func (r *Registry) Exists(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.objects[id]
	return ok
}

// Node returns the scene node of id.
func (r *Registry) Node(id int) (*scene.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[id]
	if !ok {
		return nil, status.ObjectNotFound
	}
	return o.Node, nil
}

// With runs fn on the object while holding the registry lock.
func (r *Registry) With(id int, fn func(*Object) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[id]
	if !ok {
		return status.ObjectNotFound
	}
	return fn(o)
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// IDs returns the live handles in ascending order.
func (r *Registry) IDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Step advances every object's interpolation by one tick and returns the
// resulting poses.
func (r *Registry) Step() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updates []Update
	for _, o := range r.objects {
		if p, moved := o.Interp.Step(); moved {
			updates = append(updates, Update{Node: o.Node, Pose: p})
		}
	}
	return updates
}

// Clear drops every object and resets the handle counter.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = make(map[int]*Object)
	r.next = FirstHandle
}
