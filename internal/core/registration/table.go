package registration

import (
	"fmt"
	"sync"
)

// Table holds the descriptors produced while definitions load, one per
// type.
type Table struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
	order       []string
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{descriptors: make(map[string]*Descriptor)}
}

// Add stores a descriptor; a second descriptor for the same type is
// rejected.
func (t *Table) Add(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("nil descriptor")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.descriptors[d.typeName]; exists {
		return fmt.Errorf("type %s already has a registration", d.typeName)
	}
	t.descriptors[d.typeName] = d
	t.order = append(t.order, d.typeName)
	return nil
}

// Get returns the descriptor of a type
func (t *Table) Get(typeName string) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.descriptors[typeName]
	return d, ok
}

// Len returns the number of descriptors
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.descriptors)
}

// List returns the descriptors sorted by type name
func (t *Table) List() []*Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Descriptor, 0, len(t.descriptors))
	for _, name := range sortedKeys(t.descriptors) {
		out = append(out, t.descriptors[name])
	}
	return out
}

// Modules groups controller and service records by module, each group
// sorted by type name.
func (t *Table) Modules() map[string][]Record {
	out := make(map[string][]Record)
	for _, d := range t.List() {
		if r, ok := d.Record(); ok {
			out[r.Module] = append(out[r.Module], r)
		}
	}
	return out
}

// Receptors returns the types bound to server through IO, in the order
// they were added.
func (t *Table) Receptors(server string) []string {
	if server == "" {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for _, name := range t.order {
		if t.descriptors[name].server == server {
			out = append(out, name)
		}
	}
	return out
}

// Structures returns the framework structures of every type
func (t *Table) Structures() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, d := range t.List() {
		out[d.typeName] = d.Structures()
	}
	return out
}
