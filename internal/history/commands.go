package history

import (
	"fmt"
	"slices"

	"github.com/venkeey/viscanvas-sub000/internal/object"
)

// Store is the part of the object store commands mutate.
type Store interface {
	Add(obj object.Object) bool
	InsertAt(obj object.Object, index int) bool
	Remove(id string) (object.Object, int, bool)
	Update(obj object.Object) bool
	Get(id string) (object.Object, bool)
	IndexOf(id string) int
	ConnectorsFor(id string) []*object.Connector
}

// Command is a reversible edit. A command captures everything it needs at
// construction; Execute and Undo must be exact inverses.
type Command interface {
	Execute()
	Undo()
	Name() string
	Affected() []string
}

// ContractViolation is the panic value raised when a command finds the store
// out of step with its captured state, e.g. an object removed behind the
// history's back.
type ContractViolation struct {
	Command string
	ID      string
	Reason  string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("history: %s %s: %s", e.Command, e.ID, e.Reason)
}

func violate(cmd, id, reason string) {
	panic(&ContractViolation{Command: cmd, ID: id, Reason: reason})
}

// Selection is not part of the history. Captured states are written back
// with the flag the live object carries now, and objects brought back into
// the store arrive unselected.

func unselected(obj object.Object) object.Object {
	out := obj.Clone()
	out.SetSelected(false)
	return out
}

func withLiveSelection(s Store, state object.Object) object.Object {
	out := state.Clone()
	cur, ok := s.Get(state.ID())
	out.SetSelected(ok && cur.Selected())
	return out
}

// Create adds an object.
type Create struct {
	store Store
	obj   object.Object
}

// NewCreate returns a command adding a copy of obj.
func NewCreate(s Store, obj object.Object) *Create {
	return &Create{store: s, obj: unselected(obj)}
}

func (c *Create) Execute() {
	if !c.store.Add(c.obj) {
		violate(c.Name(), c.obj.ID(), "already present")
	}
}

func (c *Create) Undo() {
	if _, _, ok := c.store.Remove(c.obj.ID()); !ok {
		violate(c.Name(), c.obj.ID(), "not found")
	}
}

func (c *Create) Name() string       { return "create" }
func (c *Create) Affected() []string { return []string{c.obj.ID()} }

type removal struct {
	obj   object.Object
	index int
}

// Delete removes objects together with every connector attached to them.
type Delete struct {
	store   Store
	removed []removal
}

// NewDelete captures the objects named by ids and their connectors, with
// their store positions, so undo can put them back in the same z-order.
// Unknown ids are skipped; ok is false if nothing would be removed.
func NewDelete(s Store, ids ...string) (cmd *Delete, ok bool) {
	seen := make(map[string]bool)
	d := &Delete{store: s}
	capture := func(id string) {
		if seen[id] {
			return
		}
		obj, found := s.Get(id)
		if !found {
			return
		}
		seen[id] = true
		d.removed = append(d.removed, removal{obj: obj, index: s.IndexOf(id)})
	}
	for _, id := range ids {
		capture(id)
		if !seen[id] {
			continue
		}
		for _, c := range s.ConnectorsFor(id) {
			capture(c.ID())
		}
	}
	slices.SortFunc(d.removed, func(a, b removal) int { return a.index - b.index })
	return d, len(d.removed) > 0
}

func (d *Delete) Execute() {
	for i := len(d.removed) - 1; i >= 0; i-- {
		id := d.removed[i].obj.ID()
		if _, _, ok := d.store.Remove(id); !ok {
			violate(d.Name(), id, "not found")
		}
	}
}

// Undo reinserts in ascending index order, which restores every position.
func (d *Delete) Undo() {
	for _, r := range d.removed {
		if !d.store.InsertAt(unselected(r.obj), r.index) {
			violate(d.Name(), r.obj.ID(), "already present")
		}
	}
}

func (d *Delete) Name() string { return "delete" }

func (d *Delete) Affected() []string {
	out := make([]string, len(d.removed))
	for i, r := range d.removed {
		out[i] = r.obj.ID()
	}
	return out
}

// Modify swaps an object between two captured states.
type Modify struct {
	store    Store
	oldState object.Object
	newState object.Object
}

// NewModify returns a command replacing oldState with newState. Both must
// share an id; they are copied so later caller mutations do not leak in.
func NewModify(s Store, oldState, newState object.Object) *Modify {
	if oldState.ID() != newState.ID() {
		violate("modify", newState.ID(), "state ids differ")
	}
	return &Modify{store: s, oldState: oldState.Clone(), newState: newState.Clone()}
}

func (m *Modify) Execute() {
	if !m.store.Update(withLiveSelection(m.store, m.newState)) {
		violate(m.Name(), m.newState.ID(), "not found")
	}
}

func (m *Modify) Undo() {
	if !m.store.Update(withLiveSelection(m.store, m.oldState)) {
		violate(m.Name(), m.oldState.ID(), "not found")
	}
}

func (m *Modify) Name() string       { return "modify" }
func (m *Modify) Affected() []string { return []string{m.newState.ID()} }

// Batch groups commands into one undo step.
type Batch struct {
	name string
	cmds []Command
}

// NewBatch returns a command executing cmds in order and undoing them in
// reverse.
func NewBatch(name string, cmds ...Command) *Batch {
	return &Batch{name: name, cmds: cmds}
}

func (b *Batch) Execute() {
	for _, c := range b.cmds {
		c.Execute()
	}
}

func (b *Batch) Undo() {
	for i := len(b.cmds) - 1; i >= 0; i-- {
		b.cmds[i].Undo()
	}
}

func (b *Batch) Name() string { return b.name }

func (b *Batch) Len() int { return len(b.cmds) }

func (b *Batch) Affected() []string {
	var out []string
	for _, c := range b.cmds {
		for _, id := range c.Affected() {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}
