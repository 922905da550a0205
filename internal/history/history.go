// Package history records edits as reversible commands with bounded undo and
// redo stacks.
package history

import (
	"log/slog"
	"slices"
)

// DefaultCapacity is the number of undo steps kept.
const DefaultCapacity = 100

// Op identifies what happened to the history.
type Op string

const (
	OpExecute Op = "execute"
	OpUndo    Op = "undo"
	OpRedo    Op = "redo"
	OpClear   Op = "clear"
)

// Change is delivered to subscribers after every history mutation.
type Change struct {
	Op      Op       `json:"op"`
	Command string   `json:"command,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

// Reconciler brings derived state, such as connector paths, in line with the
// objects a command touched. It runs inside the same logical edit.
type Reconciler interface {
	Reconcile(ids []string)
}

type subscriber struct {
	id int
	fn func(Change)
}

// History holds the undo and redo stacks. It is not safe for concurrent use.
type History struct {
	undo     []Command
	redo     []Command
	capacity int

	reconciler Reconciler
	subs       []subscriber
	nextSub    int
	logger     *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithReconciler sets the hook run after every execute, undo and redo.
func WithReconciler(r Reconciler) Option {
	return func(h *History) { h.reconciler = r }
}

// WithLogger sets the logger commands are traced to.
func WithLogger(l *slog.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a history keeping at most capacity undo steps.
func New(capacity int, opts ...Option) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &History{capacity: capacity, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs cmd and records it. Any redo steps are discarded.
func (h *History) Execute(cmd Command) {
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if over := len(h.undo) - h.capacity; over > 0 {
		h.undo = slices.Delete(h.undo, 0, over)
	}
	h.settle(OpExecute, cmd)
}

// Undo reverts the most recent command. It reports false if there is none.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	h.settle(OpUndo, cmd)
	return true
}

// Redo re-executes the most recently undone command. It reports false if
// there is none.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	h.settle(OpRedo, cmd)
	return true
}

// Clear drops both stacks without running any command.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.notify(Change{Op: OpClear})
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
func (h *History) UndoLen() int  { return len(h.undo) }
func (h *History) RedoLen() int  { return len(h.redo) }

// Subscribe registers fn for change notifications. Callbacks run
// synchronously in registration order and must not call back into the
// history. The returned func removes the subscription.
func (h *History) Subscribe(fn func(Change)) (unsubscribe func()) {
	id := h.nextSub
	h.nextSub++
	h.subs = append(h.subs, subscriber{id: id, fn: fn})
	return func() {
		h.subs = slices.DeleteFunc(h.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (h *History) settle(op Op, cmd Command) {
	ids := cmd.Affected()
	if h.reconciler != nil {
		h.reconciler.Reconcile(ids)
	}
	h.logger.Debug("history", "op", op, "command", cmd.Name(), "ids", ids,
		"undo", len(h.undo), "redo", len(h.redo))
	h.notify(Change{Op: op, Command: cmd.Name(), IDs: ids})
}

func (h *History) notify(c Change) {
	for _, s := range slices.Clone(h.subs) {
		s.fn(c)
	}
}
