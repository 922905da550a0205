// Package engine is the canvas facade. It owns the object store, the command
// history, the connector router and the view transform, and serializes every
// entry point behind one lock.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/history"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/routing"
	"github.com/venkeey/viscanvas-sub000/internal/store"
	"github.com/venkeey/viscanvas-sub000/internal/typeid"
	"github.com/venkeey/viscanvas-sub000/internal/viewport"
)

var (
	ErrNotFound        = errors.New("object not found")
	ErrDuplicateID     = errors.New("object id already exists")
	ErrInvalidEndpoint = errors.New("invalid connector endpoint")
	ErrNothingSelected = errors.New("nothing selected")
)

type Options struct {
	HistoryCapacity int
	IndexCapacity   int
	IndexMaxDepth   int
	WorldExtent     float64
	Logger          *slog.Logger
}

// Engine is safe for concurrent use. Subscribers run with the lock held and
// must not call back into the engine.
type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	history *history.History
	router  *routing.Router
	view    viewport.Transform
	logger  *slog.Logger
}

// New creates an empty engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := store.New(store.Options{
		Extent:   opts.WorldExtent,
		Capacity: opts.IndexCapacity,
		MaxDepth: opts.IndexMaxDepth,
	})
	r := routing.New(s)
	return &Engine{
		store:   s,
		router:  r,
		history: history.New(opts.HistoryCapacity, history.WithReconciler(r), history.WithLogger(logger)),
		view:    viewport.Identity(),
		logger:  logger,
	}
}

// --- Commands (host → engine) ---

// Execute builds a command against the store and records it. build may
// return nil to skip the edit.
func (e *Engine) Execute(build func(s history.Store) history.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cmd := build(e.store); cmd != nil {
		e.history.Execute(cmd)
	}
}

// AddObject stores obj as one undoable edit. An empty id is filled in with a
// fresh typeid for the object's kind. It returns the stored id.
func (e *Engine) AddObject(obj object.Object) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj = obj.Clone()
	if obj.ID() == "" {
		obj.Common().ObjectID = typeid.NewObjectID(obj.Kind())
	}
	if e.store.Has(obj.ID()) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID())
	}
	if c, ok := obj.(*object.Connector); ok {
		if err := e.checkEndpoints(c); err != nil {
			return "", err
		}
	}
	e.history.Execute(history.NewCreate(e.store, obj))
	return obj.ID(), nil
}

// DeleteObject removes the objects and every connector attached to them as
// one undoable edit.
func (e *Engine) DeleteObject(ids ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		if !e.store.Has(id) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	cmd, ok := history.NewDelete(e.store, ids...)
	if !ok {
		return nil
	}
	e.history.Execute(cmd)
	return nil
}

// DeleteSelection removes every selected object.
func (e *Engine) DeleteSelection() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel := e.store.Selected()
	if len(sel) == 0 {
		return ErrNothingSelected
	}
	ids := make([]string, len(sel))
	for i, o := range sel {
		ids[i] = o.ID()
	}
	cmd, _ := history.NewDelete(e.store, ids...)
	e.history.Execute(cmd)
	return nil
}

// MoveObject translates the objects by (dx, dy) as one undoable edit.
// Attached connectors are rerouted as part of the same edit.
func (e *Engine) MoveObject(dx, dy float64, ids ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmds := make([]history.Command, 0, len(ids))
	for _, id := range ids {
		old, ok := e.store.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		moved := old.Clone()
		moved.Translate(dx, dy)
		cmds = append(cmds, history.NewModify(e.store, old, moved))
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		e.history.Execute(cmds[0])
	default:
		e.history.Execute(history.NewBatch("move", cmds...))
	}
	return nil
}

// UpdateObject replaces an object with obj as one undoable edit.
func (e *Engine) UpdateObject(obj object.Object) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, ok := e.store.Get(obj.ID())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, obj.ID())
	}
	if old.Kind() != obj.Kind() {
		return fmt.Errorf("update %s: kind %s cannot become %s", obj.ID(), old.Kind(), obj.Kind())
	}
	if c, ok := obj.(*object.Connector); ok {
		if err := e.checkEndpoints(c); err != nil {
			return err
		}
	}
	e.history.Execute(history.NewModify(e.store, old, obj))
	return nil
}

// Connect links two shapes with a routed connector and returns its id.
func (e *Engine) Connect(sourceID, targetID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkEndpoint(sourceID); err != nil {
		return "", err
	}
	if err := e.checkEndpoint(targetID); err != nil {
		return "", err
	}
	c := object.NewConnector(typeid.NewConnectorID(), sourceID, targetID)
	e.history.Execute(history.NewCreate(e.store, e.router.Route(c)))
	return c.ID(), nil
}

// ConnectToPoint links a shape to a free world point.
func (e *Engine) ConnectToPoint(sourceID string, target geom.Point) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkEndpoint(sourceID); err != nil {
		return "", err
	}
	c := object.NewFreeConnector(typeid.NewConnectorID(), sourceID, target)
	e.history.Execute(history.NewCreate(e.store, e.router.Route(c)))
	return c.ID(), nil
}

// checkEndpoints validates both ends of c. A connector may not attach to
// itself.
func (e *Engine) checkEndpoints(c *object.Connector) error {
	for _, id := range []string{c.SourceID, c.TargetID} {
		if id != "" && id == c.ID() {
			return fmt.Errorf("%w: %s refers to itself", ErrInvalidEndpoint, id)
		}
		if err := e.checkEndpoint(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkEndpoint(id string) error {
	if id == "" {
		return nil
	}
	obj, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEndpoint, id, ErrNotFound)
	}
	if obj.Kind() == object.KindConnector {
		return fmt.Errorf("%w: %s is a connector", ErrInvalidEndpoint, id)
	}
	return nil
}

// Undo reverts the last edit. It reports false if there was nothing to undo.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Undo()
}

// Redo reapplies the last undone edit.
func (e *Engine) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Redo()
}

func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// Subscribe registers fn for history changes.
func (e *Engine) Subscribe(fn func(history.Change)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	unsub := e.history.Subscribe(fn)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		unsub()
	}
}

// --- Selection (not undo-tracked) ---

// Select makes id the only selected object.
func (e *Engine) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.clearSelectionLocked()
	obj, _ := e.store.Get(id)
	obj.SetSelected(true)
	e.store.Update(obj)
	return nil
}

// ClearSelection deselects every object.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearSelectionLocked()
}

func (e *Engine) clearSelectionLocked() {
	for _, o := range e.store.Selected() {
		o.SetSelected(false)
		e.store.Update(o)
	}
}

// Selection returns the selected objects in store order.
func (e *Engine) Selection() []object.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Selected()
}

// SelectionBounds returns the combined bounds of the selection.
func (e *Engine) SelectionBounds() geom.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SelectionBounds(e.store.Selected())
}

// --- Queries (host ← engine) ---

// Objects returns every object in z-order.
func (e *Engine) Objects() []object.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.All()
}

// Object returns a copy of the object with the given id.
func (e *Engine) Object(id string) (object.Object, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// HitTest returns the topmost object at a world point.
func (e *Engine) HitTest(p geom.Point) (object.Object, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.HitTest(p)
}

// HitTestScreen returns the topmost object at a view point.
func (e *Engine) HitTestScreen(p geom.Point) (object.Object, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.HitTest(e.view.ScreenToWorld(p))
}

// QueryRegion returns the objects overlapping a world rect, in z-order.
func (e *Engine) QueryRegion(r geom.Rect) []object.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Query(r)
}

// Visible returns the objects inside a view of the given pixel size.
func (e *Engine) Visible(width, height float64) []object.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Query(e.view.VisibleWorld(width, height))
}

// DrawList compiles every object into draw commands.
func (e *Engine) DrawList() []DrawCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CompileDrawCommands(e.store.All(), e.view.Matrix())
}

// --- View ---

func (e *Engine) View() viewport.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// SetView replaces the view transform, clamping its scale.
func (e *Engine) SetView(t viewport.Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	scale := viewport.ClampScale(t.Scale)
	e.view = t.CopyWith(nil, &scale)
}

// Pan shifts the view by a screen-space delta.
func (e *Engine) Pan(delta geom.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.Pan(delta)
}

// ZoomAt scales the view by factor, keeping the screen point fixed.
func (e *Engine) ZoomAt(anchor geom.Point, factor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.ZoomAt(anchor, factor)
}

// --- Persistence ---

// Snapshot captures the current objects and view.
func (e *Engine) Snapshot(documentID string) (*document.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := document.EncodeAll(e.store.All())
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &document.Snapshot{
		DocumentID:    documentID,
		FormatVersion: document.FormatVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		View:          e.view,
		Objects:       records,
	}, nil
}

// Load replaces the canvas with the snapshot contents. Objects are added
// directly and the history is cleared; a loaded document has nothing to undo.
func (e *Engine) Load(snap *document.Snapshot) error {
	objs, err := document.DecodeAll(snap.Objects)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Clear()
	for _, o := range objs {
		if !e.store.Add(o) {
			e.logger.Warn("duplicate object in snapshot", "id", o.ID())
		}
	}
	e.router.RouteAll()
	e.view = snap.View
	if e.view.Scale == 0 {
		e.view = viewport.Identity()
	}
	e.view.Scale = viewport.ClampScale(e.view.Scale)
	e.history.Clear()
	e.logger.Info("canvas loaded", "document", snap.DocumentID, "objects", e.store.Len())
	return nil
}
