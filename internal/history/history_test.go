package history

import (
	"errors"
	"reflect"
	"testing"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/store"
)

func snapshot(s *store.Store) []object.Object {
	return s.All()
}

func newHistory(t *testing.T) (*History, *store.Store) {
	t.Helper()
	return New(DefaultCapacity), store.New(store.Options{})
}

func TestCreateCreateDeleteUndoRedo(t *testing.T) {
	h, s := newHistory(t)
	a := object.NewRectangle("a", geom.Pt(0, 0), 10, 10)
	b := object.NewCircle("b", geom.Pt(50, 50), 5)

	h.Execute(NewCreate(s, a))
	h.Execute(NewCreate(s, b))
	del, ok := NewDelete(s, "a")
	if !ok {
		t.Fatal("NewDelete(a) found nothing")
	}
	h.Execute(del)
	after := snapshot(s)

	for range 3 {
		if !h.Undo() {
			t.Fatal("Undo returned false")
		}
	}
	if s.Len() != 0 {
		t.Fatalf("store after 3 undos has %d objects, want 0", s.Len())
	}
	if h.Undo() {
		t.Error("Undo on empty stack returned true")
	}

	for range 3 {
		if !h.Redo() {
			t.Fatal("Redo returned false")
		}
	}
	if got := snapshot(s); !reflect.DeepEqual(got, after) {
		t.Errorf("store after redo = %v, want %v", got, after)
	}
	if s.Has("a") || !s.Has("b") {
		t.Errorf("want only b after redo, got %d objects", s.Len())
	}
}

func TestUndoRedoSymmetry(t *testing.T) {
	h, s := newHistory(t)

	h.Execute(NewCreate(s, object.NewRectangle("r1", geom.Pt(0, 0), 10, 10)))
	h.Execute(NewCreate(s, object.NewRectangle("r2", geom.Pt(20, 0), 10, 10)))
	h.Execute(NewCreate(s, object.NewConnector("c", "r1", "r2")))

	old, _ := s.Get("r2")
	moved := old.Clone()
	moved.Translate(40, 15)
	h.Execute(NewModify(s, old, moved))

	del, _ := NewDelete(s, "r1")
	h.Execute(del)
	h.Execute(NewCreate(s, object.NewText("t", geom.Pt(5, 5), "note", 12)))

	want := snapshot(s)
	n := h.UndoLen()
	for range n {
		h.Undo()
	}
	for range n {
		h.Redo()
	}
	if got := snapshot(s); !reflect.DeepEqual(got, want) {
		t.Errorf("store after undo/redo cycle differs\n got: %v\nwant: %v", got, want)
	}
}

func TestExecuteClearsRedo(t *testing.T) {
	h, s := newHistory(t)
	h.Execute(NewCreate(s, object.NewRectangle("a", geom.Pt(0, 0), 1, 1)))
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected a redo step after undo")
	}

	h.Execute(NewCreate(s, object.NewRectangle("b", geom.Pt(0, 0), 1, 1)))
	if h.Redo() {
		t.Error("Redo after a new edit returned true")
	}
	if s.Has("a") {
		t.Error("discarded redo step was applied")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	h := New(3)
	s := store.New(store.Options{})
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		h.Execute(NewCreate(s, object.NewRectangle(id, geom.Pt(0, 0), 1, 1)))
	}
	if h.UndoLen() != 3 {
		t.Fatalf("UndoLen() = %d, want 3", h.UndoLen())
	}
	for h.Undo() {
	}
	got := make([]string, 0, s.Len())
	for _, o := range s.All() {
		got = append(got, o.ID())
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("after undoing everything = %v, want [a b]", got)
	}
}

func TestDeleteCascadesConnectorsAndRestoresOrder(t *testing.T) {
	h, s := newHistory(t)
	s.Add(object.NewRectangle("a", geom.Pt(0, 0), 10, 10))
	s.Add(object.NewConnector("ab", "a", "b"))
	s.Add(object.NewRectangle("b", geom.Pt(100, 0), 10, 10))
	s.Add(object.NewFreeConnector("bf", "b", geom.Pt(0, 100)))
	before := snapshot(s)

	del, _ := NewDelete(s, "a")
	h.Execute(del)
	if s.Has("a") || s.Has("ab") {
		t.Fatal("delete did not cascade to the attached connector")
	}
	if !s.Has("bf") {
		t.Fatal("unrelated connector removed")
	}
	if got := del.Affected(); !reflect.DeepEqual(got, []string{"a", "ab"}) {
		t.Errorf("Affected() = %v, want [a ab]", got)
	}

	h.Undo()
	if got := snapshot(s); !reflect.DeepEqual(got, before) {
		t.Errorf("undo did not restore order\n got: %v\nwant: %v", got, before)
	}
}

func TestModifyHoldsCopies(t *testing.T) {
	h, s := newHistory(t)
	r := object.NewRectangle("r", geom.Pt(0, 0), 10, 10)
	s.Add(r)

	old, _ := s.Get("r")
	next := old.Clone()
	next.Translate(10, 0)
	cmd := NewModify(s, old, next)
	next.Translate(1000, 0)

	h.Execute(cmd)
	got, _ := s.Get("r")
	if got.Position() != geom.Pt(10, 0) {
		t.Errorf("position = %v, want (10,0)", got.Position())
	}
	h.Undo()
	got, _ = s.Get("r")
	if got.Position() != geom.Pt(0, 0) {
		t.Errorf("position after undo = %v, want (0,0)", got.Position())
	}
}

func TestUndoRedoLeaveSelectionAlone(t *testing.T) {
	h, s := newHistory(t)
	a := object.NewRectangle("a", geom.Pt(0, 0), 10, 10)
	h.Execute(NewCreate(s, a))

	setSelected := func(id string, sel bool) {
		t.Helper()
		obj, ok := s.Get(id)
		if !ok {
			t.Fatalf("%s not stored", id)
		}
		obj.SetSelected(sel)
		s.Update(obj)
	}
	selected := func(id string) bool {
		obj, ok := s.Get(id)
		return ok && obj.Selected()
	}

	// Captured while selected, undone after the selection moved on.
	setSelected("a", true)
	old, _ := s.Get("a")
	next := old.Clone()
	next.Translate(10, 0)
	h.Execute(NewModify(s, old, next))
	setSelected("a", false)

	h.Undo()
	if selected("a") {
		t.Error("modify undo restored a stale selection flag")
	}
	got, _ := s.Get("a")
	if got.Position() != geom.Pt(0, 0) {
		t.Errorf("position after undo = %v, want (0,0)", got.Position())
	}

	// The live flag survives in both directions.
	setSelected("a", true)
	h.Redo()
	if !selected("a") {
		t.Error("modify redo dropped the current selection")
	}

	del, _ := NewDelete(s, "a")
	h.Execute(del)
	h.Undo()
	if selected("a") {
		t.Error("delete undo brought the object back selected")
	}

	selectedNew := object.NewRectangle("b", geom.Pt(20, 0), 10, 10)
	selectedNew.SetSelected(true)
	h.Execute(NewCreate(s, selectedNew))
	if selected("b") {
		t.Error("create added a selected object")
	}
}

func TestBatchUndoesInReverse(t *testing.T) {
	h, s := newHistory(t)
	r := object.NewRectangle("r", geom.Pt(0, 0), 10, 10)
	moved := r.Clone()
	moved.Translate(5, 5)

	h.Execute(NewBatch("place",
		NewCreate(s, r),
		NewModify(s, r, moved),
	))
	got, _ := s.Get("r")
	if got.Position() != geom.Pt(5, 5) {
		t.Errorf("position = %v, want (5,5)", got.Position())
	}

	h.Undo()
	if s.Len() != 0 {
		t.Errorf("batch undo left %d objects", s.Len())
	}
	if h.UndoLen() != 0 || h.RedoLen() != 1 {
		t.Errorf("stacks = %d/%d, want 0/1", h.UndoLen(), h.RedoLen())
	}
}

func TestMissingIDPanicsWithContractViolation(t *testing.T) {
	h, s := newHistory(t)
	h.Execute(NewCreate(s, object.NewRectangle("a", geom.Pt(0, 0), 1, 1)))
	s.Remove("a")

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("recovered %v, want an error", r)
		}
		var cv *ContractViolation
		if !errors.As(err, &cv) || cv.ID != "a" {
			t.Errorf("recovered %v, want ContractViolation for a", err)
		}
	}()
	h.Undo()
}

type recorder struct{ calls [][]string }

func (r *recorder) Reconcile(ids []string) { r.calls = append(r.calls, ids) }

func TestSubscribeAndReconcile(t *testing.T) {
	rec := &recorder{}
	h := New(DefaultCapacity, WithReconciler(rec))
	s := store.New(store.Options{})

	var changes []Change
	unsubscribe := h.Subscribe(func(c Change) { changes = append(changes, c) })

	h.Execute(NewCreate(s, object.NewRectangle("a", geom.Pt(0, 0), 1, 1)))
	h.Undo()
	h.Redo()
	h.Clear()

	want := []Change{
		{Op: OpExecute, Command: "create", IDs: []string{"a"}},
		{Op: OpUndo, Command: "create", IDs: []string{"a"}},
		{Op: OpRedo, Command: "create", IDs: []string{"a"}},
		{Op: OpClear},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %+v, want %+v", changes, want)
	}
	if len(rec.calls) != 3 {
		t.Errorf("reconciler called %d times, want 3", len(rec.calls))
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear left history entries")
	}

	unsubscribe()
	h.Execute(NewCreate(s, object.NewRectangle("b", geom.Pt(0, 0), 1, 1)))
	if len(changes) != 4 {
		t.Errorf("unsubscribed callback still invoked")
	}
}
