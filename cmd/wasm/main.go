//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/engine"
	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/history"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/viewport"
)

var eng *engine.Engine

func main() {
	eng = engine.New(engine.Options{})

	// Create the engine API object
	canvasEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	canvasEngine.Set("loadDocument", js.FuncOf(loadDocument))
	canvasEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	canvasEngine.Set("addObject", js.FuncOf(addObject))
	canvasEngine.Set("addRect", js.FuncOf(addRect))
	canvasEngine.Set("addCircle", js.FuncOf(addCircle))
	canvasEngine.Set("addText", js.FuncOf(addText))
	canvasEngine.Set("addStroke", js.FuncOf(addStroke))
	canvasEngine.Set("connect", js.FuncOf(connect))
	canvasEngine.Set("connectToPoint", js.FuncOf(connectToPoint))
	canvasEngine.Set("moveObjects", js.FuncOf(moveObjects))
	canvasEngine.Set("deleteObjects", js.FuncOf(deleteObjects))
	canvasEngine.Set("deleteSelection", js.FuncOf(deleteSelection))
	canvasEngine.Set("undo", js.FuncOf(undo))
	canvasEngine.Set("redo", js.FuncOf(redo))
	canvasEngine.Set("setSelection", js.FuncOf(setSelection))
	canvasEngine.Set("setView", js.FuncOf(setView))
	canvasEngine.Set("pan", js.FuncOf(pan))
	canvasEngine.Set("zoomAt", js.FuncOf(zoomAt))
	canvasEngine.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← engine) ---
	canvasEngine.Set("render", js.FuncOf(render))
	canvasEngine.Set("hitTest", js.FuncOf(hitTest))
	canvasEngine.Set("queryRegion", js.FuncOf(queryRegion))
	canvasEngine.Set("getSelection", js.FuncOf(getSelection))
	canvasEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	canvasEngine.Set("getView", js.FuncOf(getView))
	canvasEngine.Set("getDocument", js.FuncOf(getDocument))
	canvasEngine.Set("canUndo", js.FuncOf(canUndo))
	canvasEngine.Set("canRedo", js.FuncOf(canRedo))

	// Register on global scope
	js.Global().Set("canvasEngine", canvasEngine)

	// Signal that WASM is ready
	js.Global().Set("canvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func idResult(id string, err error) any {
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(map[string]any{"id": id})
}

func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(string(data))
}

func stringArgs(v js.Value) []string {
	if v.Type() == js.TypeString {
		return []string{v.String()}
	}
	if v.Type() != js.TypeObject {
		return nil
	}
	out := make([]string, v.Length())
	for i := range out {
		out[i] = v.Index(i).String()
	}
	return out
}

func missing(what string) any {
	return js.ValueOf(map[string]any{"error": "missing " + what})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("document JSON")
	}

	snap, err := document.Unmarshal([]byte(args[0].String()))
	if err != nil {
		return errResult(err)
	}
	if err := eng.Load(snap); err != nil {
		return errResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	documentID := "default"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		documentID = args[0].String()
	}

	if err := eng.Load(document.NewSampleSnapshot(documentID)); err != nil {
		return errResult(err)
	}
	return okResult()
}

// addObject takes a record JSON string: {"type": ..., "data": {...}}.
func addObject(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("object JSON")
	}

	var rec document.Record
	if err := json.Unmarshal([]byte(args[0].String()), &rec); err != nil {
		return errResult(err)
	}
	obj, err := document.DecodeNew(rec)
	if err != nil {
		return errResult(err)
	}
	return idResult(eng.AddObject(obj))
}

func addRect(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return missing("x, y, width, height")
	}
	r := object.NewRectangle("", geom.Pt(args[0].Float(), args[1].Float()), args[2].Float(), args[3].Float())
	return idResult(eng.AddObject(r))
}

func addCircle(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("cx, cy, radius")
	}
	c := object.NewCircle("", geom.Pt(args[0].Float(), args[1].Float()), args[2].Float())
	return idResult(eng.AddObject(c))
}

func addText(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("x, y, content")
	}
	t := object.NewText("", geom.Pt(args[0].Float(), args[1].Float()), args[2].String(), object.DefaultFontSize)
	return idResult(eng.AddObject(t))
}

// addStroke takes a JSON array of {x, y} points and a stroke width.
func addStroke(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("points JSON, width")
	}
	var points []geom.Point
	if err := json.Unmarshal([]byte(args[0].String()), &points); err != nil {
		return errResult(err)
	}
	return idResult(eng.AddObject(object.NewFreehand("", points, args[1].Float())))
}

func connect(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("source and target ids")
	}
	return idResult(eng.Connect(args[0].String(), args[1].String()))
}

func connectToPoint(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("source id, x, y")
	}
	return idResult(eng.ConnectToPoint(args[0].String(), geom.Pt(args[1].Float(), args[2].Float())))
}

func moveObjects(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("dx, dy, ids")
	}
	if err := eng.MoveObject(args[0].Float(), args[1].Float(), stringArgs(args[2])...); err != nil {
		return errResult(err)
	}
	return okResult()
}

func deleteObjects(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("ids")
	}
	if err := eng.DeleteObject(stringArgs(args[0])...); err != nil {
		return errResult(err)
	}
	return okResult()
}

func deleteSelection(this js.Value, args []js.Value) any {
	if err := eng.DeleteSelection(); err != nil {
		return errResult(err)
	}
	return okResult()
}

func undo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Redo())
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString || args[0].String() == "" {
		eng.ClearSelection()
		return okResult()
	}
	if err := eng.Select(args[0].String()); err != nil {
		return errResult(err)
	}
	return okResult()
}

func setView(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("tx, ty, scale")
	}
	eng.SetView(viewport.New(geom.Pt(args[0].Float(), args[1].Float()), args[2].Float()))
	return nil
}

func pan(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	eng.Pan(geom.Pt(args[0].Float(), args[1].Float()))
	return nil
}

func zoomAt(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return nil
	}
	eng.ZoomAt(geom.Pt(args[0].Float(), args[1].Float()), args[2].Float())
	return nil
}

// onChange registers a callback receiving each history change as JSON. The
// callback is queued as a microtask so it may call back into the engine.
func onChange(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return missing("callback")
	}
	cb := args[0]
	eng.Subscribe(func(c history.Change) {
		data, err := json.Marshal(c)
		if err != nil {
			return
		}
		var task js.Func
		task = js.FuncOf(func(js.Value, []js.Value) any {
			cb.Invoke(string(data))
			task.Release()
			return nil
		})
		js.Global().Call("queueMicrotask", task)
	})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	out, err := engine.DrawCommandsToJSON(eng.DrawList())
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(out)
}

// hitTest takes a view point and returns the topmost object id, or "".
func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	obj, ok := eng.HitTestScreen(geom.Pt(args[0].Float(), args[1].Float()))
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(obj.ID())
}

func queryRegion(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return js.ValueOf("[]")
	}
	r := geom.Rect{X: args[0].Float(), Y: args[1].Float(), Width: args[2].Float(), Height: args[3].Float()}
	return toJSON(ids(eng.QueryRegion(r)))
}

func getSelection(this js.Value, args []js.Value) any {
	return toJSON(ids(eng.Selection()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return toJSON(eng.SelectionBounds())
}

func getView(this js.Value, args []js.Value) any {
	return toJSON(eng.View())
}

func getDocument(this js.Value, args []js.Value) any {
	documentID := "default"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		documentID = args[0].String()
	}
	snap, err := eng.Snapshot(documentID)
	if err != nil {
		return errResult(err)
	}
	return toJSON(snap)
}

func canUndo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.CanRedo())
}

func ids(objs []object.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID()
	}
	return out
}
