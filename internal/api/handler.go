// Package api exposes the canvas engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/engine"
	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/viewport"
)

// Saver persists the canvas on demand.
type Saver interface {
	SaveNow(ctx context.Context) error
}

type Handler struct {
	engine     *engine.Engine
	documentID string
	saver      Saver
}

// NewHandler serves eng. saver may be nil, in which case POST /snapshot
// reports 503.
func NewHandler(eng *engine.Engine, documentID string, saver Saver) *Handler {
	return &Handler{engine: eng, documentID: documentID, saver: saver}
}

type moveRequest struct {
	IDs []string `json:"ids"`
	DX  float64  `json:"dx"`
	DY  float64  `json:"dy"`
}

type connectRequest struct {
	SourceID string      `json:"sourceId"`
	TargetID string      `json:"targetId"`
	Target   *geom.Point `json:"target"`
}

type zoomRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Factor float64 `json:"factor"`
}

type historyResponse struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

type selectionResponse struct {
	Objects []document.Record `json:"objects"`
	Bounds  geom.Rect         `json:"bounds"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	writeObjects(w, h.engine.Objects())
}

func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]

	obj, ok := h.engine.Object(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "object not found"})
		return
	}
	writeObject(w, http.StatusOK, obj)
}

func (h *Handler) CreateObject(w http.ResponseWriter, r *http.Request) {
	var rec document.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	obj, err := document.DecodeNew(rec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := h.engine.AddObject(obj)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeStored(w, http.StatusCreated, id)
}

func (h *Handler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]

	var rec document.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	obj, err := document.DecodeNew(rec)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if obj.ID() != "" && obj.ID() != id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id does not match path"})
		return
	}
	obj.Common().ObjectID = id

	if err := h.engine.UpdateObject(obj); err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeStored(w, http.StatusOK, id)
}

func (h *Handler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]

	if err := h.engine.DeleteObject(id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveObject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.engine.MoveObject(req.DX, req.DY, id); err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeStored(w, http.StatusOK, id)
}

// MoveObjects moves several objects as one undoable edit.
func (h *Handler) MoveObjects(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}

	if err := h.engine.MoveObject(req.DX, req.DY, req.IDs...); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.SourceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sourceId is required"})
		return
	}

	var (
		id  string
		err error
	)
	switch {
	case req.TargetID != "":
		id, err = h.engine.Connect(req.SourceID, req.TargetID)
	case req.Target != nil:
		id, err = h.engine.ConnectToPoint(req.SourceID, *req.Target)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "targetId or target is required"})
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeStored(w, http.StatusCreated, id)
}

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	records, err := document.EncodeAll(h.engine.Selection())
	if err != nil {
		slog.Error("encode selection failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Objects: nonNil(records), Bounds: h.engine.SelectionBounds()})
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]

	if err := h.engine.Select(id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteSelection(); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	applied := h.engine.Undo()
	h.writeHistory(w, applied)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	applied := h.engine.Redo()
	h.writeHistory(w, applied)
}

func (h *Handler) writeHistory(w http.ResponseWriter, applied bool) {
	writeJSON(w, http.StatusOK, historyResponse{
		Applied: applied,
		CanUndo: h.engine.CanUndo(),
		CanRedo: h.engine.CanRedo(),
	})
}

// Query returns the objects overlapping the world rect x,y,w,h.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	vals, err := floatParams(r, "x", "y", "w", "h")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rect := geom.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	writeObjects(w, h.engine.QueryRegion(rect))
}

// Visible returns the objects inside a view of w x h pixels.
func (h *Handler) Visible(w http.ResponseWriter, r *http.Request) {
	vals, err := floatParams(r, "w", "h")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeObjects(w, h.engine.Visible(vals[0], vals[1]))
}

// HitTest returns the topmost object under the view point sx,sy.
func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	vals, err := floatParams(r, "sx", "sy")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	obj, ok := h.engine.HitTestScreen(geom.Pt(vals[0], vals[1]))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no object at point"})
		return
	}
	writeObject(w, http.StatusOK, obj)
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.View())
}

func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var view viewport.Transform
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if view.Scale == 0 {
		view.Scale = 1
	}

	h.engine.SetView(view)
	writeJSON(w, http.StatusOK, h.engine.View())
}

func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	var delta geom.Point
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.engine.Pan(delta)
	writeJSON(w, http.StatusOK, h.engine.View())
}

func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Factor <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "factor must be positive"})
		return
	}

	h.engine.ZoomAt(geom.Pt(req.X, req.Y), req.Factor)
	writeJSON(w, http.StatusOK, h.engine.View())
}

func (h *Handler) DrawList(w http.ResponseWriter, r *http.Request) {
	cmds := h.engine.DrawList()
	if cmds == nil {
		cmds = []engine.DrawCommand{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Snapshot(h.documentID)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// LoadSnapshot replaces the canvas with the posted snapshot.
func (h *Handler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap document.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.engine.Load(&snap); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.saver == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence disabled"})
		return
	}

	if err := h.saver.SaveNow(r.Context()); err != nil {
		slog.Error("save snapshot failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) writeStored(w http.ResponseWriter, status int, id string) {
	obj, ok := h.engine.Object(id)
	if !ok {
		// Removed by a concurrent edit.
		writeJSON(w, status, map[string]string{"id": id})
		return
	}
	writeObject(w, status, obj)
}

func floatParams(r *http.Request, names ...string) ([]float64, error) {
	q := r.URL.Query()
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			return nil, errors.New("invalid or missing " + name)
		}
		out[i] = v
	}
	return out, nil
}

func writeObject(w http.ResponseWriter, status int, obj object.Object) {
	rec, err := document.Encode(obj)
	if err != nil {
		slog.Error("encode object failed", "id", obj.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, rec)
}

func writeObjects(w http.ResponseWriter, objs []object.Object) {
	records, err := document.EncodeAll(objs)
	if err != nil {
		slog.Error("encode objects failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func nonNil(records []document.Record) []document.Record {
	if records == nil {
		return []document.Record{}
	}
	return records
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidEndpoint):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrNothingSelected):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrUnknownKind):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Warn("canvas request rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
