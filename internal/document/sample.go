package document

import (
	"time"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/typeid"
	"github.com/venkeey/viscanvas-sub000/internal/viewport"
)

// NewSampleSnapshot returns a small starter canvas: a card, a circle and a
// connector between them. Connector paths are left for the router.
func NewSampleSnapshot(documentID string) *Snapshot {
	now := time.Now().UTC().Format(time.RFC3339)

	rect := object.NewRectangle(typeid.NewObjectID(object.KindRectangle), geom.Pt(80, 80), 200, 120)
	rect.Paint = object.Paint{Fill: "#4a90d9", Stroke: "#2c5f8a", StrokeWidth: 2}

	circle := object.NewCircle(typeid.NewObjectID(object.KindCircle), geom.Pt(520, 240), 60)
	circle.Paint = object.Paint{Fill: "#e74c3c", Stroke: "#c0392b", StrokeWidth: 2}

	note := object.NewText(typeid.NewObjectID(object.KindText), geom.Pt(80, 240), "Drag the shapes\nto see the connector follow", object.DefaultFontSize)
	note.Paint = object.Paint{Fill: "#333333"}

	conn := object.NewConnector(typeid.NewConnectorID(), rect.ID(), circle.ID())
	conn.Paint = object.Paint{Stroke: "#555555", StrokeWidth: 2}

	// Encoding built-in variants cannot fail.
	records, _ := EncodeAll([]object.Object{rect, circle, note, conn})

	return &Snapshot{
		ID:            typeid.NewSnapshotID(),
		DocumentID:    documentID,
		Version:       1,
		FormatVersion: FormatVersion,
		CreatedAt:     now,
		View:          viewport.Identity(),
		Objects:       records,
	}
}
