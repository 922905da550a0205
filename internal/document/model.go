// Package document is the persisted form of a canvas: a list of typed object
// records plus the view transform.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/venkeey/viscanvas-sub000/internal/object"
	"github.com/venkeey/viscanvas-sub000/internal/viewport"
)

// FormatVersion is bumped on incompatible record changes.
const FormatVersion = 1

var ErrUnknownKind = errors.New("unknown object type")

type Snapshot struct {
	ID            string             `json:"id,omitempty"`
	DocumentID    string             `json:"documentId"`
	Version       int                `json:"version"`
	FormatVersion int                `json:"formatVersion"`
	CreatedAt     string             `json:"createdAt"`
	View          viewport.Transform `json:"view"`
	Objects       []Record           `json:"objects"`
}

// Record is one object tagged with its kind.
type Record struct {
	Type object.Kind     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode converts obj to a record.
func Encode(obj object.Object) (Record, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", obj.ID(), err)
	}
	return Record{Type: obj.Kind(), Data: data}, nil
}

// Decode rebuilds the object held by r. Stored records must carry an id.
func Decode(r Record) (object.Object, error) {
	obj, err := DecodeNew(r)
	if err != nil {
		return nil, err
	}
	if obj.ID() == "" {
		return nil, fmt.Errorf("decode %s: missing id", r.Type)
	}
	return obj, nil
}

// DecodeNew is Decode for objects about to be created; the id may be empty.
func DecodeNew(r Record) (object.Object, error) {
	obj, err := newOfKind(r.Type)
	if err != nil {
		return nil, err
	}
	if len(r.Data) == 0 {
		return nil, fmt.Errorf("decode %s: missing data", r.Type)
	}
	if err := json.Unmarshal(r.Data, obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Type, err)
	}
	return obj, nil
}

func newOfKind(k object.Kind) (object.Object, error) {
	switch k {
	case object.KindRectangle:
		return &object.Rectangle{}, nil
	case object.KindCircle:
		return &object.Circle{}, nil
	case object.KindFreehand:
		return &object.Freehand{}, nil
	case object.KindText:
		return &object.Text{}, nil
	case object.KindConnector:
		return &object.Connector{}, nil
	case object.KindDocumentBlock:
		return &object.DocumentBlock{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}

// EncodeAll converts objs to records, keeping their order.
func EncodeAll(objs []object.Object) ([]Record, error) {
	out := make([]Record, 0, len(objs))
	for _, o := range objs {
		r, err := Encode(o)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DecodeAll decodes records in order.
func DecodeAll(records []Record) ([]object.Object, error) {
	out := make([]object.Object, 0, len(records))
	for i, r := range records {
		obj, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

func Marshal(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if s.View.Scale == 0 {
		s.View = viewport.Identity()
	}
	return &s, nil
}
