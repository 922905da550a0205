package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/venkeey/viscanvas-sub000/internal/object"
)

const (
	PrefixRectangle = "rect"
	PrefixCircle    = "circle"
	PrefixFreehand  = "stroke"
	PrefixText      = "text"
	PrefixConnector = "conn"
	PrefixBlock     = "block"
	PrefixSnapshot  = "snap"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewConnectorID() string { return New(PrefixConnector) }
func NewSnapshotID() string  { return New(PrefixSnapshot) }

// PrefixFor returns the id prefix used for objects of kind k.
func PrefixFor(k object.Kind) string {
	switch k {
	case object.KindRectangle:
		return PrefixRectangle
	case object.KindCircle:
		return PrefixCircle
	case object.KindFreehand:
		return PrefixFreehand
	case object.KindText:
		return PrefixText
	case object.KindConnector:
		return PrefixConnector
	case object.KindDocumentBlock:
		return PrefixBlock
	default:
		return "obj"
	}
}

// NewObjectID returns a fresh id for an object of kind k.
func NewObjectID(k object.Kind) string { return New(PrefixFor(k)) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
