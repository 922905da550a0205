package object

import (
	"strings"
	"unicode/utf8"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
)

// Rectangle is an axis-aligned box with its origin at the top-left corner.
type Rectangle struct {
	Base
	Origin geom.Point `json:"origin"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// NewRectangle creates a rectangle.
func NewRectangle(id string, origin geom.Point, width, height float64) *Rectangle {
	return &Rectangle{Base: Base{ObjectID: id}, Origin: origin, Width: width, Height: height}
}

func (r *Rectangle) Kind() Kind           { return KindRectangle }
func (r *Rectangle) Position() geom.Point { return r.Origin }

func (r *Rectangle) Bounds() geom.Rect {
	return geom.RectFromPoints(r.Origin, r.Origin.Add(geom.Pt(r.Width, r.Height)))
}

func (r *Rectangle) HitTest(p geom.Point) bool { return r.Bounds().Contains(p) }

func (r *Rectangle) AnchorToward(p geom.Point) Anchor { return BoxAnchor(r.Bounds(), p) }

func (r *Rectangle) Translate(dx, dy float64) { r.Origin = r.Origin.Add(geom.Pt(dx, dy)) }

func (r *Rectangle) Clone() Object {
	c := *r
	return &c
}

// Circle is defined by its center and radius.
type Circle struct {
	Base
	Center geom.Point `json:"center"`
	Radius float64    `json:"radius"`
}

// NewCircle creates a circle.
func NewCircle(id string, center geom.Point, radius float64) *Circle {
	return &Circle{Base: Base{ObjectID: id}, Center: center, Radius: radius}
}

func (c *Circle) Kind() Kind           { return KindCircle }
func (c *Circle) Position() geom.Point { return c.Center }

func (c *Circle) Bounds() geom.Rect {
	return geom.RectAround(c.Center, max(c.Radius, 0))
}

func (c *Circle) HitTest(p geom.Point) bool {
	return p.Distance(c.Center) <= max(c.Radius, 0)
}

func (c *Circle) AnchorToward(p geom.Point) Anchor {
	return RadialAnchor(c.Center, max(c.Radius, 0), p)
}

func (c *Circle) Translate(dx, dy float64) { c.Center = c.Center.Add(geom.Pt(dx, dy)) }

func (c *Circle) Clone() Object {
	cp := *c
	return &cp
}

// Text is a block of plain text. Its box is estimated from the content and
// font size; layout belongs to the host.
type Text struct {
	Base
	Origin   geom.Point `json:"origin"`
	Content  string     `json:"content"`
	FontSize float64    `json:"fontSize"`
}

const (
	DefaultFontSize = 16.0
	charAdvance     = 0.6
	lineHeight      = 1.2
)

// NewText creates a text object.
func NewText(id string, origin geom.Point, content string, fontSize float64) *Text {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &Text{Base: Base{ObjectID: id}, Origin: origin, Content: content, FontSize: fontSize}
}

func (t *Text) Kind() Kind           { return KindText }
func (t *Text) Position() geom.Point { return t.Origin }

// Size returns the estimated width and height of the text block.
func (t *Text) Size() (float64, float64) {
	lines := strings.Split(t.Content, "\n")
	longest := 1
	for _, line := range lines {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	return float64(longest) * t.FontSize * charAdvance, float64(len(lines)) * t.FontSize * lineHeight
}

func (t *Text) Bounds() geom.Rect {
	w, h := t.Size()
	return geom.Rect{X: t.Origin.X, Y: t.Origin.Y, Width: w, Height: h}
}

func (t *Text) HitTest(p geom.Point) bool { return t.Bounds().Contains(p) }

func (t *Text) AnchorToward(p geom.Point) Anchor { return BoxAnchor(t.Bounds(), p) }

func (t *Text) Translate(dx, dy float64) { t.Origin = t.Origin.Add(geom.Pt(dx, dy)) }

func (t *Text) Clone() Object {
	c := *t
	return &c
}

// DocumentBlock is a card holding rich document content. The engine only
// tracks its frame; the body is opaque.
type DocumentBlock struct {
	Base
	Origin geom.Point `json:"origin"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Title  string     `json:"title"`
	Body   string     `json:"body,omitempty"`
}

// NewDocumentBlock creates a document block.
func NewDocumentBlock(id string, origin geom.Point, width, height float64, title string) *DocumentBlock {
	return &DocumentBlock{Base: Base{ObjectID: id}, Origin: origin, Width: width, Height: height, Title: title}
}

func (d *DocumentBlock) Kind() Kind           { return KindDocumentBlock }
func (d *DocumentBlock) Position() geom.Point { return d.Origin }

func (d *DocumentBlock) Bounds() geom.Rect {
	return geom.RectFromPoints(d.Origin, d.Origin.Add(geom.Pt(d.Width, d.Height)))
}

func (d *DocumentBlock) HitTest(p geom.Point) bool { return d.Bounds().Contains(p) }

func (d *DocumentBlock) AnchorToward(p geom.Point) Anchor { return BoxAnchor(d.Bounds(), p) }

func (d *DocumentBlock) Translate(dx, dy float64) { d.Origin = d.Origin.Add(geom.Pt(dx, dy)) }

func (d *DocumentBlock) Clone() Object {
	c := *d
	return &c
}
