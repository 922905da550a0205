package engine

import (
	"encoding/json"
	"strings"

	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// DrawCommand represents a single drawing operation for the host to execute.
// Paths are in world coordinates; Transform is the view matrix to apply.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path" or "text"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Kind        object.Kind   `json:"kind,omitempty"`        // Variant of the source object
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Text        []string      `json:"text,omitempty"`        // Lines for "text" ops
	FontSize    float64       `json:"fontSize,omitempty"`
	Origin      *geom.Point   `json:"origin,omitempty"` // Top-left of the first text line
	Bounds      geom.Rect     `json:"bounds"`
	Selected    bool          `json:"selected,omitempty"`
}

// bezierCircle is k = 4 * (sqrt(2) - 1) / 3, the handle length for a quarter
// circle approximated by one cubic segment.
const bezierCircle = 0.5522847498

// CompileDrawCommands generates a draw command buffer for objs.
// Commands are in painter's order (back to front).
func CompileDrawCommands(objs []object.Object, view geom.Matrix2D) []DrawCommand {
	transform := view.ToSlice()
	var commands []DrawCommand
	for _, o := range objs {
		compileObject(o, transform, &commands)
	}
	return commands
}

func compileObject(o object.Object, transform []float64, commands *[]DrawCommand) {
	base := o.Common()
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    o.ID(),
		Kind:        o.Kind(),
		Transform:   transform,
		Fill:        base.Paint.Fill,
		Stroke:      base.Paint.Stroke,
		StrokeWidth: base.Paint.StrokeWidth,
		Bounds:      o.Bounds(),
		Selected:    o.Selected(),
	}

	switch v := o.(type) {
	case *object.Rectangle:
		cmd.Path = rectPath(v.Bounds())
	case *object.Circle:
		cmd.Path = ellipsePath(v.Center, v.Radius, v.Radius)
	case *object.Freehand:
		cmd.Path = polylinePath(v.Points)
		cmd.Fill = ""
	case *object.Connector:
		cmd.Path = curvePath(v.Path, v.SourcePoint, v.TargetPoint)
		cmd.Fill = ""
	case *object.Text:
		cmd.Op = "text"
		cmd.Text = strings.Split(v.Content, "\n")
		cmd.FontSize = v.FontSize
		cmd.Origin = &v.Origin
	case *object.DocumentBlock:
		cmd.Path = rectPath(v.Bounds())
		*commands = append(*commands, cmd)
		if v.Title == "" {
			return
		}
		// Title label drawn over the card.
		origin := v.Origin.Add(geom.Pt(blockPadding, blockPadding))
		cmd = DrawCommand{
			Op:        "text",
			ObjectID:  o.ID(),
			Kind:      o.Kind(),
			Transform: transform,
			Fill:      base.Paint.Stroke,
			Text:      []string{v.Title},
			FontSize:  object.DefaultFontSize,
			Origin:    &origin,
			Bounds:    o.Bounds(),
			Selected:  o.Selected(),
		}
	}
	*commands = append(*commands, cmd)
}

const blockPadding = 12.0

// rectPath generates path commands for a rectangle.
func rectPath(r geom.Rect) []PathCommand {
	x0, y0, x1, y1 := r.X, r.Y, r.MaxX(), r.MaxY()
	return []PathCommand{
		{"M", x0, y0},
		{"L", x1, y0},
		{"L", x1, y1},
		{"L", x0, y1},
		{"Z"},
	}
}

// ellipsePath generates path commands for an ellipse using bezier curves.
func ellipsePath(c geom.Point, rx, ry float64) []PathCommand {
	kx, ky := rx*bezierCircle, ry*bezierCircle
	x, y := c.X, c.Y

	// Four bezier curves to approximate an ellipse
	return []PathCommand{
		{"M", x + rx, y},
		{"C", x + rx, y + ky, x + kx, y + ry, x, y + ry},
		{"C", x - kx, y + ry, x - rx, y + ky, x - rx, y},
		{"C", x - rx, y - ky, x - kx, y - ry, x, y - ry},
		{"C", x + kx, y - ry, x + rx, y - ky, x + rx, y},
		{"Z"},
	}
}

func polylinePath(points []geom.Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	out := make([]PathCommand, 0, len(points))
	out = append(out, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		out = append(out, PathCommand{"L", p.X, p.Y})
	}
	return out
}

// curvePath emits a routed connector: cubic segments for curve paths, a
// straight line otherwise.
func curvePath(path []geom.Point, from, to geom.Point) []PathCommand {
	if !geom.IsCubicChain(path) {
		if len(path) == 0 {
			path = []geom.Point{from, to}
		}
		return polylinePath(path)
	}
	out := []PathCommand{{"M", path[0].X, path[0].Y}}
	for i := 1; i+2 < len(path); i += 3 {
		c1, c2, p := path[i], path[i+1], path[i+2]
		out = append(out, PathCommand{"C", c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y})
	}
	return out
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// SelectionBounds returns the combined bounding box of objs.
func SelectionBounds(objs []object.Object) geom.Rect {
	var result geom.Rect
	first := true
	for _, o := range objs {
		b := o.Bounds()
		if first {
			result = b
			first = false
		} else {
			result = result.Union(b)
		}
	}
	return result
}
