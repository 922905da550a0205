// Package routing computes connector anchors and curves between shapes and
// keeps them current as shapes move.
package routing

import (
	"github.com/venkeey/viscanvas-sub000/internal/geom"
	"github.com/venkeey/viscanvas-sub000/internal/object"
)

// Store is what the router reads shapes from and writes routed connectors to.
type Store interface {
	Get(id string) (object.Object, bool)
	Update(obj object.Object) bool
	Connectors() []*object.Connector
}

// Router routes connectors against a store. Routing ignores every shape
// other than the two endpoints.
type Router struct {
	store Store
}

func New(s Store) *Router {
	return &Router{store: s}
}

// Endpoints resolves both ends of c. An endpoint whose shape id is empty or
// no longer stored is free and stays at its stored point.
func (r *Router) Endpoints(c *object.Connector) (src, dst Endpoint) {
	srcObj := r.lookup(c.SourceID)
	dstObj := r.lookup(c.TargetID)

	srcCenter, dstCenter := c.SourcePoint, c.TargetPoint
	if srcObj != nil {
		srcCenter = object.Center(srcObj)
	}
	if dstObj != nil {
		dstCenter = object.Center(dstObj)
	}

	delta := dstCenter.Sub(srcCenter)
	if delta.IsZero() {
		// Keep the two edges opposite when the shapes share a center.
		delta = geom.Pt(1, 0)
	}

	if srcObj != nil {
		src = Endpoint{Anchor: srcObj.AnchorToward(srcCenter.Add(delta)), Center: srcCenter}
	}
	if dstObj != nil {
		dst = Endpoint{Anchor: dstObj.AnchorToward(dstCenter.Sub(delta)), Center: dstCenter}
	}

	if srcObj == nil {
		toward := c.TargetPoint
		if dstObj != nil {
			toward = dst.Point
		}
		src = freeEndpoint(c.SourcePoint, toward)
	}
	if dstObj == nil {
		dst = freeEndpoint(c.TargetPoint, src.Point)
	}
	return src, dst
}

func freeEndpoint(p, other geom.Point) Endpoint {
	return Endpoint{
		Anchor: object.Anchor{Point: p, Normal: other.Sub(p).Normalize()},
		Center: p,
		Free:   true,
	}
}

func (r *Router) lookup(id string) object.Object {
	if id == "" {
		return nil
	}
	obj, ok := r.store.Get(id)
	if !ok {
		return nil
	}
	return obj
}

// Route returns a copy of c with anchors and path recomputed.
func (r *Router) Route(c *object.Connector) *object.Connector {
	src, dst := r.Endpoints(c)
	out := c.Clone().(*object.Connector)
	out.SourcePoint = src.Point
	out.TargetPoint = dst.Point
	out.SourceEdge = src.Edge
	out.TargetEdge = dst.Edge
	out.Path = CurvePath(src, dst)
	if out.Style == "" {
		out.Style = object.StyleCurve
	}
	return out
}

// Reconcile reroutes every connector named in ids or attached to an object
// named in ids, writing the result back to the store.
func (r *Router) Reconcile(ids []string) {
	if len(ids) == 0 {
		return
	}
	touched := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		touched[id] = struct{}{}
	}
	for _, c := range r.store.Connectors() {
		if !hits(touched, c.ID(), c.SourceID, c.TargetID) {
			continue
		}
		r.store.Update(r.Route(c))
	}
}

// RouteAll reroutes every connector, e.g. after loading a document.
func (r *Router) RouteAll() {
	for _, c := range r.store.Connectors() {
		r.store.Update(r.Route(c))
	}
}

func hits(set map[string]struct{}, ids ...string) bool {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
