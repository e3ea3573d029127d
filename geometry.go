package dynamica

import "math"

// sphereTriangleEvent finds the earliest time a sphere of radius d,
// streaming from pos with velocity vel and constant acceleration accel,
// first touches the triangle (a, b, c), and which primitive (face,
// edge, or corner) it touches. Grounded in DynamO's
// dynamics/locals/trianglemesh.cpp dispatch between face/edge/vertex
// contact regions; simplified here to ignore the perpendicular
// component of accel when testing edges (a deliberate approximation —
// see DESIGN.md — since the exact edge-vs-moving-point root is quartic
// under constant acceleration and spec.md does not pin an exact
// tolerance for that case).
func sphereTriangleEvent(pos, vel, accel, a, b, c Vec3, d float64) (float64, ContactTag, bool) {
	best := InfDt
	bestTag := TFace
	found := false

	consider := func(t float64, ok bool, tag ContactTag) {
		if ok && t < best {
			best, bestTag, found = t, tag, true
		}
	}

	// Face: offset plane at distance d along the triangle normal on the
	// side the particle currently sits.
	ab := b.Sub(a)
	ac := c.Sub(a)
	n := ab.Cross(ac)
	if nl := n.Len(); nl > 1e-14 {
		n = n.Mul(1 / nl)
		if pos.Sub(a).Dot(n) < 0 {
			n = n.Mul(-1)
		}
		origin := a.Add(n.Mul(d))
		if t, ok := wallCollision(pos, vel, accel, origin, n); ok {
			contact := pointAt(pos, vel, accel, t).Sub(n.Mul(d))
			if pointInTriangle(contact, a, b, c) {
				consider(t, true, TFace)
			}
		}
	}

	type edge struct {
		p0, p1 Vec3
		tag    ContactTag
	}
	edges := [3]edge{
		{a, b, TEdgeAB},
		{a, c, TEdgeAC},
		{b, c, TEdgeBC},
	}
	for _, e := range edges {
		dir := e.p1.Sub(e.p0)
		length := dir.Len()
		if length < 1e-14 {
			continue
		}
		dirN := dir.Mul(1 / length)

		r0 := pos.Sub(e.p0)
		rPerp0 := r0.Sub(dirN.Mul(r0.Dot(dirN)))
		vPerp := vel.Sub(dirN.Mul(vel.Dot(dirN)))

		if t, ok := smallestPositiveRoot(vPerp.Dot(vPerp), 2*rPerp0.Dot(vPerp), rPerp0.Dot(rPerp0)-d*d); ok {
			contact := pointAt(pos, vel, accel, t)
			u := contact.Sub(e.p0).Dot(dirN)
			if u >= 0 && u <= length {
				consider(t, true, e.tag)
			}
		}
	}

	type vtx struct {
		p   Vec3
		tag ContactTag
	}
	for _, v := range [3]vtx{{a, TCornerA}, {b, TCornerB}, {c, TCornerC}} {
		r := pos.Sub(v.p)
		if t, ok := smallestPositiveRoot(vel.Dot(vel), 2*r.Dot(vel), r.Dot(r)-d*d); ok {
			consider(t, true, v.tag)
		}
	}

	return best, bestTag, found
}

func pointAt(pos, vel, accel Vec3, t float64) Vec3 {
	return pos.Add(vel.Mul(t)).Add(accel.Mul(0.5 * t * t))
}

// pointInTriangle tests containment via barycentric coordinates,
// assuming p already lies in the triangle's plane.
func pointInTriangle(p, a, b, c Vec3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < 1e-14 {
		return false
	}
	invDenom := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	const eps = 1e-9
	return u >= -eps && v >= -eps && (u+v) <= 1+eps
}
