package dynamica

// updateClock tracks each particle's "last streamed to" time, the
// bookkeeping spec.md §4.2 assigns to the Liouvillean so callers never
// need to stream manually before querying it.
type updateClock struct {
	lastUpdate []float64
}

func (c *updateClock) ensure(id int) {
	for len(c.lastUpdate) <= id {
		c.lastUpdate = append(c.lastUpdate, 0)
	}
}

func (c *updateClock) delay(ctx *Context, p *Particle) float64 {
	c.ensure(p.ID)
	return ctx.Now - c.lastUpdate[p.ID]
}

func (c *updateClock) markUpdated(ctx *Context, p *Particle) {
	c.ensure(p.ID)
	c.lastUpdate[p.ID] = ctx.Now
}

// lastCellDir remembers the face GetSquareCellCollisionDir should report
// for the particle whose time was most recently computed by
// GetSquareCellCollisionTime; matches DynamO's pattern of computing
// time and direction from the one root-finding pass rather than
// re-deriving direction independently.
type lastCellDir struct {
	dirs map[int]int
}

func (l *lastCellDir) set(id, dir int) {
	if l.dirs == nil {
		l.dirs = make(map[int]int)
	}
	l.dirs[id] = dir
}

func (l *lastCellDir) get(id int) int {
	if l.dirs == nil {
		return 0
	}
	return l.dirs[id]
}

// NewtonianLiouvillean is the ballistic (no-field) equations of motion:
// position advances linearly, velocity is unchanged by streaming.
type NewtonianLiouvillean struct {
	updateClock
	lastCellDir
}

func NewNewtonianLiouvillean() *NewtonianLiouvillean {
	return &NewtonianLiouvillean{}
}

func (l *NewtonianLiouvillean) Stream(p *Particle, dt float64) {
	if dt < 0 {
		panic("dynamica: Stream called with negative dt")
	}
	if !p.IsDynamic() || dt == 0 {
		return
	}
	p.Pos = p.Pos.Add(p.Vel.Mul(dt))
}

func (l *NewtonianLiouvillean) UpdateParticle(ctx *Context, p *Particle) {
	delay := l.delay(ctx, p)
	if delay > 0 {
		l.Stream(p, delay)
	}
	l.markUpdated(ctx, p)
}

func (l *NewtonianLiouvillean) GetParticleDelay(ctx *Context, p *Particle) float64 {
	return l.delay(ctx, p)
}

func (l *NewtonianLiouvillean) GetSquareCellCollisionTime(p *Particle, origin, dim Vec3) float64 {
	best := InfDt
	bestDir := 0
	zero := vzero()
	for axis := 0; axis < 3; axis++ {
		n := zero
		n[axis] = 1
		if t, ok := wallCollision(p.Pos, p.Vel, zero, origin, n); ok && t < best {
			best, bestDir = t, -(axis + 1)
		}
		upper := origin
		upper[axis] += dim[axis]
		if t, ok := wallCollision(p.Pos, p.Vel, zero, upper, n); ok && t < best {
			best, bestDir = t, axis + 1
		}
	}
	l.set(p.ID, bestDir)
	return best
}

func (l *NewtonianLiouvillean) GetSquareCellCollisionDir(p *Particle, origin, dim Vec3) int {
	return l.get(p.ID)
}

func (l *NewtonianLiouvillean) GetSphereSphereRoot(pair PairData, dSq float64) (float64, bool) {
	return sphereSphereRoot(pair, dSq)
}

func (l *NewtonianLiouvillean) GetWallCollision(p *Particle, origin, normal Vec3) (float64, bool) {
	return wallCollision(p.Pos, p.Vel, vzero(), origin, normal)
}

func (l *NewtonianLiouvillean) GetSphereTriangleEvent(p *Particle, a, b, c Vec3, d float64) (float64, ContactTag, bool) {
	return sphereTriangleEvent(p.Pos, p.Vel, vzero(), a, b, c, d)
}

func (l *NewtonianLiouvillean) RunSmoothSphereCollision(p1, p2 *Particle, e float64) CollisionResult {
	return smoothSphereCollision(p1, p2, e)
}

func (l *NewtonianLiouvillean) RunWallCollision(p *Particle, n Vec3, e float64) CollisionResult {
	return wallCollisionImpulse(p, n, e)
}

// smoothSphereCollision is the shared elastic/inelastic impulse solver:
// conserve momentum, reflect the normal component of relative velocity
// by -e. Reduced mass formulation, valid regardless of which
// Liouvillean variant is streaming the particles (the impulse is
// instantaneous and field-independent).
func smoothSphereCollision(p1, p2 *Particle, e float64) CollisionResult {
	r12 := p1.Pos.Sub(p2.Pos)
	dist := r12.Len()
	var n Vec3
	if dist > 1e-14 {
		n = r12.Mul(1 / dist)
	} else {
		n = Vec3{1, 0, 0}
	}

	vrel := p1.Vel.Sub(p2.Vel)
	vn := vrel.Dot(n)

	invM1, invM2 := 0.0, 0.0
	if p1.IsDynamic() && p1.Mass > 0 {
		invM1 = 1 / p1.Mass
	}
	if p2.IsDynamic() && p2.Mass > 0 {
		invM2 = 1 / p2.Mass
	}
	invSum := invM1 + invM2
	if invSum == 0 {
		return CollisionResult{}
	}

	// impulse magnitude along n that turns vn into -e*vn
	j := -(1 + e) * vn / invSum

	impulse := n.Mul(j)

	ke1Before := 0.5 * p1.Mass * p1.Vel.Dot(p1.Vel)
	ke2Before := 0.5 * p2.Mass * p2.Vel.Dot(p2.Vel)

	if p1.IsDynamic() {
		p1.Vel = p1.Vel.Add(impulse.Mul(invM1))
	}
	if p2.IsDynamic() {
		p2.Vel = p2.Vel.Sub(impulse.Mul(invM2))
	}

	ke1After := 0.5 * p1.Mass * p1.Vel.Dot(p1.Vel)
	ke2After := 0.5 * p2.Mass * p2.Vel.Dot(p2.Vel)

	return CollisionResult{
		DeltaP1:  impulse,
		DeltaP2:  impulse.Mul(-1),
		DeltaKE1: ke1After - ke1Before,
		DeltaKE2: ke2After - ke2Before,
	}
}

// wallCollisionImpulse reflects the normal velocity component of p by
// -e off a wall with outward unit normal n.
func wallCollisionImpulse(p *Particle, n Vec3, e float64) CollisionResult {
	vn := p.Vel.Dot(n)
	keBefore := 0.5 * p.Mass * p.Vel.Dot(p.Vel)

	delta := n.Mul(-(1 + e) * vn)
	if p.IsDynamic() {
		p.Vel = p.Vel.Add(delta)
	}

	keAfter := 0.5 * p.Mass * p.Vel.Dot(p.Vel)
	return CollisionResult{
		DeltaP1:  delta.Mul(p.Mass),
		DeltaKE1: keAfter - keBefore,
	}
}
