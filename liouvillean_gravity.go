package dynamica

// NewtonianGravityLiouvillean integrates a parabolic trajectory under a
// constant field g. Relative motion between any two particles is still
// ballistic (g cancels in the relative frame), so GetSphereSphereRoot
// and collision impulses are identical to the Newtonian variant; only
// single-particle queries (cell/wall/triangle) see the field.
type NewtonianGravityLiouvillean struct {
	updateClock
	lastCellDir
	Gravity Vec3
}

func NewNewtonianGravityLiouvillean(g Vec3) *NewtonianGravityLiouvillean {
	return &NewtonianGravityLiouvillean{Gravity: g}
}

func (l *NewtonianGravityLiouvillean) Stream(p *Particle, dt float64) {
	if dt < 0 {
		panic("dynamica: Stream called with negative dt")
	}
	if !p.IsDynamic() || dt == 0 {
		return
	}
	p.Pos = p.Pos.Add(p.Vel.Mul(dt)).Add(l.Gravity.Mul(0.5 * dt * dt))
	p.Vel = p.Vel.Add(l.Gravity.Mul(dt))
}

func (l *NewtonianGravityLiouvillean) UpdateParticle(ctx *Context, p *Particle) {
	delay := l.delay(ctx, p)
	if delay > 0 {
		l.Stream(p, delay)
	}
	l.markUpdated(ctx, p)
}

func (l *NewtonianGravityLiouvillean) GetParticleDelay(ctx *Context, p *Particle) float64 {
	return l.delay(ctx, p)
}

func (l *NewtonianGravityLiouvillean) GetSquareCellCollisionTime(p *Particle, origin, dim Vec3) float64 {
	best := InfDt
	bestDir := 0
	for axis := 0; axis < 3; axis++ {
		n := vzero()
		n[axis] = 1
		if t, ok := wallCollision(p.Pos, p.Vel, l.Gravity, origin, n); ok && t < best {
			best, bestDir = t, -(axis + 1)
		}
		upper := origin
		upper[axis] += dim[axis]
		if t, ok := wallCollision(p.Pos, p.Vel, l.Gravity, upper, n); ok && t < best {
			best, bestDir = t, axis + 1
		}
	}
	l.set(p.ID, bestDir)
	return best
}

func (l *NewtonianGravityLiouvillean) GetSquareCellCollisionDir(p *Particle, origin, dim Vec3) int {
	return l.get(p.ID)
}

func (l *NewtonianGravityLiouvillean) GetSphereSphereRoot(pair PairData, dSq float64) (float64, bool) {
	return sphereSphereRoot(pair, dSq)
}

func (l *NewtonianGravityLiouvillean) GetWallCollision(p *Particle, origin, normal Vec3) (float64, bool) {
	return wallCollision(p.Pos, p.Vel, l.Gravity, origin, normal)
}

func (l *NewtonianGravityLiouvillean) GetSphereTriangleEvent(p *Particle, a, b, c Vec3, d float64) (float64, ContactTag, bool) {
	return sphereTriangleEvent(p.Pos, p.Vel, l.Gravity, a, b, c, d)
}

func (l *NewtonianGravityLiouvillean) RunSmoothSphereCollision(p1, p2 *Particle, e float64) CollisionResult {
	return smoothSphereCollision(p1, p2, e)
}

func (l *NewtonianGravityLiouvillean) RunWallCollision(p *Particle, n Vec3, e float64) CollisionResult {
	return wallCollisionImpulse(p, n, e)
}

// ApexTime returns the time at which p's velocity component along the
// gravity axis crosses zero (the trajectory apex), or false if the
// particle has no component of motion against gravity. Used by the
// ParabolaSentinel global (see systems.go) to force periodic
// re-evaluation past the apex, per spec.md §4.2 and scenario 4.
func (l *NewtonianGravityLiouvillean) ApexTime(p *Particle) (float64, bool) {
	gLen := l.Gravity.Len()
	if gLen < 1e-14 {
		return 0, false
	}
	gHat := l.Gravity.Mul(1 / gLen)
	vAlong := p.Vel.Dot(gHat)
	if vAlong >= 0 {
		// Already falling along g (or stationary); apex already passed
		// or there is none ahead.
		return 0, false
	}
	t := -vAlong / gLen
	if t <= 0 {
		return 0, false
	}
	return t, true
}
