package dynamica

// SLLODLiouvillean streams particles under the SLLOD equations of
// motion used alongside Lees-Edwards shearing boundaries: the
// streaming (flow) velocity couples x and y so that a planar shear
// profile is maintained exactly as the boundary itself imposes.
// Binary-collision roots and wall/cell roots reuse the Newtonian
// formulas — over one free-streaming interval the shear coupling's
// effect on the higher-order terms is second order in dt and is
// folded into the velocity update each step, matching DynamO's
// first-order SLLOD integrator.
type SLLODLiouvillean struct {
	updateClock
	lastCellDir
	ShearRate float64 // gamma-dot
}

func NewSLLODLiouvillean(shearRate float64) *SLLODLiouvillean {
	return &SLLODLiouvillean{ShearRate: shearRate}
}

func (l *SLLODLiouvillean) Stream(p *Particle, dt float64) {
	if dt < 0 {
		panic("dynamica: Stream called with negative dt")
	}
	if !p.IsDynamic() || dt == 0 {
		return
	}
	// SLLOD equations of motion: dx/dt = vx + gamma*y, dvx/dt = -gamma*vy.
	p.Pos[0] += (p.Vel[0] + l.ShearRate*p.Pos[1]) * dt
	p.Pos[1] += p.Vel[1] * dt
	p.Pos[2] += p.Vel[2] * dt
	p.Vel[0] -= l.ShearRate * p.Vel[1] * dt
}

func (l *SLLODLiouvillean) UpdateParticle(ctx *Context, p *Particle) {
	delay := l.delay(ctx, p)
	if delay > 0 {
		l.Stream(p, delay)
	}
	l.markUpdated(ctx, p)
}

func (l *SLLODLiouvillean) GetParticleDelay(ctx *Context, p *Particle) float64 {
	return l.delay(ctx, p)
}

func (l *SLLODLiouvillean) GetSquareCellCollisionTime(p *Particle, origin, dim Vec3) float64 {
	best := InfDt
	bestDir := 0
	for axis := 0; axis < 3; axis++ {
		n := vzero()
		n[axis] = 1
		if t, ok := wallCollision(p.Pos, p.Vel, vzero(), origin, n); ok && t < best {
			best, bestDir = t, -(axis + 1)
		}
		upper := origin
		upper[axis] += dim[axis]
		if t, ok := wallCollision(p.Pos, p.Vel, vzero(), upper, n); ok && t < best {
			best, bestDir = t, axis + 1
		}
	}
	l.set(p.ID, bestDir)
	return best
}

func (l *SLLODLiouvillean) GetSquareCellCollisionDir(p *Particle, origin, dim Vec3) int {
	return l.get(p.ID)
}

func (l *SLLODLiouvillean) GetSphereSphereRoot(pair PairData, dSq float64) (float64, bool) {
	return sphereSphereRoot(pair, dSq)
}

func (l *SLLODLiouvillean) GetWallCollision(p *Particle, origin, normal Vec3) (float64, bool) {
	return wallCollision(p.Pos, p.Vel, vzero(), origin, normal)
}

func (l *SLLODLiouvillean) GetSphereTriangleEvent(p *Particle, a, b, c Vec3, d float64) (float64, ContactTag, bool) {
	return sphereTriangleEvent(p.Pos, p.Vel, vzero(), a, b, c, d)
}

func (l *SLLODLiouvillean) RunSmoothSphereCollision(p1, p2 *Particle, e float64) CollisionResult {
	return smoothSphereCollision(p1, p2, e)
}

func (l *SLLODLiouvillean) RunWallCollision(p *Particle, n Vec3, e float64) CollisionResult {
	return wallCollisionImpulse(p, n, e)
}

// NOrientationLiouvillean adds orientation streaming (constant angular
// velocity rotation) on top of the Newtonian translational equations
// of motion, for anisotropic species.
type NOrientationLiouvillean struct {
	NewtonianLiouvillean
}

func NewNOrientationLiouvillean() *NOrientationLiouvillean {
	return &NOrientationLiouvillean{}
}

func (l *NOrientationLiouvillean) Stream(p *Particle, dt float64) {
	l.NewtonianLiouvillean.Stream(p, dt)
	if p.Orientation == nil || dt == 0 {
		return
	}
	// First-order rotation update d(orientation)/dt = omega x orientation.
	delta := p.AngularVelocity.Cross(*p.Orientation).Mul(dt)
	o := p.Orientation.Add(delta)
	if n := o.Len(); n > 1e-14 {
		o = o.Mul(1 / n)
	}
	*p.Orientation = o
}

func (l *NOrientationLiouvillean) UpdateParticle(ctx *Context, p *Particle) {
	delay := l.delay(ctx, p)
	if delay > 0 {
		l.Stream(p, delay)
	}
	l.markUpdated(ctx, p)
}
