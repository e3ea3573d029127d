package dynamica

import "math"

// BoundaryCondition wraps positions (and, for shearing variants,
// velocities) back into the primary image. Implementations must never
// fail: spec.md §4.1 guarantees applyBC never errors.
type BoundaryCondition interface {
	// ApplyBC wraps pos into the primary image in place.
	ApplyBC(pos *Vec3)
	// ApplyBCVel wraps pos and applies any velocity kick that comes
	// with crossing the boundary (Lees-Edwards shear kick).
	ApplyBCVel(pos, vel *Vec3)
	// ApplyBCDt wraps pos in place. Every implementation in this
	// package ignores dt and behaves exactly like ApplyBC; no shear
	// offset is projected to a future time.
	ApplyBCDt(pos *Vec3, dt float64)
	// Update advances any time-dependent boundary state (shear offset).
	Update(dt float64)
	// Rounding returns pos folded into the primary image, without
	// mutating the argument; used for snapshotting (writeXML).
	Rounding(pos Vec3) Vec3
}

// NoneBC is the identity boundary condition.
type NoneBC struct{}

func (NoneBC) ApplyBC(pos *Vec3)          {}
func (NoneBC) ApplyBCVel(pos, vel *Vec3)  {}
func (NoneBC) ApplyBCDt(pos *Vec3, _ float64) {}
func (NoneBC) Update(dt float64)          {}
func (NoneBC) Rounding(pos Vec3) Vec3     { return pos }

// PeriodicBC wraps pos[i] into [-L_i/2, L_i/2), matching spec.md §4.1.
type PeriodicBC struct {
	Dimensions Vec3
}

func NewPeriodicBC(dims Vec3) *PeriodicBC { return &PeriodicBC{Dimensions: dims} }

func wrapAxis(v, L float64) float64 {
	if L <= 0 {
		return v
	}
	// v - L*round(v/L) lands in [-L/2, L/2]; fold the closed upper end
	// (reached from v == -L/2) back so the result is half-open.
	w := v - L*math.Round(v/L)
	if w >= L/2 {
		w -= L
	}
	return w
}

func (p *PeriodicBC) ApplyBC(pos *Vec3) {
	for i := 0; i < 3; i++ {
		pos[i] = wrapAxis(pos[i], p.Dimensions[i])
	}
}

func (p *PeriodicBC) ApplyBCVel(pos, vel *Vec3) { p.ApplyBC(pos) }

func (p *PeriodicBC) ApplyBCDt(pos *Vec3, _ float64) { p.ApplyBC(pos) }

func (p *PeriodicBC) Update(dt float64) {}

func (p *PeriodicBC) Rounding(pos Vec3) Vec3 {
	out := pos
	p.ApplyBC(&out)
	return out
}

// LeesEdwardsBC implements shearing periodic boundaries: the images
// above/below the primary cell in y are translated by the accumulated
// shear offset gamma*t*Ly, and a particle that wraps across a y face
// picks up a velocity kick of gamma*Ly (spec.md §4.1).
type LeesEdwardsBC struct {
	Dimensions Vec3
	ShearRate  float64 // gamma

	offset float64 // accumulated shear displacement along x, mod Lx
}

func NewLeesEdwardsBC(dims Vec3, shearRate float64) *LeesEdwardsBC {
	return &LeesEdwardsBC{Dimensions: dims, ShearRate: shearRate}
}

// Update advances the shear offset by gamma*Ly*dt, matching DynamO's
// LEBC update(dt) hook.
func (l *LeesEdwardsBC) Update(dt float64) {
	l.offset += l.ShearRate * l.Dimensions[1] * dt
	Lx := l.Dimensions[0]
	if Lx > 0 {
		l.offset = wrapAxis(l.offset, Lx)
	}
}

func (l *LeesEdwardsBC) imageShift(pos *Vec3) float64 {
	Ly := l.Dimensions[1]
	if Ly <= 0 {
		return 0
	}
	// Number of box-heights of y-wrap about to occur tells us how many
	// shear images we cross, and hence how much x-shift/y-vel-kick to
	// apply.
	wrapped := math.Round(pos[1] / Ly)
	return wrapped
}

func (l *LeesEdwardsBC) ApplyBC(pos *Vec3) {
	n := l.imageShift(pos)
	if n != 0 {
		pos[0] -= n * l.offset
	}
	for i := 0; i < 3; i++ {
		pos[i] = wrapAxis(pos[i], l.Dimensions[i])
	}
}

func (l *LeesEdwardsBC) ApplyBCVel(pos, vel *Vec3) {
	n := l.imageShift(pos)
	if n != 0 {
		pos[0] -= n * l.offset
		vel[0] -= n * l.ShearRate * l.Dimensions[1]
	}
	for i := 0; i < 3; i++ {
		pos[i] = wrapAxis(pos[i], l.Dimensions[i])
	}
}

func (l *LeesEdwardsBC) ApplyBCDt(pos *Vec3, _ float64) { l.ApplyBC(pos) }

func (l *LeesEdwardsBC) Rounding(pos Vec3) Vec3 {
	out := pos
	l.ApplyBC(&out)
	return out
}
