package dynamica

// StateFlags is a bitset of per-particle state, mirroring spec.md's
// "state flags (e.g. DYNAMIC ... or frozen)".
type StateFlags uint8

const (
	// FlagDynamic marks a particle as free to move. Particles without
	// this flag are frozen (e.g. SOCells lattice sites) and are never
	// streamed or collided into motion.
	FlagDynamic StateFlags = 1 << iota
	// FlagSleeping marks a particle that a Liouvillean has put to sleep
	// (low kinetic energy for longer than PhysicsWorld-style sleep
	// thresholds); the scheduler still owns its bundle but physics may
	// skip redundant work.
	FlagSleeping
)

// Particle is a single hard sphere (or, with an Orientation, a hard
// anisotropic body). IDs are dense and assigned at load time; nothing
// in this package ever renumbers a live particle.
type Particle struct {
	ID       int
	Pos      Vec3
	Vel      Vec3
	Species  int
	Flags    StateFlags
	Diameter float64
	Mass     float64

	// Orientation is nil for spherically symmetric species. When
	// present, orientation-carrying Liouvilleans stream it alongside
	// position/velocity.
	Orientation *Vec3
	// AngularVelocity is only meaningful alongside Orientation.
	AngularVelocity Vec3

	// counter is bumped by Scheduler.dispatch whenever an executed
	// core, cell/global or local event changes this particle's
	// trajectory, just before its bundle is regenerated; FullUpdate
	// itself does not bump it. Events record the counters of their
	// participants at enqueue time; a mismatch on pop means the event
	// is stale and is discarded without executing any physics. This is
	// the "lazy-check invariant" of spec.md §4.5.
	counter uint64

	// cell is set to -1 ("not indexed") by NewParticle. No Cells
	// variant writes it: they track membership in their own
	// per-particle arrays, and CellOf recomputes a particle's cell from
	// its position.
	cell int
}

// IsDynamic reports whether the particle may move.
func (p *Particle) IsDynamic() bool { return p.Flags&FlagDynamic != 0 }

// Counter returns the particle's current lazy-invalidation counter.
func (p *Particle) Counter() uint64 { return p.counter }

// bumpCounter advances the invalidation counter; called by
// Scheduler.dispatch before a trajectory-changing event's handler
// runs, never by FullUpdate.
func (p *Particle) bumpCounter() { p.counter++ }

// NewParticle constructs a dynamic particle with the given id, position
// and velocity; diameter/mass default to 1.0, matching DynamO's default
// hard-sphere species.
func NewParticle(id int, pos, vel Vec3) *Particle {
	return &Particle{
		ID:       id,
		Pos:      pos,
		Vel:      vel,
		Diameter: 1.0,
		Mass:     1.0,
		Flags:    FlagDynamic,
		cell:     -1,
	}
}
