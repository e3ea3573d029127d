package dynamica

import "github.com/google/uuid"

// Global is a scheduler-level collaborator that owns exactly one kind
// of pending event per particle (a cell crossing, a parabola sentinel,
// ...). Re-architected as a closed interface rather than the deep
// inheritance hierarchy of the original implementation, per spec.md's
// Design Notes: the scheduler dispatches on the returned Event's Type
// tag, never on which concrete Global produced it.
type Global interface {
	Name() string
	// NextEvent returns the earliest event this global predicts for p.
	NextEvent(ctx *Context, sched *Scheduler, p *Particle) Event
	// RunEvent executes the physics/bookkeeping for ev (previously
	// returned by NextEvent) and is responsible for pushing p's
	// replacement event via sched once it is done.
	RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event)
}

// Local is a static (non-particle) interaction partner: a wall, a
// fixed sphere, or a triangulated mesh. Grounded in DynamO's
// dynamics/locals/{lwall,lsphere,trianglemesh}.cpp.
type Local interface {
	Name() string
	// Overlaps reports whether this local's bounding volume intersects
	// the axis-aligned cell [origin, origin+dim). Cells and MortonCells
	// call it for the destination cell on every cell-crossing event;
	// the result is not cached per cell.
	Overlaps(origin, dim Vec3) bool
	NextEvent(ctx *Context, p *Particle) Event
	RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event) CollisionResult
}

// System is a scheduler-level collaborator not tied to any one
// particle (periodic tickers, thermostats, replica-exchange triggers).
// Only Ticker is implemented concretely; the interface is the
// extension point spec.md §4.5 names without specifying a contract.
type System interface {
	Name() string
	NextEventDt(ctx *Context) float64
	RunEvent(ctx *Context, sched *Scheduler)
}

// Context is the simulation-root structure: it owns the particles and
// the boundary condition, and holds non-owning handles to every other
// collaborator (Dynamics, Globals, Locals, Systems). This is the
// re-architecture spec.md's Design Notes call for: "each component
// holds an index into the context; the context owns all of them. No
// back-pointers." Scheduler, in turn, holds a handle back to Context
// and owns the Sorter and the per-particle event bundles.
type Context struct {
	RunID uuid.UUID
	Logger Logger

	Particles []*Particle
	BC        BoundaryCondition
	Dynamics  Liouvillean
	// Dimensions is the primary simulation box size, used by every
	// Cells variant to partition space even though only PeriodicBC and
	// LeesEdwardsBC actually wrap positions against it.
	Dimensions Vec3

	Globals []Global
	Locals  []Local
	Systems []System
	// Ranges, one per registered interaction species-pair filter; empty
	// means every pair may interact (see Interacts).
	InteractionRanges []Range

	Observers *Observers

	// Now is the master simulation clock; Scheduler.Step advances it to
	// each event's time, and every Global/Local/Liouvillean query is
	// relative to it.
	Now float64

	// MaxInteractionRange is the longest distance at which any two
	// particles can interact; cells must be at least this large
	// (spec.md §4.3 Setup).
	MaxInteractionRange float64
}

// NewContext builds an empty Context ready to have particles, a BC, and
// a Liouvillean installed before a Scheduler is constructed over it.
func NewContext() *Context {
	runID := uuid.New()
	return &Context{
		RunID:     runID,
		Logger:    NewDefaultLogger(runID.String(), false),
		BC:        NoneBC{},
		Observers: &Observers{},
	}
}

// Particle looks up a particle by id; panics on an out-of-range id
// since every caller in this package only ever has ids it generated
// itself from ctx.Particles.
func (ctx *Context) Particle(id int) *Particle {
	if id < 0 || id >= len(ctx.Particles) {
		panic("dynamica: particle id out of range")
	}
	return ctx.Particles[id]
}
