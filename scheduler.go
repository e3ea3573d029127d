package dynamica

import "math"

// neighbourGlobal is implemented by every Cells variant: it narrows the
// all-pairs search fullUpdate would otherwise need down to the
// particles sharing (or adjacent to) pid's cell.
type neighbourGlobal interface {
	ForEachNeighbour(ctx *Context, pid int, fn func(qid int))
}

// Scheduler owns the Sorter and the per-particle event Bundles and
// holds a non-owning handle back to Context, per spec.md's Design
// Notes ("Scheduler, in turn, holds a handle back to Context and owns
// the Sorter and the per-particle event bundles"). It is the only
// collaborator that ever pops an event and decides what runs next;
// Globals/Locals/Systems only ever produce or consume events it hands
// them.
type Scheduler struct {
	ctx    *Context
	sorter Sorter
	bundles []*Bundle
	// nextTime[pid] is the absolute simulation time of pid's earliest
	// pending event, snapshotted by FullUpdate at the moment it ran
	// (ctx.Now + bundle.Top().Dt then). Event.Dt is only ever meaningful
	// relative to that snapshot instant, so Step reads this cache rather
	// than re-adding a (by then stale) Dt to the current ctx.Now.
	nextTime []float64

	// epoch is the simulation time the sorter's keys are currently
	// relative to. Every Step rebases the sorter by however far the
	// clock just advanced and moves epoch to the new ctx.Now, so a key
	// is always a short offset from "now" rather than an absolute time
	// that keeps growing across a run — spec.md §4.4's "periodic
	// rebase", needed to hold the §8 1e-9 precision bound over a
	// multi-million-event run instead of letting float64 cancellation
	// error grow with ctx.Now.
	epoch float64

	// nextSystemAt[i] is the absolute simulation time System i is next
	// due to fire, set once at schedule time (Init/scheduleSystem) by
	// adding its NextEventDt to ctx.Now *then*. Re-deriving it from
	// ctx.Now at every Step would recompute a receding target as the
	// clock advances, since NextEventDt reports a period relative to
	// the instant it was asked, not to "now" in general.
	nextSystemAt []float64

	eventCount int64
}

// NewScheduler builds a scheduler over ctx using sorter as its pending-
// event index. Call Init once every particle, BC, Dynamics and Global
// is installed on ctx.
func NewScheduler(ctx *Context, sorter Sorter) *Scheduler {
	s := &Scheduler{ctx: ctx, sorter: sorter}
	s.bundles = make([]*Bundle, len(ctx.Particles))
	s.nextTime = make([]float64, len(ctx.Particles))
	for i := range s.bundles {
		s.bundles[i] = NewBundle()
		s.nextTime[i] = InfDt
	}
	return s
}

// Init populates every particle's bundle and the sorter for the first
// time, and primes the system events. Must run before Step/Run.
func (s *Scheduler) Init() {
	s.epoch = s.ctx.Now
	n := 0
	for _, p := range s.ctx.Particles {
		if !p.IsDynamic() {
			continue
		}
		s.FullUpdate(s.ctx, p.ID)
		n++
	}
	s.rebuildSystemEvents()
	s.ctx.Logger.Infof("scheduler initialised: %d dynamic particles, %d globals, %d locals, %d systems",
		n, len(s.ctx.Globals), len(s.ctx.Locals), len(s.ctx.Systems))
}

// FullUpdate discards pid's current bundle and regenerates it from
// scratch by consulting every Global (for its own predicted event: a
// cell crossing, a parabola sentinel, ...), every neighbour candidate
// the cell Globals can find (for binary core collisions), and every
// Local (for wall/sphere/triangle events), then re-keys pid in the
// sorter to the new earliest Dt. This is the "full neighbourhood
// rescan" simplification documented on Cells in place of
// spec.md §4.3's incremental new-neighbour-slab walk.
func (s *Scheduler) FullUpdate(ctx *Context, pid int) {
	p := ctx.Particle(pid)
	b := s.bundles[pid]
	b.Reset()

	for gi, g := range ctx.Globals {
		ev := g.NextEvent(ctx, s, p)
		ev.GlobalID = gi
		if ev.Dt < InfDt {
			b.Insert(ev)
		}
		if ng, ok := g.(neighbourGlobal); ok {
			ng.ForEachNeighbour(ctx, pid, func(qid int) {
				if !Interacts(ctx.InteractionRanges, pid, qid) {
					return
				}
				if ev, ok := s.coreEvent(ctx, p, ctx.Particle(qid)); ok {
					b.Insert(ev)
				}
			})
		}
	}

	for li, l := range ctx.Locals {
		ev := l.NextEvent(ctx, p)
		ev.LocalID = li
		if ev.Dt < InfDt {
			b.Insert(ev)
		}
	}

	top := b.Top()
	if top.Dt < InfDt {
		abs := ctx.Now + top.Dt
		s.nextTime[pid] = abs
		s.sorter.Update(pid, abs-s.epoch, top.Partner, top.Type)
	} else {
		s.nextTime[pid] = InfDt
		s.sorter.Remove(pid)
	}
}

// coreEvent predicts the binary hard-sphere collision between p and q,
// if any, expressed relative to ctx.Now (i.e. Dt, not absolute time).
func (s *Scheduler) coreEvent(ctx *Context, p, q *Particle) (Event, bool) {
	r := minimumImage(ctx, p.Pos.Sub(q.Pos))
	v := p.Vel.Sub(q.Vel)
	d := (p.Diameter + q.Diameter) / 2
	pair := PairData{P1: p, P2: q, R12: r, V12: v}
	dt, ok := ctx.Dynamics.GetSphereSphereRoot(pair, d*d)
	if !ok {
		return Event{}, false
	}
	return Event{
		Dt: dt, Type: EventCore, Owner: p.ID, Partner: q.ID,
		GlobalID: -1, LocalID: -1, SystemID: -1,
		counterOwner: p.Counter(), counterPartner: q.Counter(),
	}, true
}

// minimumImage folds r into the primary image the way ctx.BC would
// fold a position, used to keep analytic collision roots working on
// the nearest periodic copy of a neighbour rather than its raw
// (possibly many-box-widths-away) coordinate difference.
func minimumImage(ctx *Context, r Vec3) Vec3 {
	switch ctx.BC.(type) {
	case NoneBC:
		return r
	default:
		out := r
		for i := 0; i < 3; i++ {
			L := ctx.Dimensions[i]
			if L > 0 {
				out[i] = wrapAxis(out[i], L)
			}
		}
		return out
	}
}

func (s *Scheduler) rebuildSystemEvents() {
	s.nextSystemAt = make([]float64, len(s.ctx.Systems))
	for i := range s.ctx.Systems {
		s.scheduleSystem(i)
	}
}

// scheduleSystem asks System i for its next period and records the
// absolute instant that resolves to, fixing it until the system fires
// again — it must never be recomputed against a later ctx.Now, or the
// target recedes in lockstep with the clock and the system only ever
// fires in gaps between particle events longer than a whole period.
func (s *Scheduler) scheduleSystem(i int) {
	s.nextSystemAt[i] = s.ctx.Now + s.ctx.Systems[i].NextEventDt(s.ctx)
}

// nextSystemIdx returns the index of the soonest-firing system and its
// absolute time, or (-1, InfDt) if there are none.
func (s *Scheduler) nextSystemIdx() (int, float64) {
	best, bestT := -1, InfDt
	for i, t := range s.nextSystemAt {
		if t < bestT {
			best, bestT = i, t
		}
	}
	return best, bestT
}

// Step advances the simulation by exactly one event: move ctx.Now to
// the earliest pending particle or system event, update the BC and
// rebase the sorter by the elapsed time, run the event, and refresh the
// bundles it invalidated (particles themselves are streamed lazily by
// the Liouvillean when touched). Returns the event that ran and
// whether one was available at all (false if the system is quiescent).
func (s *Scheduler) Step() (Event, bool) {
	ctx := s.ctx

	pid := s.sorter.PeekMin()
	sysIdx, sysT := s.nextSystemIdx()

	particleT := InfDt
	if pid >= 0 {
		particleT = s.nextTime[pid]
	}
	if pid < 0 && sysIdx < 0 {
		return Event{}, false
	}

	fireSystem := sysIdx >= 0 && sysT <= particleT
	firedAt := particleT
	if fireSystem {
		firedAt = sysT
	}

	dt := firedAt - ctx.Now
	ctx.Now = firedAt
	ctx.BC.Update(dt)

	// Keep the sorter's keys a short offset from "now" rather than
	// letting them grow with ctx.Now across the run (spec.md §4.4
	// periodic rebase; see the epoch field doc).
	if elapsed := ctx.Now - s.epoch; elapsed != 0 {
		s.sorter.Rebase(elapsed)
		s.epoch = ctx.Now
	}

	if fireSystem {
		s.ctx.Systems[sysIdx].RunEvent(ctx, s)
		s.eventCount++
		s.scheduleSystem(sysIdx)
		return Event{Dt: dt, Type: EventSystem, Owner: -1, Partner: -1, GlobalID: -1, LocalID: -1, SystemID: sysIdx}, true
	}

	p := ctx.Particle(pid)
	ev := s.bundles[pid].Top()
	s.dispatch(p, ev)
	s.eventCount++
	return ev, true
}

// dispatch branches on ev's type tag directly (no virtual call),
// matching spec.md's "avoid virtual dispatch on the hot path" note,
// and is responsible for leaving every particle it touched with a
// freshly rebuilt bundle before returning.
func (s *Scheduler) dispatch(p *Particle, ev Event) {
	ctx := s.ctx
	switch ev.Type {
	case EventCore:
		q := ctx.Particle(ev.Partner)
		if p.Counter() != ev.counterOwner || q.Counter() != ev.counterPartner {
			// Stale event: one of the pair moved since this was
			// predicted (spec.md §4.4 lazy invalidation). Skip the
			// physics, just refresh the owner.
			ctx.Logger.Debugf("stale core event discarded: owner=%d partner=%d", p.ID, q.ID)
			s.FullUpdate(ctx, p.ID)
			return
		}
		ctx.Dynamics.UpdateParticle(ctx, p)
		ctx.Dynamics.UpdateParticle(ctx, q)

		sep := minimumImage(ctx, p.Pos.Sub(q.Pos)).Len()
		want := (p.Diameter + q.Diameter) / 2
		if drift := sep - want; math.Abs(drift) > 1e-9 {
			de := &RecoverableDrift{What: "sphere-sphere contact separation", Amount: drift}
			if math.Abs(drift) > 1e-6 {
				panic(&ConsistencyError{Invariant: "core-contact", Detail: de.Error()})
			}
			ctx.Logger.Warnf("%s", de.Error())
		}

		res := ctx.Dynamics.RunSmoothSphereCollision(p, q, 1.0)
		p.bumpCounter()
		q.bumpCounter()
		ctx.Observers.fireParticleUpdate(ParticleUpdate{
			Type: EventCore, Time: ctx.Now, P1: p.ID, P2: q.ID,
			DeltaP1: res.DeltaP1, DeltaP2: res.DeltaP2,
			DeltaKE1: res.DeltaKE1, DeltaKE2: res.DeltaKE2,
		})
		s.FullUpdate(ctx, p.ID)
		s.FullUpdate(ctx, q.ID)

	case EventCell, EventGlobal:
		// Bump before RunEvent: it ends by calling FullUpdate on p
		// itself, whose freshly generated events must record the
		// post-bump counter or they would read back as stale the
		// instant they're popped.
		p.bumpCounter()
		ctx.Globals[ev.GlobalID].RunEvent(ctx, s, p, ev)

	case EventLocal, EventWall:
		p.bumpCounter()
		res := ctx.Locals[ev.LocalID].RunEvent(ctx, s, p, ev)
		ctx.Observers.fireParticleUpdate(ParticleUpdate{
			Type: ev.Type, Time: ctx.Now, P1: p.ID, P2: -1,
			DeltaP1: res.DeltaP1, DeltaKE1: res.DeltaKE1,
		})
		s.FullUpdate(ctx, p.ID)

	case EventVirtual:
		ctx.Dynamics.UpdateParticle(ctx, p)
		s.FullUpdate(ctx, p.ID)

	default:
		panic(&ConsistencyError{Invariant: "dispatch", Detail: "unhandled event type " + ev.Type.String()})
	}
}

// Run steps the scheduler until ctx.Now reaches tMax or the system
// goes quiescent (no particle or system has any pending event), and
// returns the number of events it ran.
func (s *Scheduler) Run(tMax float64) int64 {
	start := s.eventCount
	for s.ctx.Now < tMax {
		if _, ok := s.Step(); !ok {
			s.ctx.Logger.Infof("run quiescent at t=%.6g after %d events", s.ctx.Now, s.eventCount-start)
			break
		}
	}
	return s.eventCount - start
}

// EventCount reports how many events this scheduler has executed since
// construction.
func (s *Scheduler) EventCount() int64 { return s.eventCount }

// setuper/setuperErr let Reinitialise rebuild whichever concrete Global
// variants are installed (Cells/MortonCells return no error from Setup,
// SOCells can) without the scheduler needing to know which one it is.
type setuper interface{ Setup(ctx *Context) }
type setuperErr interface{ Setup(ctx *Context) error }

// Reinitialise rebuilds every spatial Global from scratch — spec.md §3:
// "Cells are recreated in full on reinitialise (when the maximum
// interaction length grows)" — then regenerates every particle's bundle
// and the system schedule, and fires the reInit observer (spec.md §4.6
// sigReInit) so configuration-I/O and output-plugin observers know to
// drop any cached cell-derived state.
func (s *Scheduler) Reinitialise(maxInteractionRange float64) error {
	ctx := s.ctx
	if maxInteractionRange > ctx.MaxInteractionRange {
		ctx.MaxInteractionRange = maxInteractionRange
	}
	for _, g := range ctx.Globals {
		switch sg := g.(type) {
		case setuperErr:
			if err := sg.Setup(ctx); err != nil {
				return err
			}
		case setuper:
			sg.Setup(ctx)
		}
	}
	s.Init()
	ctx.Logger.Infof("reinitialised at t=%.6g: max interaction range now %.6g", ctx.Now, ctx.MaxInteractionRange)
	ctx.Observers.fireReInit()
	return nil
}
