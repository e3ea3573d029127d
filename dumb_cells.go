package dynamica

// DumbCells is the brute-force Global of SPEC_FULL.md's "Dumb neighbour
// global" entry: it owns no spatial partition at all and simply offers
// every other dynamic particle as a neighbour candidate, trading O(N)
// candidate generation per fullUpdate for zero setup cost and no cell
// bookkeeping. Grounded in DynamO's dynamics/schedulers/dumbsched.hpp
// (scan every particle pair, no acceleration structure) adapted here
// to the Global vocabulary rather than living in the scheduler itself,
// so it can be swapped for Cells/SOCells/MortonCells without touching
// Scheduler.
//
// It never predicts an event of its own (NextEvent always returns the
// sentinel), since it has no cell boundary to cross; it exists purely
// to implement neighbourGlobal.
type DumbCells struct {
	globalName string
	globalIdx  int
}

func NewDumbCells(name string) *DumbCells {
	return &DumbCells{globalName: name}
}

func (d *DumbCells) Name() string { return d.globalName }

func (d *DumbCells) NextEvent(ctx *Context, sched *Scheduler, p *Particle) Event {
	return NoneEvent(p.ID)
}

func (d *DumbCells) RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event) {}

func (d *DumbCells) ForEachNeighbour(ctx *Context, pid int, fn func(qid int)) {
	for _, q := range ctx.Particles {
		if q.ID != pid && q.IsDynamic() {
			fn(q.ID)
		}
	}
}
