package dynamica

// Ticker is a System that fires at a fixed period, independent of any
// particle, used to drive periodic sampling/logging hooks. Grounded in
// DynamO's dynamics/systems/ticker.cpp.
type Ticker struct {
	sysName string
	Period  float64

	onTick []func(ctx *Context)
}

func NewTicker(name string, period float64) *Ticker {
	return &Ticker{sysName: name, Period: period}
}

func (t *Ticker) Name() string { return t.sysName }

// OnTick registers a callback run every time the ticker fires.
func (t *Ticker) OnTick(fn func(ctx *Context)) {
	t.onTick = append(t.onTick, fn)
}

func (t *Ticker) NextEventDt(ctx *Context) float64 {
	if t.Period <= 0 {
		return InfDt
	}
	return t.Period
}

func (t *Ticker) RunEvent(ctx *Context, sched *Scheduler) {
	for _, fn := range t.onTick {
		fn(ctx)
	}
}

// ParabolaSentinel is a Global that owns no physical collision at all:
// under gravity, the quadratic collision predictors used for cells and
// walls are only valid up to the trajectory's apex (past it the sign
// of velocity-along-gravity flips and a previously-impossible face can
// become reachable again), so this global injects a virtual event at
// each particle's apex time purely to force Scheduler.FullUpdate to
// re-run there. Grounded in DynamO's dynamics/globals/PBCSentinel.cpp
// (renamed here since this variant is gravity-apex triggered, not a
// periodic-boundary one).
type ParabolaSentinel struct {
	globalName string
	globalIdx  int
}

func NewParabolaSentinel(name string) *ParabolaSentinel {
	return &ParabolaSentinel{globalName: name}
}

func (s *ParabolaSentinel) Name() string { return s.globalName }

func (s *ParabolaSentinel) NextEvent(ctx *Context, sched *Scheduler, p *Particle) Event {
	g, ok := ctx.Dynamics.(*NewtonianGravityLiouvillean)
	if !ok {
		return NoneEvent(p.ID)
	}
	t, ok := g.ApexTime(p)
	if !ok {
		return NoneEvent(p.ID)
	}
	return Event{Dt: t, Type: EventVirtual, Owner: p.ID, Partner: -1, GlobalID: s.globalIdx, LocalID: -1, SystemID: -1}
}

func (s *ParabolaSentinel) RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event) {
	ctx.Dynamics.UpdateParticle(ctx, p)
	sched.FullUpdate(ctx, p.ID)
}
