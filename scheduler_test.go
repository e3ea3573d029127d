package dynamica

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoSphereContext() *Context {
	ctx := NewContext()
	ctx.Dimensions = Vec3{100, 100, 100}
	ctx.MaxInteractionRange = 2
	ctx.Dynamics = NewNewtonianLiouvillean()
	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{-5, 0, 0}, Vec3{1, 0, 0}),
		NewParticle(1, Vec3{5, 0, 0}, Vec3{-1, 0, 0}),
	}
	ctx.Globals = []Global{NewDumbCells("dumb")}
	return ctx
}

func TestSchedulerTwoSpheresHeadOnCollide(t *testing.T) {
	ctx := newTwoSphereContext()
	sched := NewScheduler(ctx, NewCBTSorter())
	sched.Init()

	var fired []ParticleUpdate
	ctx.Observers.OnParticleUpdate(func(u ParticleUpdate) { fired = append(fired, u) })

	n := sched.Run(100)
	require.GreaterOrEqual(t, n, int64(1))
	require.NotEmpty(t, fired)

	assert.Equal(t, EventCore, fired[0].Type)
	// Elastic equal-mass head-on collision exchanges velocities.
	assert.InDelta(t, -1.0, ctx.Particles[0].Vel.X(), 1e-6)
	assert.InDelta(t, 1.0, ctx.Particles[1].Vel.X(), 1e-6)
}

func TestSchedulerStaleEventIsSkippedAfterCounterBump(t *testing.T) {
	ctx := newTwoSphereContext()
	sched := NewScheduler(ctx, NewCBTSorter())
	sched.Init()

	p := ctx.Particles[0]
	stale := Event{Dt: 0, Type: EventCore, Owner: 0, Partner: 1, GlobalID: -1, LocalID: -1, SystemID: -1, counterOwner: p.Counter() + 1, counterPartner: ctx.Particles[1].Counter()}

	assert.NotPanics(t, func() { sched.dispatch(p, stale) })
}

func TestSchedulerReinitialiseRebuildsCellsAndFiresReInit(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{30, 30, 30}
	ctx.MaxInteractionRange = 1
	ctx.Dynamics = NewNewtonianLiouvillean()
	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{-10, 0, 0}, Vec3{0, 0, 0}),
		NewParticle(1, Vec3{10, 0, 0}, Vec3{0, 0, 0}),
	}
	cells := NewCells("cells")
	cells.Setup(ctx)
	ctx.Globals = []Global{cells}

	sched := NewScheduler(ctx, NewCBTSorter())
	sched.Init()
	oldNC := cells.NC

	fired := false
	ctx.Observers.OnReInit(func() { fired = true })

	require.NoError(t, sched.Reinitialise(10))
	assert.True(t, fired)
	assert.Equal(t, 10.0, ctx.MaxInteractionRange)
	// A ten-fold larger interaction range forces a much coarser grid.
	assert.NotEqual(t, oldNC, cells.NC)
}

func TestSchedulerWithCalendarSorterAlsoCollides(t *testing.T) {
	ctx := newTwoSphereContext()
	sched := NewScheduler(ctx, NewCalendarSorter(16, 1.0))
	sched.Init()

	n := sched.Run(100)
	assert.GreaterOrEqual(t, n, int64(1))
	assert.InDelta(t, -1.0, ctx.Particles[0].Vel.X(), 1e-6)
}
