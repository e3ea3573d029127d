package dynamica

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCellsTestContext() (*Context, *Cells) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{30, 30, 30}
	ctx.MaxInteractionRange = 1
	ctx.Dynamics = NewNewtonianLiouvillean()
	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{-14, 0, 0}, Vec3{0, 0, 0}),
		NewParticle(1, Vec3{-13, 0, 0}, Vec3{0, 0, 0}),
		NewParticle(2, Vec3{13, 13, 13}, Vec3{0, 0, 0}),
	}
	c := NewCells("cells")
	c.Setup(ctx)
	ctx.Globals = []Global{c}
	return ctx, c
}

func TestCellsEveryParticleIsInItsOwnCellList(t *testing.T) {
	ctx, c := newCellsTestContext()
	for _, p := range ctx.Particles {
		cid := c.CellOf(ctx, p.ID)
		members := c.CellMembers(cid)
		assert.Contains(t, members, p.ID)
	}
}

func TestCellsNeighboursOfCloseParticlesAreFoundNotFarOnes(t *testing.T) {
	ctx, c := newCellsTestContext()
	var neighbours []int
	c.ForEachNeighbour(ctx, 0, func(qid int) { neighbours = append(neighbours, qid) })

	assert.Contains(t, neighbours, 1)
	assert.NotContains(t, neighbours, 2)
}

func TestCellsForEachNeighbourCrossesShearedYBoundary(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{10, 10, 10}
	ctx.MaxInteractionRange = 1
	ctx.Dynamics = NewNewtonianLiouvillean()

	le := NewLeesEdwardsBC(ctx.Dimensions, 0)
	le.offset = 3 // exact multiple of the cell width, so the bracket collapses to one image
	ctx.BC = le

	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{0, 4.9, 0}, vzero()),
		NewParticle(1, Vec3{3, -4.9, 0}, vzero()),
	}
	c := NewCells("cells")
	c.Setup(ctx)
	ctx.Globals = []Global{c}

	var neighbours []int
	c.ForEachNeighbour(ctx, 0, func(qid int) { neighbours = append(neighbours, qid) })
	assert.Contains(t, neighbours, 1)
}

func TestCellCountForClampsRange(t *testing.T) {
	assert.Equal(t, 3, cellCountFor(10, 100, 1))  // would be 0, clamp to 3
	assert.Equal(t, 255, cellCountFor(10000, 1, 1)) // would be huge, clamp to 255
}

func TestWrapCoordWrapsBothDirections(t *testing.T) {
	assert.Equal(t, 0, wrapCoord(5, 5))
	assert.Equal(t, 4, wrapCoord(-1, 5))
	assert.Equal(t, 2, wrapCoord(2, 5))
}

func TestSOCellsRequiresPerfectCube(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{10, 10, 10}
	ctx.Particles = make([]*Particle, 10) // not a perfect cube
	for i := range ctx.Particles {
		ctx.Particles[i] = NewParticle(i, vzero(), vzero())
	}
	s := NewSOCells("so")
	err := s.Setup(ctx)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSOCellsAcceptsPerfectCube(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{9, 9, 9}
	ctx.Particles = make([]*Particle, 27) // 3^3
	for i := range ctx.Particles {
		ctx.Particles[i] = NewParticle(i, vzero(), vzero())
	}
	s := NewSOCells("so")
	require.NoError(t, s.Setup(ctx))
	assert.Equal(t, [3]int{3, 3, 3}, s.NC)
}
