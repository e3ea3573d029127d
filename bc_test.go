package dynamica

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodicBCWrapsIntoPrimaryImage(t *testing.T) {
	bc := NewPeriodicBC(Vec3{10, 10, 10})
	pos := Vec3{6, -7, 0}
	bc.ApplyBC(&pos)
	assert.InDelta(t, -4.0, pos[0], 1e-9)
	assert.InDelta(t, 3.0, pos[1], 1e-9)
	assert.InDelta(t, 0.0, pos[2], 1e-9)
}

func TestNoneBCIsIdentity(t *testing.T) {
	bc := NoneBC{}
	pos := Vec3{123, -45, 6}
	want := pos
	bc.ApplyBC(&pos)
	assert.Equal(t, want, pos)
}

func TestLeesEdwardsShearKickOnYWrap(t *testing.T) {
	l := NewLeesEdwardsBC(Vec3{10, 10, 10}, 0.5)
	l.Update(1.0) // offset = 0.5 * 10 * 1 = 5

	pos := Vec3{0, 6, 0}
	vel := Vec3{0, 1, 0}
	l.ApplyBCVel(&pos, &vel)

	// Crossed one y-boundary (rounds to 1), so x picks up -offset and
	// vx picks up -ShearRate*Ly.
	assert.InDelta(t, -5.0, pos[0], 1e-9)
	assert.InDelta(t, -5.0, vel[0], 1e-9)
	assert.InDelta(t, -4.0, pos[1], 1e-9)
}

func TestRangesInteracts(t *testing.T) {
	assert.True(t, Interacts(nil, 0, 5))

	ranges := []Range{ChainsRange{Chains: [][2]int{{0, 3}}}}
	assert.True(t, Interacts(ranges, 1, 2))
	assert.False(t, Interacts(ranges, 1, 5))
}

func TestAllNoneRange(t *testing.T) {
	assert.True(t, AllRange{}.Contains(42))
	assert.False(t, NoneRange{}.Contains(42))
}
