package dynamica

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmallestPositiveRootQuadratic(t *testing.T) {
	// t^2 - 3t + 2 = 0 -> roots 1, 2; smallest positive is 1
	t1, ok := smallestPositiveRoot(1, -3, 2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, t1, 1e-9)
}

func TestSmallestPositiveRootLinear(t *testing.T) {
	// 2t - 4 = 0 -> t = 2
	t1, ok := smallestPositiveRoot(0, 2, -4)
	require.True(t, ok)
	assert.InDelta(t, 2.0, t1, 1e-9)
}

func TestSmallestPositiveRootNoPositiveRoot(t *testing.T) {
	_, ok := smallestPositiveRoot(1, 5, 6) // roots -2, -3
	assert.False(t, ok)
}

func TestSphereSphereRootRequiresApproach(t *testing.T) {
	pair := PairData{
		R12: Vec3{2, 0, 0},
		V12: Vec3{1, 0, 0}, // separating
	}
	_, ok := sphereSphereRoot(pair, 1)
	assert.False(t, ok)
}

func TestSphereSphereRootHeadOn(t *testing.T) {
	// Two unit-diameter spheres, centres 3 apart on x, closing at speed 1.
	pair := PairData{
		R12: Vec3{3, 0, 0},
		V12: Vec3{-1, 0, 0},
	}
	dt, ok := sphereSphereRoot(pair, 1) // dSq = 1 (diameter 1)
	require.True(t, ok)
	assert.InDelta(t, 2.0, dt, 1e-9)
}

func TestNewtonianHeadOnCollisionConservesMomentum(t *testing.T) {
	p1 := NewParticle(0, Vec3{-2, 0, 0}, Vec3{1, 0, 0})
	p2 := NewParticle(1, Vec3{2, 0, 0}, Vec3{-1, 0, 0})

	l := NewNewtonianLiouvillean()
	pair := PairData{P1: p1, P2: p2, R12: p1.Pos.Sub(p2.Pos), V12: p1.Vel.Sub(p2.Vel)}
	dt, ok := l.GetSphereSphereRoot(pair, 1)
	require.True(t, ok)

	l.Stream(p1, dt)
	l.Stream(p2, dt)

	pBefore := p1.Vel.Add(p2.Vel)
	res := l.RunSmoothSphereCollision(p1, p2, 1.0)
	pAfter := p1.Vel.Add(p2.Vel)

	assert.InDelta(t, 0.0, pBefore.Sub(pAfter).Len(), 1e-9)
	// Equal unit masses, elastic, head-on: velocities should exchange.
	assert.InDelta(t, -1.0, p1.Vel.X(), 1e-9)
	assert.InDelta(t, 1.0, p2.Vel.X(), 1e-9)
	assert.True(t, math.Abs(res.DeltaKE1+res.DeltaKE2) < 1e-9)
}

func TestWallCollisionImpulseReflectsNormalComponent(t *testing.T) {
	p := NewParticle(0, Vec3{0, 0, 0}, Vec3{1, -2, 0})
	n := Vec3{0, 1, 0}
	res := wallCollisionImpulse(p, n, 1.0)
	assert.InDelta(t, 1.0, p.Vel.X(), 1e-9)
	assert.InDelta(t, 2.0, p.Vel.Y(), 1e-9)
	assert.InDelta(t, 0.0, res.DeltaKE1, 1e-6)
}
