package dynamica

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenLoadXMLRoundTrip(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{20, 20, 20}
	ctx.BC = NewPeriodicBC(ctx.Dimensions)
	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{1, 2, 3}, Vec3{0.5, -0.5, 0}),
		NewParticle(1, Vec3{-1, -2, -3}, Vec3{0, 1, 0}),
	}

	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, ctx.WriteXML(path, false, false))

	loaded, err := LoadXML(path)
	require.NoError(t, err)
	require.Len(t, loaded.Particles, 2)

	assert.InDelta(t, 1.0, loaded.Particles[0].Pos.X(), 1e-9)
	assert.InDelta(t, 2.0, loaded.Particles[0].Pos.Y(), 1e-9)
	assert.InDelta(t, 0.5, loaded.Particles[0].Vel.X(), 1e-9)
	assert.InDelta(t, -3.0, loaded.Particles[1].Pos.Z(), 1e-9)

	_, ok := loaded.BC.(*PeriodicBC)
	assert.True(t, ok)
}

func TestWriteXMLApplyBCFoldsPositionWithoutMutatingOriginal(t *testing.T) {
	ctx := NewContext()
	ctx.Dimensions = Vec3{10, 10, 10}
	ctx.BC = NewPeriodicBC(ctx.Dimensions)
	ctx.Particles = []*Particle{
		NewParticle(0, Vec3{7, 0, 0}, Vec3{1, 0, 0}), // outside the primary image on x
	}

	path := filepath.Join(t.TempDir(), "applybc.xml")
	require.NoError(t, ctx.WriteXML(path, true, false))

	// The written snapshot is folded into [-5, 5); the live particle is
	// untouched.
	assert.InDelta(t, 7.0, ctx.Particles[0].Pos.X(), 1e-9)

	loaded, err := LoadXML(path)
	require.NoError(t, err)
	assert.InDelta(t, -3.0, loaded.Particles[0].Pos.X(), 1e-9)
}

func TestLoadXMLRejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<not-xml"), 0o644))

	_, err := LoadXML(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
