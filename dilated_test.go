package dynamica

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDilatedIntRoundTrip(t *testing.T) {
	for x := 0; x < 8; x++ {
		d := NewDilatedInt(x, 8)
		assert.Equal(t, x, d.Value())
	}
}

func TestDilatedIntIncWrapsAtMax(t *testing.T) {
	d := NewDilatedInt(7, 8) // max coordinate for n=8 is 7
	wrapped := d.Inc()
	assert.Equal(t, 0, wrapped.Value())
}

func TestDilatedIntDecWrapsAtZero(t *testing.T) {
	d := NewDilatedInt(0, 8)
	wrapped := d.Dec()
	assert.Equal(t, 7, wrapped.Value())
}

func TestDilatedIntIncDecRoundTrip(t *testing.T) {
	d := NewDilatedInt(3, 8)
	assert.Equal(t, 3, d.Inc().Dec().Value())
}

func TestMortonIDOrdersByAxisIndependently(t *testing.T) {
	m := NewMortonCells("morton")
	m.NC = [3]int{4, 4, 4}
	id000 := m.mortonID([3]int{0, 0, 0})
	id100 := m.mortonID([3]int{1, 0, 0})
	id010 := m.mortonID([3]int{0, 1, 0})
	id001 := m.mortonID([3]int{0, 0, 1})
	assert.Equal(t, 0, id000)
	assert.NotEqual(t, id000, id100)
	assert.NotEqual(t, id000, id010)
	assert.NotEqual(t, id000, id001)
	assert.NotEqual(t, id100, id010)
}
