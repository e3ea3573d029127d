package dynamica

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleInsertKeepsAscendingOrder(t *testing.T) {
	b := NewBundle()
	b.Insert(Event{Dt: 5, Owner: 1})
	b.Insert(Event{Dt: 1, Owner: 1})
	b.Insert(Event{Dt: 3, Owner: 1})

	require.Equal(t, 3, b.Len())
	dts := make([]float64, 0, 3)
	for _, e := range b.Events() {
		dts = append(dts, e.Dt)
	}
	assert.Equal(t, []float64{1, 3, 5}, dts)
	assert.Equal(t, 1.0, b.Top().Dt)
}

func TestBundleTopOnEmptyIsNoneEvent(t *testing.T) {
	b := NewBundle()
	top := b.Top()
	assert.Equal(t, EventNone, top.Type)
	assert.Equal(t, InfDt, top.Dt)
}

func TestBundleStreamSubtractsFromEveryEvent(t *testing.T) {
	b := NewBundle()
	b.Insert(Event{Dt: 5})
	b.Insert(Event{Dt: 2})
	b.Stream(2)
	assert.Equal(t, 0.0, b.Top().Dt)
	assert.Equal(t, 3.0, b.Events()[1].Dt)
}

func TestBundleStreamPastNearestEventPanics(t *testing.T) {
	b := NewBundle()
	b.Insert(Event{Dt: 1})
	assert.Panics(t, func() { b.Stream(2) })
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "CORE", EventCore.String())
	assert.Equal(t, "NONE", EventNone.String())
}
