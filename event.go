package dynamica

import "math"

// EventType tags the kind of physics an Event represents. The scheduler
// branches on this tag directly (spec.md Design Notes: "virtual dispatch
// on the hot path is to be avoided").
type EventType uint8

const (
	EventNone EventType = iota
	EventCore           // hard binary collision
	EventWellIn
	EventWellOut
	EventCell // neighbour-list cell-boundary crossing
	EventWall
	EventLocal   // local object (wall/sphere/triangle mesh) event
	EventGlobal  // global-owned event other than a cell crossing
	EventSystem  // system (ticker, thermostat, ...) event
	EventVirtual // no physics, forces recomputation (e.g. parabola sentinel)
	EventSleep
)

func (t EventType) String() string {
	switch t {
	case EventCore:
		return "CORE"
	case EventWellIn:
		return "WELL_IN"
	case EventWellOut:
		return "WELL_OUT"
	case EventCell:
		return "CELL"
	case EventWall:
		return "WALL"
	case EventLocal:
		return "LOCAL"
	case EventGlobal:
		return "GLOBAL"
	case EventSystem:
		return "SYSTEM"
	case EventVirtual:
		return "VIRTUAL"
	case EventSleep:
		return "SLEEP"
	default:
		return "NONE"
	}
}

// InfDt is the sentinel "no event currently scheduled" key. It compares
// greater than any finite key, per spec.md §4.4.
const InfDt = math.MaxFloat64

// Event is the discriminated event record of spec.md §3. Dt is relative
// to the simulation time at which the event was predicted (the
// FullUpdate that built the owning bundle, less any later
// Bundle.Stream); a negative Dt is a bug, never a valid state.
type Event struct {
	Dt      float64
	Type    EventType
	Owner   int // particle id this event was generated for
	Partner int // partner particle id, or -1 for non-binary events

	GlobalID int // index into Context.Globals, or -1
	LocalID  int // index into Context.Locals, or -1
	SystemID int // index into Context.Systems, or -1
	Extra    int64

	// counterOwner/counterPartner snapshot the involved particles'
	// lazy-invalidation counters at enqueue time.
	counterOwner   uint64
	counterPartner uint64
}

// NoneEvent returns the sentinel "nothing pending" event for pid.
func NoneEvent(pid int) Event {
	return Event{Dt: InfDt, Type: EventNone, Owner: pid, Partner: -1, GlobalID: -1, LocalID: -1, SystemID: -1}
}

// Bundle is the per-particle event list ("pList") of spec.md §3: a
// small priority-ordered list of pending events the particle owns. It
// is small (a handful of entries: next interaction, next cell event,
// next local/global events) so a sorted slice with linear insert beats
// a heap in both constant factor and code size.
type Bundle struct {
	events []Event
}

// NewBundle returns an empty bundle for a particle.
func NewBundle() *Bundle { return &Bundle{} }

// Top returns the earliest-firing event in the bundle, or the sentinel
// NoneEvent if the bundle is empty.
func (b *Bundle) Top() Event {
	if len(b.events) == 0 {
		return NoneEvent(-1)
	}
	return b.events[0]
}

// Reset clears the bundle, used at the start of fullUpdate before the
// caller re-populates it.
func (b *Bundle) Reset() {
	b.events = b.events[:0]
}

// Insert adds e to the bundle, keeping events sorted ascending by Dt.
func (b *Bundle) Insert(e Event) {
	i := 0
	for i < len(b.events) && b.events[i].Dt <= e.Dt {
		i++
	}
	b.events = append(b.events, Event{})
	copy(b.events[i+1:], b.events[i:])
	b.events[i] = e
}

// Stream subtracts dt from every event's Dt in the bundle. Negative
// results are a numerical-error bug (spec.md §4.4 failure semantics);
// callers must only invoke this with a dt that was itself derived from
// Top().Dt (i.e. never overshoots the nearest event).
func (b *Bundle) Stream(dt float64) {
	for i := range b.events {
		b.events[i].Dt -= dt
		if b.events[i].Dt < -1e-9 {
			panic("dynamica: bundle event dt went negative during stream")
		}
		if b.events[i].Dt < 0 {
			b.events[i].Dt = 0
		}
	}
}

// Len reports the number of pending events in the bundle.
func (b *Bundle) Len() int { return len(b.events) }

// Events exposes the bundle's events, in ascending Dt order, for
// read-only iteration.
func (b *Bundle) Events() []Event { return b.events }
