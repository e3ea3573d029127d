package dynamica

// ParticleUpdate is the event-data record handed to particleUpdate
// observers once per executed event (spec.md §4.6).
type ParticleUpdate struct {
	Type       EventType
	Time       float64
	P1, P2     int // particle ids; P2 is -1 for non-binary events
	DeltaP1    Vec3
	DeltaP2    Vec3
	DeltaKE1   float64
	DeltaKE2   float64
}

// Observers holds the append-only callback lists of spec.md §4.6.
// Registration happens at setup; observers are never consulted to
// decide control flow and must not mutate particle state themselves.
type Observers struct {
	particleUpdate []func(ParticleUpdate)
	newNeighbour   []func(p, q int)
	newLocal       []func(p, localID int)
	cellChanged    []func(p, oldCell int)
	reInit         []func()
}

func (o *Observers) OnParticleUpdate(fn func(ParticleUpdate)) { o.particleUpdate = append(o.particleUpdate, fn) }
func (o *Observers) OnNewNeighbour(fn func(p, q int))         { o.newNeighbour = append(o.newNeighbour, fn) }
func (o *Observers) OnNewLocal(fn func(p, localID int))       { o.newLocal = append(o.newLocal, fn) }
func (o *Observers) OnCellChanged(fn func(p, oldCell int))    { o.cellChanged = append(o.cellChanged, fn) }
func (o *Observers) OnReInit(fn func())                       { o.reInit = append(o.reInit, fn) }

func (o *Observers) fireParticleUpdate(u ParticleUpdate) {
	for _, fn := range o.particleUpdate {
		fn(u)
	}
}

func (o *Observers) fireNewNeighbour(p, q int) {
	for _, fn := range o.newNeighbour {
		fn(p, q)
	}
}

func (o *Observers) fireNewLocal(p, localID int) {
	for _, fn := range o.newLocal {
		fn(p, localID)
	}
}

func (o *Observers) fireCellChanged(p, oldCell int) {
	for _, fn := range o.cellChanged {
		fn(p, oldCell)
	}
}

func (o *Observers) fireReInit() {
	for _, fn := range o.reInit {
		fn()
	}
}
