package dynamica

import "math"

// SOCells is the single-occupancy neighbour list of spec.md §4.3: used
// for frozen lattices, where each particle is the sole occupant of a
// cell indexed by its own id and a cell-exit event reflects the
// particle off the cell wall instead of relocating it. Requires N to
// be a perfect cube.
type SOCells struct {
	globalName string
	globalIdx  int

	NC       [3]int
	CellSize Vec3
	// Restitution applied on the reflecting cell wall.
	Restitution float64
	// Overlink is the neighbour search radius in lattice cells, used by
	// ForEachNeighbour.
	Overlink int
}

// NewSOCells constructs an SOCells global; N (len(ctx.Particles)) must
// be a perfect cube once Setup is called, per spec.md §4.3.
func NewSOCells(name string) *SOCells {
	return &SOCells{globalName: name, Restitution: 1.0, Overlink: 1}
}

func (s *SOCells) Name() string { return s.globalName }

// Setup validates N is a perfect cube and assigns each particle its own
// cell by id, in row-major (x fastest) order to match Cells' layout.
func (s *SOCells) Setup(ctx *Context) error {
	n := len(ctx.Particles)
	root := int(math.Round(math.Cbrt(float64(n))))
	if root*root*root != n {
		return &ConfigError{Attr: "N", Msg: "SOCells requires N to be a perfect cube"}
	}
	s.NC = [3]int{root, root, root}
	for i := 0; i < 3; i++ {
		s.CellSize[i] = ctx.Dimensions[i] / float64(root)
	}
	return nil
}

func (s *SOCells) coordsOf(pid int) [3]int {
	x := pid % s.NC[0]
	y := (pid / s.NC[0]) % s.NC[1]
	z := pid / (s.NC[0] * s.NC[1])
	return [3]int{x, y, z}
}

func (s *SOCells) origin(coords [3]int, ctx *Context) Vec3 {
	var o Vec3
	for i := 0; i < 3; i++ {
		o[i] = -ctx.Dimensions[i]/2 + float64(coords[i])*s.CellSize[i]
	}
	return o
}

func (s *SOCells) NextEvent(ctx *Context, sched *Scheduler, p *Particle) Event {
	origin := s.origin(s.coordsOf(p.ID), ctx)
	t := ctx.Dynamics.GetSquareCellCollisionTime(p, origin, s.CellSize)
	return Event{Dt: t, Type: EventCell, Owner: p.ID, Partner: -1, GlobalID: s.globalIdx, LocalID: -1, SystemID: -1}
}

func (s *SOCells) RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event) {
	ctx.Dynamics.UpdateParticle(ctx, p)

	origin := s.origin(s.coordsOf(p.ID), ctx)
	dir := ctx.Dynamics.GetSquareCellCollisionDir(p, origin, s.CellSize)
	if dir != 0 {
		axis := abs(dir) - 1
		n := vzero()
		n[axis] = 1
		res := ctx.Dynamics.RunWallCollision(p, n, s.Restitution)
		ctx.Observers.fireParticleUpdate(ParticleUpdate{
			Type: EventCell, Time: ctx.Now, P1: p.ID, P2: -1,
			DeltaP1: res.DeltaP1, DeltaKE1: res.DeltaKE1,
		})
	}

	sched.FullUpdate(ctx, p.ID)
}

// ForEachNeighbour visits every particle whose lattice cell lies within
// s.Overlink cells of pid's own lattice cell.
func (s *SOCells) ForEachNeighbour(ctx *Context, pid int, fn func(qid int)) {
	coords := s.coordsOf(pid)
	overlink := s.Overlink
	for dz := -overlink; dz <= overlink; dz++ {
		for dy := -overlink; dy <= overlink; dy++ {
			for dx := -overlink; dx <= overlink; dx++ {
				x, y, z := coords[0]+dx, coords[1]+dy, coords[2]+dz
				if x < 0 || x >= s.NC[0] || y < 0 || y >= s.NC[1] || z < 0 || z >= s.NC[2] {
					continue
				}
				qid := x + y*s.NC[0] + z*s.NC[0]*s.NC[1]
				if qid != pid {
					fn(qid)
				}
			}
		}
	}
}
