package dynamica

import "math"

// MortonCells is the Morton/Z-order-coded variant of the neighbour list
// (spec.md §4.3 "Morton variant details"): the per-axis cell coordinate
// is stored bit-dilated, so the cell id is the OR of the three dilated
// axis coordinates shifted by 0/1/2 bits, and neighbour-cell traversal
// becomes plain increment/decrement on a DilatedInt rather than
// integer multiplication.
//
// Functionally it behaves exactly like Cells (same insert/remove/
// neighbour-iteration contract); only the cell-id encoding and the
// neighbour walk differ, which is why it shares the same RunEvent
// structure rather than duplicating spec.md §4.3 steps 1-8 verbatim.
type MortonCells struct {
	globalName string
	globalIdx  int

	NC       [3]int
	CellSize Vec3
	Overlink int
	Lambda   float64

	head []int
	next []int
	prev []int
}

func NewMortonCells(name string) *MortonCells {
	return &MortonCells{globalName: name, Overlink: 1, Lambda: 0.9}
}

func (m *MortonCells) Name() string { return m.globalName }

func (m *MortonCells) mortonID(coords [3]int) int {
	dx := NewDilatedInt(coords[0], m.NC[0])
	dy := NewDilatedInt(coords[1], m.NC[1])
	dz := NewDilatedInt(coords[2], m.NC[2])
	return int(dx.v | (dy.v << 1) | (dz.v << 2))
}

func (m *MortonCells) Setup(ctx *Context) {
	n := cellCountFor(minAxis(ctx.Dimensions), ctx.MaxInteractionRange, m.Overlink)
	m.NC = [3]int{n, n, n}
	for i := 0; i < 3; i++ {
		m.CellSize[i] = ctx.Dimensions[i] / float64(n)
	}

	// The dilated coordinate space is sparse (every third bit); size
	// the flat arrays by the largest Morton code any of the NC^3 valid
	// coordinates can produce, not by NC^3 itself, and leave the
	// padding cells permanently empty, per spec.md §4.3 "the Morton
	// variant rounds up to the next dilation power and ignores padding
	// cells".
	maxCode := m.mortonID([3]int{n - 1, n - 1, n - 1})
	m.head = make([]int, maxCode+1)
	for i := range m.head {
		m.head[i] = -1
	}
	m.next = make([]int, len(ctx.Particles))
	m.prev = make([]int, len(ctx.Particles))
	for i := range m.next {
		m.next[i] = -1
		m.prev[i] = -1
	}

	for _, p := range ctx.Particles {
		if !p.IsDynamic() {
			continue
		}
		coords := m.coordsOfPos(ctx, p.Pos)
		m.insert(p.ID, m.mortonID(coords))
	}
}

func (m *MortonCells) coordsOfPos(ctx *Context, pos Vec3) [3]int {
	var coords [3]int
	for i := 0; i < 3; i++ {
		half := ctx.Dimensions[i] / 2
		idx := int(math.Floor((pos[i] + half) / m.CellSize[i]))
		coords[i] = wrapCoord(idx, m.NC[i])
	}
	return coords
}

func (m *MortonCells) cellOrigin(coords [3]int, ctx *Context) Vec3 {
	var origin Vec3
	for i := 0; i < 3; i++ {
		origin[i] = -ctx.Dimensions[i]/2 + float64(coords[i])*m.CellSize[i]
	}
	return origin
}

func (m *MortonCells) insert(pid, cellID int) {
	m.prev[pid] = -1
	m.next[pid] = m.head[cellID]
	if m.head[cellID] != -1 {
		m.prev[m.head[cellID]] = pid
	}
	m.head[cellID] = pid
}

func (m *MortonCells) remove(pid, cellID int) {
	if m.prev[pid] != -1 {
		m.next[m.prev[pid]] = m.next[pid]
	} else {
		m.head[cellID] = m.next[pid]
	}
	if m.next[pid] != -1 {
		m.prev[m.next[pid]] = m.prev[pid]
	}
	m.next[pid] = -1
	m.prev[pid] = -1
}

func (m *MortonCells) CellOf(ctx *Context, pid int) int {
	return m.mortonID(m.coordsOfPos(ctx, ctx.Particle(pid).Pos))
}

func (m *MortonCells) CellMembers(cellID int) []int {
	var out []int
	for pid := m.head[cellID]; pid != -1; pid = m.next[pid] {
		out = append(out, pid)
	}
	return out
}

// ForEachNeighbour walks the (2*overlink+1)^3 block via increment/
// decrement on each axis's DilatedInt, per spec.md's "neighbour cell
// traversal becomes increment-on-dilated-integer" design. Under
// LeesEdwardsBC, a y step that wraps is additionally bracketed by the
// (at most two) x-shifted images the shear offset maps that face onto
// (see leShiftBracket in cells.go) — undilating/redilating the x coordinate
// for those two cases rather than extending the Inc/Dec trick to a
// non-unit shift.
func (m *MortonCells) ForEachNeighbour(ctx *Context, pid int, fn func(qid int)) {
	coords := m.coordsOfPos(ctx, ctx.Particle(pid).Pos)
	dx0 := NewDilatedInt(coords[0], m.NC[0])
	dy0 := NewDilatedInt(coords[1], m.NC[1])
	dz0 := NewDilatedInt(coords[2], m.NC[2])

	le, sheared := ctx.BC.(*LeesEdwardsBC)

	dz := stepDilated(dz0, -m.Overlink)
	for iz := -m.Overlink; iz <= m.Overlink; iz++ {
		dy := stepDilated(dy0, -m.Overlink)
		for iy := -m.Overlink; iy <= m.Overlink; iy++ {
			wrapsY := coords[1]+iy < 0 || coords[1]+iy >= m.NC[1]

			xShifts := [2]int{0, 0}
			nShifts := 1
			if sheared && wrapsY {
				lo, hi, distinct := leShiftBracket(le, m.CellSize[0])
				xShifts[0] = lo
				if distinct {
					xShifts[1] = hi
					nShifts = 2
				}
			}

			dx := stepDilated(dx0, -m.Overlink)
			for ix := -m.Overlink; ix <= m.Overlink; ix++ {
				for i := 0; i < nShifts; i++ {
					dxs := dx
					if xShifts[i] != 0 {
						shifted := wrapCoord(dx.Value()+xShifts[i], m.NC[0])
						dxs = NewDilatedInt(shifted, m.NC[0])
					}
					cid := int(dxs.v | (dy.v << 1) | (dz.v << 2))
					for qid := m.head[cid]; qid != -1; qid = m.next[qid] {
						if qid != pid {
							fn(qid)
						}
					}
				}
				dx = dx.Inc()
			}
			dy = dy.Inc()
		}
		dz = dz.Inc()
	}
}

func stepDilated(d DilatedInt, n int) DilatedInt {
	for i := 0; i < -n; i++ {
		d = d.Dec()
	}
	for i := 0; i < n; i++ {
		d = d.Inc()
	}
	return d
}

func (m *MortonCells) NextEvent(ctx *Context, sched *Scheduler, p *Particle) Event {
	coords := m.coordsOfPos(ctx, p.Pos)
	origin := m.cellOrigin(coords, ctx)
	t := ctx.Dynamics.GetSquareCellCollisionTime(p, origin, m.CellSize)
	return Event{Dt: t, Type: EventCell, Owner: p.ID, Partner: -1, GlobalID: m.globalIdx, LocalID: -1, SystemID: -1}
}

func (m *MortonCells) RunEvent(ctx *Context, sched *Scheduler, p *Particle, ev Event) {
	ctx.Dynamics.UpdateParticle(ctx, p)
	ctx.BC.ApplyBC(&p.Pos)

	oldCoords := m.coordsOfPos(ctx, p.Pos)
	origin := m.cellOrigin(oldCoords, ctx)
	dir := ctx.Dynamics.GetSquareCellCollisionDir(p, origin, m.CellSize)

	oldCellID := m.mortonID(oldCoords)
	newCoords := oldCoords
	if dir != 0 {
		axis := abs(dir) - 1
		sign := 1
		if dir < 0 {
			sign = -1
		}
		newCoords[axis] = wrapCoord(newCoords[axis]+sign, m.NC[axis])
	}
	newCellID := m.mortonID(newCoords)

	if newCellID != oldCellID {
		m.remove(p.ID, oldCellID)
		m.insert(p.ID, newCellID)
	}

	for _, q := range m.CellMembers(newCellID) {
		if q != p.ID {
			ctx.Observers.fireNewNeighbour(p.ID, q)
		}
	}
	newOrigin := m.cellOrigin(newCoords, ctx)
	for idx, loc := range ctx.Locals {
		if loc.Overlaps(newOrigin, m.CellSize) {
			ctx.Observers.fireNewLocal(p.ID, idx)
		}
	}
	ctx.Observers.fireCellChanged(p.ID, oldCellID)

	sched.FullUpdate(ctx, p.ID)
}
