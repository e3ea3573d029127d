package dynamica

// Range answers whether a particle is in a given domain; spec.md §4.5
// step 4 consults one before even asking the Liouvillean for an
// interaction event with a candidate neighbour. Scheduler.FullUpdate
// applies ctx.InteractionRanges this way through Interacts; globals are
// not wrapped in per-range entries, so every Global is queried for
// every particle.
//
// Grounded in DynamO's dynamics/ranges/{1RNone.hpp,2RChains.cpp}.
type Range interface {
	Contains(pid int) bool
}

// AllRange matches every particle; the default when no filtering is
// configured.
type AllRange struct{}

func (AllRange) Contains(pid int) bool { return true }

// NoneRange matches no particle.
type NoneRange struct{}

func (NoneRange) Contains(pid int) bool { return false }

// ChainsRange matches particles falling within any of a set of
// contiguous [start, end] id ranges ("chains" of bonded particles in
// DynamO's polymer models).
type ChainsRange struct {
	Chains [][2]int
}

func (c ChainsRange) Contains(pid int) bool {
	for _, r := range c.Chains {
		if pid >= r[0] && pid <= r[1] {
			return true
		}
	}
	return false
}

// Interacts reports whether p and q are allowed to interact at all,
// i.e. whether there exists a registered interaction range containing
// both. A nil ranges slice means "all pairs interact" (the common,
// single hard-sphere-species case).
func Interacts(ranges []Range, p, q int) bool {
	if len(ranges) == 0 {
		return true
	}
	for _, r := range ranges {
		if r.Contains(p) && r.Contains(q) {
			return true
		}
	}
	return false
}
