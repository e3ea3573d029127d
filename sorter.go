package dynamica

// Sorter orders particle ids by the Dt of their bundle's earliest
// pending event (spec.md §4.4): the scheduler pops the minimum every
// step, and re-keys a particle whenever fullUpdate rebuilds its
// bundle. Two implementations are provided, matching spec.md's note
// that "the sorter is pluggable and the scheduler must not depend on
// which one is installed": a plain indexed binary heap for small to
// medium N, and a bucketed calendar queue for large N where repeated
// O(log N) re-keying dominates the profile.
type Sorter interface {
	// Insert adds pid to the sorter keyed by key (its bundle's Top().Dt).
	// partner and evType are the Top() event's Partner/Type, carried
	// purely as a tie-break: spec.md §5 requires ties to break
	// deterministically by (particle ID, partner ID, event-type tag) so
	// a run is byte-for-byte reproducible regardless of insertion order.
	Insert(pid int, key float64, partner int, evType EventType)
	// Update re-keys an already-inserted pid.
	Update(pid int, key float64, partner int, evType EventType)
	// Remove drops pid from the sorter (used when FullUpdate finds no
	// finite pending event for it).
	Remove(pid int)
	// PeekMin returns the pid with the smallest (key, pid, partner,
	// evType) tuple, or -1 if empty.
	PeekMin() int
	// Rebase subtracts delta from every key, keeping keys small after a
	// bulk stream of the whole system (spec.md §4.4 "periodic rebase").
	Rebase(delta float64)
	Len() int
}
