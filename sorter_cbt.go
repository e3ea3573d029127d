package dynamica

import "container/heap"

// CBTSorter is an indexed binary heap keyed by Dt. Grounded in the
// teacher's PathNode/PriorityQueue pair in ai_nav_utils.go (an
// index-tracking container/heap.Interface), generalised here to carry
// a particle id instead of a grid node and to support Update/Remove by
// id via a reverse index rather than only Push/Pop.
type CBTSorter struct {
	items cbtHeap
	index map[int]int // particle id -> items slot
}

// NewCBTSorter returns an empty CBT sorter.
func NewCBTSorter() *CBTSorter {
	return &CBTSorter{index: make(map[int]int)}
}

type cbtEntry struct {
	pid     int
	key     float64
	partner int
	evType  EventType
	slot    int
}

type cbtHeap []*cbtEntry

func (h cbtHeap) Len() int { return len(h) }

// Less orders primarily by key and, on a tie, by (pid, partner, evType)
// per spec.md §5's deterministic tie-break — otherwise heap order among
// equal keys is whatever container/heap's sift happens to leave it as,
// which is not reproducible across runs or Go versions.
func (h cbtHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.key != b.key {
		return a.key < b.key
	}
	if a.pid != b.pid {
		return a.pid < b.pid
	}
	if a.partner != b.partner {
		return a.partner < b.partner
	}
	return a.evType < b.evType
}
func (h cbtHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].slot = i
	h[j].slot = j
}
func (h *cbtHeap) Push(x any) {
	e := x.(*cbtEntry)
	e.slot = len(*h)
	*h = append(*h, e)
}
func (h *cbtHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	e.slot = -1
	*h = old[:n-1]
	return e
}

func (s *CBTSorter) Insert(pid int, key float64, partner int, evType EventType) {
	e := &cbtEntry{pid: pid, key: key, partner: partner, evType: evType}
	heap.Push(&s.items, e)
	s.index[pid] = e.slot
}

func (s *CBTSorter) Update(pid int, key float64, partner int, evType EventType) {
	slot, ok := s.index[pid]
	if !ok {
		s.Insert(pid, key, partner, evType)
		return
	}
	s.items[slot].key = key
	s.items[slot].partner = partner
	s.items[slot].evType = evType
	heap.Fix(&s.items, slot)
	s.index[pid] = s.items[slot].slot
	// heap.Fix may have moved other entries too, so resync the whole
	// reverse index from the slots Swap keeps current.
	s.reindex()
}

func (s *CBTSorter) Remove(pid int) {
	slot, ok := s.index[pid]
	if !ok {
		return
	}
	heap.Remove(&s.items, slot)
	delete(s.index, pid)
	s.reindex()
}

// reindex rebuilds the pid->slot map after an operation that may have
// reshuffled slots. The heap itself is still O(log N) per operation;
// this pass is O(N) but N is the live-event count (bounded by however
// many particles currently have a pending event), not total particle
// count, and only runs on Update/Remove, not on PeekMin.
func (s *CBTSorter) reindex() {
	for slot, e := range s.items {
		s.index[e.pid] = slot
	}
}

func (s *CBTSorter) PeekMin() int {
	if len(s.items) == 0 {
		return -1
	}
	return s.items[0].pid
}

func (s *CBTSorter) Rebase(delta float64) {
	for _, e := range s.items {
		e.key -= delta
	}
}

func (s *CBTSorter) Len() int { return len(s.items) }
