package dynamica

import "math"

// CalendarSorter is a bounded/calendar priority queue (spec.md §4.4
// "self-tuning bucket width"): events are hashed by their key's offset
// from base into one of NBuckets fixed-width time buckets, each an
// unsorted slice; PeekMin scans the buckets in order until it finds a
// non-empty one, then does a linear scan within it. Anything whose key
// falls outside the buckets' span is kept on an overflow list (spec.md's
// "exception list"), which PeekMin scans only when every bucket is
// empty. The calendar does not rotate: Rebase moves base together with
// every key, so an item's bucket is fixed by its time since the sorter
// was created, and once that exceeds NBuckets*width new items go to the
// overflow list; overflow items are never moved back into buckets.
//
// Bucket width is re-tuned every 256 PeekMin samples from the average
// number of empty buckets scanned before a non-empty one, and every
// stored item is then re-filed under the new width; the bucket count
// stays fixed.
type CalendarSorter struct {
	buckets    [][]cbtItem
	bucketOf   map[int]int // pid -> bucket index currently holding it
	width      float64
	base       float64 // key of bucket 0's left edge
	cur        int     // bucket that offset 0 maps to; nothing advances it
	overflow   []cbtItem

	sampleSum   float64
	sampleCount int
}

type cbtItem struct {
	pid     int
	key     float64
	partner int
	evType  EventType
}

// cbtItemLess orders by key and, on a tie, by (pid, partner, evType),
// matching CBTSorter's tie-break so both Sorter implementations agree
// on event order regardless of which is installed (spec.md §5/§8).
func cbtItemLess(a, b cbtItem) bool {
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

// NewCalendarSorter returns a calendar sorter with n buckets of the
// given initial width; width is retuned automatically as events flow
// through.
func NewCalendarSorter(n int, width float64) *CalendarSorter {
	if n < 1 {
		n = 64
	}
	if width <= 0 {
		width = 1
	}
	return &CalendarSorter{
		buckets:  make([][]cbtItem, n),
		bucketOf: make(map[int]int),
		width:    width,
	}
}

func (s *CalendarSorter) bucketIndex(key float64) (int, bool) {
	rel := key - s.base
	if rel < 0 {
		return 0, false
	}
	b := int(rel / s.width)
	if b >= len(s.buckets) {
		return 0, false
	}
	return (s.cur + b) % len(s.buckets), true
}

func (s *CalendarSorter) Insert(pid int, key float64, partner int, evType EventType) {
	item := cbtItem{pid: pid, key: key, partner: partner, evType: evType}
	if b, ok := s.bucketIndex(key); ok {
		s.buckets[b] = append(s.buckets[b], item)
		s.bucketOf[pid] = b
		return
	}
	s.overflow = append(s.overflow, item)
	s.bucketOf[pid] = -1
}

func (s *CalendarSorter) Remove(pid int) {
	b, ok := s.bucketOf[pid]
	if !ok {
		return
	}
	if b == -1 {
		s.removeFrom(&s.overflow, pid)
	} else {
		s.removeFrom(&s.buckets[b], pid)
	}
	delete(s.bucketOf, pid)
}

func (s *CalendarSorter) removeFrom(list *[]cbtItem, pid int) {
	l := *list
	for i, it := range l {
		if it.pid == pid {
			l[i] = l[len(l)-1]
			*list = l[:len(l)-1]
			return
		}
	}
}

func (s *CalendarSorter) Update(pid int, key float64, partner int, evType EventType) {
	s.Remove(pid)
	s.Insert(pid, key, partner, evType)
}

// PeekMin scans the buckets in order from cur until a non-empty one is
// found and returns the smallest-keyed pid in it, recording one sample
// of bucket-scan length toward the next retune. Only when every bucket
// is empty does it scan the overflow list.
func (s *CalendarSorter) PeekMin() int {
	n := len(s.buckets)
	for scanned := 0; scanned < n; scanned++ {
		b := (s.cur + scanned) % n
		if len(s.buckets[b]) > 0 {
			best := s.buckets[b][0]
			for _, it := range s.buckets[b][1:] {
				if cbtItemLess(it, best) {
					best = it
				}
			}
			s.recordSample(scanned)
			return best.pid
		}
	}
	if len(s.overflow) > 0 {
		best := s.overflow[0]
		for _, it := range s.overflow[1:] {
			if cbtItemLess(it, best) {
				best = it
			}
		}
		return best.pid
	}
	return -1
}

func (s *CalendarSorter) recordSample(scanned int) {
	s.sampleSum += float64(scanned)
	s.sampleCount++
	if s.sampleCount >= 256 {
		s.retune()
	}
}

// retune widens the bucket by 1.5x when the average number of empty
// buckets scanned before a non-empty one exceeds 2 (too narrow), and
// narrows it by 0.75x when that average is below 0.25.
func (s *CalendarSorter) retune() {
	avgScan := s.sampleSum / float64(s.sampleCount)
	oldWidth := s.width
	if avgScan > 2 {
		s.width *= 1.5
	} else if avgScan < 0.25 {
		s.width = math.Max(s.width*0.75, 1e-9)
	}
	s.sampleSum = 0
	s.sampleCount = 0
	if s.width == oldWidth {
		return
	}
	// Re-file every item under the new width so bucket order matches key order.
	items := s.overflow
	s.overflow = nil
	for b := range s.buckets {
		items = append(items, s.buckets[b]...)
		s.buckets[b] = nil
	}
	for _, it := range items {
		s.Insert(it.pid, it.key, it.partner, it.evType)
	}
}

func (s *CalendarSorter) Rebase(delta float64) {
	s.base -= delta
	for b := range s.buckets {
		for i := range s.buckets[b] {
			s.buckets[b][i].key -= delta
		}
	}
	for i := range s.overflow {
		s.overflow[i].key -= delta
	}
}

func (s *CalendarSorter) Len() int {
	total := len(s.overflow)
	for _, b := range s.buckets {
		total += len(b)
	}
	return total
}
