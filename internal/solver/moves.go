package solver

import (
	"sort"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// Neighborhood enumerates the move families sampled by the search engine.
type Neighborhood int

const (
	NbRelocate Neighborhood = iota
	NbSwap
	NbSegment
	NbTwoOpt
	NbSplit
	NbMerge
	NbReassign

	neighborhoodCount
)

func (n Neighborhood) String() string {
	switch n {
	case NbRelocate:
		return "relocate"
	case NbSwap:
		return "swap"
	case NbSegment:
		return "segment"
	case NbTwoOpt:
		return "2-opt"
	case NbSplit:
		return "split-trip"
	case NbMerge:
		return "merge-trips"
	case NbReassign:
		return "reassign-trip"
	}
	return "unknown"
}

// Move is one candidate structural change. Evaluation is a pure ghost trial:
// nothing on the schedule changes until Apply commits the same change set.
type Move interface {
	// Signature identifies the customers a move touches; it is the tabu key.
	Signature() []int
	changes(s *Schedule) []tripChange
}

// EvaluateMove runs the ghost trial for a move.
func (s *Schedule) EvaluateMove(m Move) Outcome {
	return s.ghostOutcome(m.changes(s))
}

// ApplyMove commits a move previously evaluated as Accepted.
func (s *Schedule) ApplyMove(m Move) {
	s.commit(m.changes(s))
}

// signature copies before sorting: callers may spread a slice they keep.
func signature(customers ...int) []int {
	out := append([]int(nil), customers...)
	sort.Ints(out)
	return out
}

// without returns units with the element at index i removed.
func without(units []int, i int) []int {
	out := make([]int, 0, len(units)-1)
	out = append(out, units[:i]...)
	return append(out, units[i+1:]...)
}

// withAt returns units with u inserted before index i.
func withAt(units []int, i, u int) []int {
	out := make([]int, 0, len(units)+1)
	out = append(out, units[:i]...)
	out = append(out, u)
	return append(out, units[i:]...)
}

// relocateMove moves one unit to another (vehicle, trip, position). A trip
// index equal to the route length opens a fresh trip.
type relocateMove struct {
	unit                int
	fromV, fromT, fromI int
	toV, toT, toI       int
	customer            int
}

func (m relocateMove) Signature() []int { return signature(m.customer) }

func (m relocateMove) changes(s *Schedule) []tripChange {
	src := s.Vehicles[m.fromV].Trips[m.fromT].Units
	if m.fromV == m.toV && m.fromT == m.toT {
		rest := without(src, m.fromI)
		return []tripChange{{m.fromV, m.fromT, withAt(rest, m.toI, m.unit)}}
	}
	var dst []int
	if m.toT < len(s.Vehicles[m.toV].Trips) {
		dst = s.Vehicles[m.toV].Trips[m.toT].Units
	}
	return []tripChange{
		{m.fromV, m.fromT, without(src, m.fromI)},
		{m.toV, m.toT, withAt(dst, m.toI, m.unit)},
	}
}

// swapMove exchanges two units across trips or within one trip.
type swapMove struct {
	v1, t1, i1 int
	v2, t2, i2 int
	c1, c2     int
}

func (m swapMove) Signature() []int { return signature(m.c1, m.c2) }

func (m swapMove) changes(s *Schedule) []tripChange {
	a := s.Vehicles[m.v1].Trips[m.t1].Units
	b := s.Vehicles[m.v2].Trips[m.t2].Units
	if m.v1 == m.v2 && m.t1 == m.t2 {
		units := append([]int(nil), a...)
		units[m.i1], units[m.i2] = units[m.i2], units[m.i1]
		return []tripChange{{m.v1, m.t1, units}}
	}
	na := append([]int(nil), a...)
	nb := append([]int(nil), b...)
	na[m.i1], nb[m.i2] = b[m.i2], a[m.i1]
	return []tripChange{
		{m.v1, m.t1, na},
		{m.v2, m.t2, nb},
	}
}

// withPairAt returns units with a and b inserted consecutively before index i.
func withPairAt(units []int, i, a, b int) []int {
	out := make([]int, 0, len(units)+2)
	out = append(out, units[:i]...)
	out = append(out, a, b)
	return append(out, units[i:]...)
}

// segmentRelocateMove moves two consecutive units together to another
// position, keeping their relative order.
type segmentRelocateMove struct {
	u1, u2              int
	fromV, fromT, fromI int
	toV, toT, toI       int
	c1, c2              int
}

func (m segmentRelocateMove) Signature() []int { return signature(m.c1, m.c2) }

func (m segmentRelocateMove) changes(s *Schedule) []tripChange {
	src := s.Vehicles[m.fromV].Trips[m.fromT].Units
	rest := without(without(src, m.fromI+1), m.fromI)
	if m.fromV == m.toV && m.fromT == m.toT {
		return []tripChange{{m.fromV, m.fromT, withPairAt(rest, m.toI, m.u1, m.u2)}}
	}
	var dst []int
	if m.toT < len(s.Vehicles[m.toV].Trips) {
		dst = s.Vehicles[m.toV].Trips[m.toT].Units
	}
	return []tripChange{
		{m.fromV, m.fromT, rest},
		{m.toV, m.toT, withPairAt(dst, m.toI, m.u1, m.u2)},
	}
}

// segmentSwapMove exchanges two consecutive units of one trip against one or
// two consecutive units of another trip.
type segmentSwapMove struct {
	v1, t1, i1 int // pair
	v2, t2, i2 int
	pair2      bool // the counterpart is also a pair
	customers  []int
}

func (m segmentSwapMove) Signature() []int { return signature(m.customers...) }

func (m segmentSwapMove) changes(s *Schedule) []tripChange {
	a := s.Vehicles[m.v1].Trips[m.t1].Units
	b := s.Vehicles[m.v2].Trips[m.t2].Units

	na := without(without(a, m.i1+1), m.i1)
	var nb []int
	if m.pair2 {
		na = withPairAt(na, m.i1, b[m.i2], b[m.i2+1])
		nb = without(without(b, m.i2+1), m.i2)
		nb = withPairAt(nb, m.i2, a[m.i1], a[m.i1+1])
	} else {
		na = withAt(na, m.i1, b[m.i2])
		nb = without(b, m.i2)
		nb = withPairAt(nb, m.i2, a[m.i1], a[m.i1+1])
	}
	return []tripChange{
		{m.v1, m.t1, na},
		{m.v2, m.t2, nb},
	}
}

// twoOptMove reverses the order of a trip segment [i, j].
type twoOptMove struct {
	v, t, i, j int
	ci, cj     int
}

func (m twoOptMove) Signature() []int { return signature(m.ci, m.cj) }

func (m twoOptMove) changes(s *Schedule) []tripChange {
	units := append([]int(nil), s.Vehicles[m.v].Trips[m.t].Units...)
	for lo, hi := m.i, m.j; lo < hi; lo, hi = lo+1, hi-1 {
		units[lo], units[hi] = units[hi], units[lo]
	}
	return []tripChange{{m.v, m.t, units}}
}

// splitMove cuts one trip into two consecutive trips of the same vehicle.
type splitMove struct {
	v, t, cut int
	c         int
}

func (m splitMove) Signature() []int { return signature(m.c) }

func (m splitMove) changes(s *Schedule) []tripChange {
	units := s.Vehicles[m.v].Trips[m.t].Units
	head := append([]int(nil), units[:m.cut]...)
	tail := append([]int(nil), units[m.cut:]...)
	return []tripChange{
		{m.v, m.t, head},
		{m.v, len(s.Vehicles[m.v].Trips), tail},
	}
}

// mergeMove concatenates two trips of one vehicle into the earlier one.
type mergeMove struct {
	v, t1, t2 int
	c         int
}

func (m mergeMove) Signature() []int { return signature(m.c) }

func (m mergeMove) changes(s *Schedule) []tripChange {
	a := s.Vehicles[m.v].Trips[m.t1].Units
	b := s.Vehicles[m.v].Trips[m.t2].Units
	merged := make([]int, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return []tripChange{
		{m.v, m.t1, merged},
		{m.v, m.t2, nil},
	}
}

// reassignMove hands a whole trip to another vehicle of the same class.
type reassignMove struct {
	fromV, t, toV int
	c             int
}

func (m reassignMove) Signature() []int { return signature(m.c) }

func (m reassignMove) changes(s *Schedule) []tripChange {
	units := append([]int(nil), s.Vehicles[m.fromV].Trips[m.t].Units...)
	return []tripChange{
		{m.fromV, m.t, nil},
		{m.toV, len(s.Vehicles[m.toV].Trips), units},
	}
}

// generateMoves enumerates the full neighborhood of the given family around
// the bottleneck vehicle, the lever that can actually lower the makespan.
// Enumeration order is fixed, which keeps runs bit-identical per seed.
func generateMoves(s *Schedule, nb Neighborhood) []Move {
	b := s.Bottleneck()
	bv := s.Vehicles[b]
	var moves []Move

	switch nb {
	case NbRelocate:
		for ti, trip := range bv.Trips {
			for i, u := range trip.Units {
				customer := s.p.Units[u].Customer
				for vi, v := range s.Vehicles {
					if v.Class == models.ClassDrone && !s.p.Locations[customer].Dronable {
						continue
					}
					for tj := 0; tj <= len(v.Trips); tj++ {
						limit := 0
						if tj < len(v.Trips) {
							limit = len(v.Trips[tj].Units)
						}
						for j := 0; j <= limit; j++ {
							if vi == b && tj == ti && (j == i || j == i+1) {
								continue // no-op
							}
							moves = append(moves, relocateMove{
								unit: u, customer: customer,
								fromV: b, fromT: ti, fromI: i,
								toV: vi, toT: tj, toI: insertIndex(vi, tj, j, b, ti, i),
							})
						}
					}
				}
			}
		}
	case NbSwap:
		for ti, trip := range bv.Trips {
			for i, u := range trip.Units {
				for vi, v := range s.Vehicles {
					for tj, other := range v.Trips {
						for j, w := range other.Units {
							if vi == b && (tj < ti || (tj == ti && j <= i)) {
								continue // canonical order inside the bottleneck
							}
							moves = append(moves, swapMove{
								v1: b, t1: ti, i1: i,
								v2: vi, t2: tj, i2: j,
								c1: s.p.Units[u].Customer,
								c2: s.p.Units[w].Customer,
							})
						}
					}
				}
			}
		}
	case NbSegment:
		for ti, trip := range bv.Trips {
			for i := 0; i+1 < len(trip.Units); i++ {
				u1, u2 := trip.Units[i], trip.Units[i+1]
				c1 := s.p.Units[u1].Customer
				c2 := s.p.Units[u2].Customer
				for vi, v := range s.Vehicles {
					if v.Class == models.ClassDrone &&
						(!s.p.Locations[c1].Dronable || !s.p.Locations[c2].Dronable) {
						continue
					}
					for tj := 0; tj <= len(v.Trips); tj++ {
						if vi == b && tj == ti {
							// Pair relocation within its own trip: positions
							// index the trip with the pair already removed.
							for j := 0; j <= len(trip.Units)-2; j++ {
								if j == i {
									continue // no-op
								}
								moves = append(moves, segmentRelocateMove{
									u1: u1, u2: u2, c1: c1, c2: c2,
									fromV: b, fromT: ti, fromI: i,
									toV: vi, toT: tj, toI: j,
								})
							}
							continue
						}
						limit := 0
						if tj < len(v.Trips) {
							limit = len(v.Trips[tj].Units)
						}
						for j := 0; j <= limit; j++ {
							moves = append(moves, segmentRelocateMove{
								u1: u1, u2: u2, c1: c1, c2: c2,
								fromV: b, fromT: ti, fromI: i,
								toV: vi, toT: tj, toI: j,
							})
						}
					}
				}
				for vi, v := range s.Vehicles {
					for tj, other := range v.Trips {
						if vi == b && tj == ti {
							continue
						}
						for j := range other.Units {
							w := other.Units[j]
							moves = append(moves, segmentSwapMove{
								v1: b, t1: ti, i1: i,
								v2: vi, t2: tj, i2: j,
								customers: []int{c1, c2, s.p.Units[w].Customer},
							})
							if j+1 < len(other.Units) {
								x := other.Units[j+1]
								moves = append(moves, segmentSwapMove{
									v1: b, t1: ti, i1: i,
									v2: vi, t2: tj, i2: j,
									pair2:     true,
									customers: []int{c1, c2, s.p.Units[w].Customer, s.p.Units[x].Customer},
								})
							}
						}
					}
				}
			}
		}
	case NbTwoOpt:
		for ti, trip := range bv.Trips {
			for i := 0; i < len(trip.Units)-1; i++ {
				for j := i + 1; j < len(trip.Units); j++ {
					moves = append(moves, twoOptMove{
						v: b, t: ti, i: i, j: j,
						ci: s.p.Units[trip.Units[i]].Customer,
						cj: s.p.Units[trip.Units[j]].Customer,
					})
				}
			}
		}
	case NbSplit:
		for ti, trip := range bv.Trips {
			for cut := 1; cut < len(trip.Units); cut++ {
				moves = append(moves, splitMove{
					v: b, t: ti, cut: cut,
					c: s.p.Units[trip.Units[cut]].Customer,
				})
			}
		}
	case NbMerge:
		for t1 := 0; t1 < len(bv.Trips); t1++ {
			for t2 := t1 + 1; t2 < len(bv.Trips); t2++ {
				moves = append(moves, mergeMove{
					v: b, t1: t1, t2: t2,
					c: s.p.Units[bv.Trips[t2].Units[0]].Customer,
				})
			}
		}
	case NbReassign:
		for ti, trip := range bv.Trips {
			for vi, v := range s.Vehicles {
				if vi == b || v.Class != bv.Class {
					continue
				}
				moves = append(moves, reassignMove{
					fromV: b, t: ti, toV: vi,
					c: s.p.Units[trip.Units[0]].Customer,
				})
			}
		}
	}
	return moves
}

// insertIndex compensates for the source removal when a unit relocates to a
// later position of its own trip.
func insertIndex(toV, toT, j, fromV, fromT, fromI int) int {
	if toV == fromV && toT == fromT && j > fromI {
		return j - 1
	}
	return j
}
