package solver

import (
	"fmt"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// UnitPos locates a service unit inside a schedule.
type UnitPos struct {
	Vehicle int
	Trip    int
	Index   int
}

// Unassigned marks a unit that currently sits outside every trip.
var Unassigned = UnitPos{Vehicle: -1, Trip: -1, Index: -1}

// Trip is one depot-to-depot excursion. The cached stats are maintained on
// every commit, so load, duration and endurance consumption are O(1) reads.
type Trip struct {
	Units []int

	duration int64
	load     int64
	energy   float64
}

// Duration returns the cached trip duration in µs.
func (t *Trip) Duration() int64 { return t.duration }

// Load returns the cached trip load in milli-units.
func (t *Trip) Load() int64 { return t.load }

// Energy returns the cached energy consumption in J (battery drone models).
func (t *Trip) Energy() float64 { return t.energy }

// Vehicle is one vehicle instance with its ordered trip list.
type Vehicle struct {
	Class models.VehicleClass
	Trips []*Trip

	total int64
}

// Total returns the cached sum of the vehicle's trip durations.
func (v *Vehicle) Total() int64 { return v.total }

// Schedule is the full mutable assignment owned by a single search run.
// Trips and units are addressed by integer indices, so every move is an
// index reassignment and every trial evaluation is side-effect free.
type Schedule struct {
	p        *models.Problem
	Vehicles []*Vehicle

	pos        []UnitPos
	makespan   int64
	maxHolders int
}

// NewSchedule returns an empty schedule for the given problem: trucks first,
// then drones, no trips, all units unassigned.
func NewSchedule(p *models.Problem) *Schedule {
	s := &Schedule{
		p:        p,
		Vehicles: make([]*Vehicle, 0, p.Vehicles()),
		pos:      make([]UnitPos, len(p.Units)),
	}
	for i := 0; i < p.Trucks; i++ {
		s.Vehicles = append(s.Vehicles, &Vehicle{Class: models.ClassTruck})
	}
	for i := 0; i < p.Drones; i++ {
		s.Vehicles = append(s.Vehicles, &Vehicle{Class: models.ClassDrone})
	}
	for u := range s.pos {
		s.pos[u] = Unassigned
	}
	s.maxHolders = len(s.Vehicles)
	return s
}

// Problem returns the underlying read-only problem model.
func (s *Schedule) Problem() *models.Problem { return s.p }

// Makespan returns the incrementally maintained global makespan in µs.
func (s *Schedule) Makespan() int64 { return s.makespan }

// Pos returns the current position of a unit.
func (s *Schedule) Pos(unit int) UnitPos { return s.pos[unit] }

// TotalTravel returns the sum of all trip durations across the fleet, the
// secondary quality metric reported next to the makespan.
func (s *Schedule) TotalTravel() int64 {
	var total int64
	for _, v := range s.Vehicles {
		total += v.total
	}
	return total
}

// Bottleneck returns the vehicle currently defining the makespan, lowest
// index first on ties.
func (s *Schedule) Bottleneck() int {
	for i, v := range s.Vehicles {
		if v.total == s.makespan {
			return i
		}
	}
	return 0
}

// Clone returns a deep copy sharing only the immutable problem model.
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{
		p:          s.p,
		Vehicles:   make([]*Vehicle, len(s.Vehicles)),
		pos:        append([]UnitPos(nil), s.pos...),
		makespan:   s.makespan,
		maxHolders: s.maxHolders,
	}
	for i, v := range s.Vehicles {
		nv := &Vehicle{Class: v.Class, Trips: make([]*Trip, len(v.Trips)), total: v.total}
		for j, t := range v.Trips {
			nv.Trips[j] = &Trip{
				Units:    append([]int(nil), t.Units...),
				duration: t.duration,
				load:     t.load,
				energy:   t.energy,
			}
		}
		c.Vehicles[i] = nv
	}
	return c
}

// setTrip replaces the contents of an existing trip, refreshing its cached
// stats, the owning vehicle's total and the global makespan. The new contents
// must already have passed evaluation.
func (s *Schedule) setTrip(vi, ti int, units []int) {
	v := s.Vehicles[vi]
	before := v.total
	trip := v.Trips[ti]

	stats, verdict := evalTrip(s.p, v.Class, units)
	if verdict != Accepted {
		panic(fmt.Sprintf("solver: committing rejected trip (verdict %v)", verdict))
	}

	v.total += stats.duration - trip.duration
	trip.Units = append(trip.Units[:0], units...)
	trip.duration = stats.duration
	trip.load = stats.load
	trip.energy = stats.energy

	for idx, u := range trip.Units {
		s.pos[u] = UnitPos{Vehicle: vi, Trip: ti, Index: idx}
	}
	s.settleMakespan(vi, before)
}

// addTrip appends a new trip to a vehicle's route.
func (s *Schedule) addTrip(vi int, units []int) {
	v := s.Vehicles[vi]
	before := v.total

	stats, verdict := evalTrip(s.p, v.Class, units)
	if verdict != Accepted {
		panic(fmt.Sprintf("solver: committing rejected trip (verdict %v)", verdict))
	}

	ti := len(v.Trips)
	v.Trips = append(v.Trips, &Trip{
		Units:    append([]int(nil), units...),
		duration: stats.duration,
		load:     stats.load,
		energy:   stats.energy,
	})
	v.total += stats.duration
	for idx, u := range v.Trips[ti].Units {
		s.pos[u] = UnitPos{Vehicle: vi, Trip: ti, Index: idx}
	}
	s.settleMakespan(vi, before)
}

// removeTrip deletes a trip; units still positioned in it become unassigned.
// Units of a change set that already landed in another trip keep the position
// that insertion wrote. Later trips of the same vehicle shift down, so their
// unit positions are refreshed.
func (s *Schedule) removeTrip(vi, ti int) {
	v := s.Vehicles[vi]
	before := v.total
	trip := v.Trips[ti]

	for _, u := range trip.Units {
		if s.pos[u].Vehicle == vi && s.pos[u].Trip == ti {
			s.pos[u] = Unassigned
		}
	}
	v.total -= trip.duration
	v.Trips = append(v.Trips[:ti], v.Trips[ti+1:]...)
	for t := ti; t < len(v.Trips); t++ {
		for idx, u := range v.Trips[t].Units {
			s.pos[u] = UnitPos{Vehicle: vi, Trip: t, Index: idx}
		}
	}
	s.settleMakespan(vi, before)
}

// settleMakespan folds one vehicle's total change into the running maximum.
// A full rescan happens only when every previous holder of the maximum
// decreased, which is the one case the running maximum cannot answer.
func (s *Schedule) settleMakespan(vi int, before int64) {
	now := s.Vehicles[vi].total
	if now == before {
		return
	}
	switch {
	case now > s.makespan:
		s.makespan = now
		s.maxHolders = 1
	case now == s.makespan:
		if before != s.makespan {
			s.maxHolders++
		}
	default:
		if before == s.makespan {
			s.maxHolders--
			if s.maxHolders == 0 {
				s.rescanMakespan()
			}
		}
	}
}

func (s *Schedule) rescanMakespan() {
	s.makespan = 0
	s.maxHolders = 0
	for _, v := range s.Vehicles {
		switch {
		case v.total > s.makespan:
			s.makespan = v.total
			s.maxHolders = 1
		case v.total == s.makespan:
			s.maxHolders++
		}
	}
}

// makespanAfter answers the ghost question "what would the makespan be if
// these vehicles had these totals" without touching any state. Totals of
// vehicles absent from the override stay as committed.
func (s *Schedule) makespanAfter(vehicles []int, totals []int64) int64 {
	old := s.makespan
	holders := s.maxHolders
	for _, vi := range vehicles {
		if s.Vehicles[vi].total == old {
			holders--
		}
	}

	max := int64(-1)
	if holders > 0 {
		max = old
	}
	for i := range vehicles {
		if totals[i] > max {
			max = totals[i]
		}
	}
	if holders <= 0 && max < old {
		// Every previous holder changed and decreased: the unaffected
		// vehicles may now define the maximum.
		for vi, v := range s.Vehicles {
			if overridden(vehicles, vi) {
				continue
			}
			if v.total > max {
				max = v.total
			}
		}
	}
	return max
}

func overridden(vehicles []int, vi int) bool {
	for _, v := range vehicles {
		if v == vi {
			return true
		}
	}
	return false
}

// RecomputedMakespan rebuilds the makespan from scratch, bypassing every
// cached value. Used by tests and corruption recovery.
func (s *Schedule) RecomputedMakespan() int64 {
	var max int64
	for _, v := range s.Vehicles {
		var total int64
		for _, t := range v.Trips {
			stats, _ := evalTrip(s.p, v.Class, t.Units)
			total += stats.duration
		}
		if total > max {
			max = total
		}
	}
	return max
}

// Routes expands the schedule into per-vehicle trip sequences of location
// indices, each beginning and ending at the depot.
func (s *Schedule) Routes() [][][]int {
	routes := make([][][]int, len(s.Vehicles))
	for vi, v := range s.Vehicles {
		routes[vi] = make([][]int, len(v.Trips))
		for ti, t := range v.Trips {
			seq := make([]int, 0, len(t.Units)+2)
			seq = append(seq, 0)
			for _, u := range t.Units {
				seq = append(seq, s.p.Units[u].Customer)
			}
			seq = append(seq, 0)
			routes[vi][ti] = seq
		}
	}
	return routes
}

// Validate runs the full invariant suite: every unit assigned exactly once,
// position bookkeeping coherent, every trip feasible with stats matching a
// from-scratch evaluation, totals and makespan consistent, and no customer
// visited more often than its required visit count.
func (s *Schedule) Validate() error {
	seen := make([]int, len(s.p.Units))
	for vi, v := range s.Vehicles {
		var total int64
		for ti, t := range v.Trips {
			stats, verdict := evalTrip(s.p, v.Class, t.Units)
			if verdict != Accepted {
				return fmt.Errorf("vehicle %d trip %d infeasible: %v", vi, ti, verdict)
			}
			if stats.duration != t.duration || stats.load != t.load {
				return fmt.Errorf("vehicle %d trip %d cached stats diverged", vi, ti)
			}
			total += t.duration
			for idx, u := range t.Units {
				seen[u]++
				if s.pos[u] != (UnitPos{Vehicle: vi, Trip: ti, Index: idx}) {
					return fmt.Errorf("unit %d position bookkeeping diverged", u)
				}
			}
		}
		if total != v.total {
			return fmt.Errorf("vehicle %d total diverged: cached %d, actual %d", vi, v.total, total)
		}
	}
	for u, n := range seen {
		if n != 1 {
			return fmt.Errorf("unit %d assigned %d times", u, n)
		}
	}
	if got := s.RecomputedMakespan(); got != s.makespan {
		return fmt.Errorf("makespan diverged: cached %d, actual %d", s.makespan, got)
	}
	for c := 1; c < s.p.LocationCount(); c++ {
		trips := map[UnitPos]bool{}
		for _, u := range s.p.UnitsOf(c) {
			key := UnitPos{Vehicle: s.pos[u].Vehicle, Trip: s.pos[u].Trip}
			if trips[key] {
				return fmt.Errorf("customer %d visited twice by the same trip", c)
			}
			trips[key] = true
		}
		if len(trips) > s.p.Locations[c].Visits {
			return fmt.Errorf("customer %d exceeds visit count %d", c, s.p.Locations[c].Visits)
		}
	}
	return nil
}
