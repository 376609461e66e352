package solver

import (
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

type insertion struct {
	vehicle int
	trip    int
	index   int
	delta   int64
}

// bestInsertion finds the cheapest feasible insertion of a unit, scanning
// every position of every trip (plus a fresh trip) of the allowed vehicles.
// Ties break on lowest vehicle, then trip, then position, so construction is
// fully deterministic.
func bestInsertion(s *Schedule, u int, classes ...models.VehicleClass) (insertion, bool) {
	customer := s.p.Units[u].Customer
	best := insertion{}
	found := false

	allowed := func(c models.VehicleClass) bool {
		for _, a := range classes {
			if a == c {
				return true
			}
		}
		return false
	}

	for vi, v := range s.Vehicles {
		if !allowed(v.Class) {
			continue
		}
		if v.Class == models.ClassDrone && !s.p.Locations[customer].Dronable {
			continue
		}
		for ti := 0; ti <= len(v.Trips); ti++ {
			var units []int
			var old int64
			if ti < len(v.Trips) {
				units = v.Trips[ti].Units
				old = v.Trips[ti].duration
			}
			for j := 0; j <= len(units); j++ {
				stats, verdict := evalTrip(s.p, v.Class, withAt(units, j, u))
				if verdict != Accepted {
					continue
				}
				delta := stats.duration - old
				if !found || delta < best.delta {
					best = insertion{vehicle: vi, trip: ti, index: j, delta: delta}
					found = true
				}
			}
		}
	}
	return best, found
}

// insertUnit finds and commits the cheapest feasible insertion for one unit.
// Dronable units are offered to drones first: unserved dronable demand is
// usually what limits drone utilization, so trucks are only the fallback.
func insertUnit(s *Schedule, u int) bool {
	customer := s.p.Units[u].Customer
	var ins insertion
	var ok bool
	if s.p.Locations[customer].Dronable && s.p.Drones > 0 {
		ins, ok = bestInsertion(s, u, models.ClassDrone)
	}
	if !ok {
		ins, ok = bestInsertion(s, u, models.ClassTruck, models.ClassDrone)
	}
	if !ok {
		return false
	}

	v := s.Vehicles[ins.vehicle]
	var units []int
	if ins.trip < len(v.Trips) {
		units = v.Trips[ins.trip].Units
	}
	s.commit([]tripChange{{ins.vehicle, ins.trip, withAt(units, ins.index, u)}})
	return true
}

// Construct builds the initial feasible schedule by repeated cheapest
// feasible insertion: at each step the pending unit with the lowest marginal
// duration increase is placed, opening fresh trips whenever no existing trip
// can accept a unit.
func Construct(p *models.Problem) (*Schedule, error) {
	s := NewSchedule(p)

	pending := make([]int, len(p.Units))
	for u := range pending {
		pending[u] = u
	}

	for len(pending) > 0 {
		pickAt := -1
		var pick insertion
		for i, u := range pending {
			customer := p.Units[u].Customer
			var ins insertion
			var ok bool
			if p.Locations[customer].Dronable && p.Drones > 0 {
				ins, ok = bestInsertion(s, u, models.ClassDrone)
			}
			if !ok {
				ins, ok = bestInsertion(s, u, models.ClassTruck, models.ClassDrone)
			}
			if !ok {
				return nil, &models.InfeasibleInstance{
					Customer: customer,
					Reason:   "no vehicle can accept this demand share, even on a fresh trip",
				}
			}
			if pickAt < 0 || ins.delta < pick.delta {
				pickAt, pick = i, ins
			}
		}

		u := pending[pickAt]
		v := s.Vehicles[pick.vehicle]
		var units []int
		if pick.trip < len(v.Trips) {
			units = v.Trips[pick.trip].Units
		}
		s.commit([]tripChange{{pick.vehicle, pick.trip, withAt(units, pick.index, u)}})
		pending = append(pending[:pickAt], pending[pickAt+1:]...)
	}

	return s, nil
}
