package solver

import (
	"sort"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// Verdict classifies the outcome of evaluating a proposed structural change.
// Everything except Accepted is a local, non-fatal rejection: the candidate
// move is discarded and the search continues.
type Verdict int

const (
	Accepted Verdict = iota
	RejectCapacity
	RejectEndurance
	RejectNotDronable
	RejectVisitCount
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectCapacity:
		return "capacity violation"
	case RejectEndurance:
		return "endurance violation"
	case RejectNotDronable:
		return "not dronable"
	case RejectVisitCount:
		return "visit count exceeded"
	}
	return "unknown"
}

// Outcome is the result of a ghost evaluation: the verdict plus, when
// accepted, the makespan and total-travel change the commit would produce.
type Outcome struct {
	Verdict     Verdict
	Makespan    int64
	DeltaTravel int64
}

type tripStats struct {
	duration int64
	load     int64
	energy   float64
}

// evalTrip computes the stats of a trip given as an ordered unit sequence
// and checks every per-trip constraint. Cost is linear in the trip length,
// which is exactly the changed segment of any move; the schedule outside
// the trip is never touched.
//
// Load accumulates stop by stop (samples are collected, not dropped off), so
// the capacity check runs on every prefix. Drone legs carry the load
// collected so far, which is what the linear energy model integrates over.
func evalTrip(p *models.Problem, class models.VehicleClass, units []int) (tripStats, Verdict) {
	var stats tripStats
	if len(units) == 0 {
		return stats, Accepted
	}

	capacity := p.Capacity(class)
	drone := class == models.ClassDrone
	spec := p.Drone

	// The scan always completes so the stats describe the whole trip even
	// when rejected; only the first violation is reported.
	verdict := Accepted
	reject := func(v Verdict) {
		if verdict == Accepted {
			verdict = v
		}
	}

	prev := 0
	for i, u := range units {
		customer := p.Units[u].Customer
		if drone && !p.Locations[customer].Dronable {
			reject(RejectNotDronable)
		}
		for j := 0; j < i; j++ {
			if p.Units[units[j]].Customer == customer {
				// Two shares of one customer in a single trip would collapse
				// its required visit count.
				reject(RejectVisitCount)
			}
		}

		leg := p.TravelTime(class, prev, customer)
		if drone {
			stats.duration += leg + spec.TakeoffTime + spec.LandingTime
			stats.energy += legEnergy(spec, stats.load, leg)
		} else {
			stats.duration += leg
		}

		stats.load += p.Units[u].Quantity
		if stats.load > capacity {
			reject(RejectCapacity)
		}
		prev = customer
	}

	// Return leg to the depot.
	leg := p.TravelTime(class, prev, 0)
	if drone {
		stats.duration += leg + spec.TakeoffTime + spec.LandingTime
		stats.energy += legEnergy(spec, stats.load, leg)
	} else {
		stats.duration += leg
	}

	if drone {
		switch spec.Model {
		case models.ModelEndurance:
			if spec.FlightLimit > 0 && stats.duration > spec.FlightLimit {
				reject(RejectEndurance)
			}
		case models.ModelLinear, models.ModelNonLinear:
			if stats.energy > spec.Battery {
				reject(RejectEndurance)
			}
		}
	}
	return stats, verdict
}

// legEnergy integrates the battery draw of one depot-to-stop leg: ascent,
// cruise and descent each run at their own power level for the carried load.
func legEnergy(d models.DroneSpec, load, cruise int64) float64 {
	switch d.Model {
	case models.ModelLinear, models.ModelNonLinear:
		return d.TakeoffPower(load)*models.Seconds(d.TakeoffTime) +
			d.CruisePower(load)*models.Seconds(cruise) +
			d.LandingPower(load)*models.Seconds(d.LandingTime)
	}
	return 0
}

// ghostOutcome evaluates replacement trip contents for a set of affected
// trips without mutating the schedule. newTrips maps (vehicle, trip) to the
// proposed unit sequence; trip index len(route) denotes a fresh trip.
type tripChange struct {
	Vehicle int
	Trip    int
	Units   []int
}

func (s *Schedule) ghostOutcome(changes []tripChange) Outcome {
	vehicles := make([]int, 0, len(changes))
	totals := make([]int64, 0, len(changes))
	var deltaTravel int64

	for _, ch := range changes {
		v := s.Vehicles[ch.Vehicle]
		stats, verdict := evalTrip(s.p, v.Class, ch.Units)
		if verdict != Accepted {
			return Outcome{Verdict: verdict}
		}

		var old int64
		if ch.Trip < len(v.Trips) {
			old = v.Trips[ch.Trip].duration
		}
		delta := stats.duration - old
		deltaTravel += delta

		if i := indexOf(vehicles, ch.Vehicle); i >= 0 {
			totals[i] += delta
		} else {
			vehicles = append(vehicles, ch.Vehicle)
			totals = append(totals, v.total+delta)
		}
	}

	return Outcome{
		Verdict:     Accepted,
		Makespan:    s.makespanAfter(vehicles, totals),
		DeltaTravel: deltaTravel,
	}
}

// commit applies the same change set for real. Emptied trips are removed so
// routes never carry depot-to-depot no-ops.
func (s *Schedule) commit(changes []tripChange) {
	// Apply in-place updates and appends first, removals last (highest trip
	// index first) so indices stay valid throughout.
	var empty []tripChange
	for _, ch := range changes {
		v := s.Vehicles[ch.Vehicle]
		switch {
		case ch.Trip >= len(v.Trips):
			if len(ch.Units) > 0 {
				s.addTrip(ch.Vehicle, ch.Units)
			}
		case len(ch.Units) == 0:
			empty = append(empty, ch)
		default:
			s.setTrip(ch.Vehicle, ch.Trip, ch.Units)
		}
	}
	sort.Slice(empty, func(i, j int) bool {
		if empty[i].Vehicle != empty[j].Vehicle {
			return empty[i].Vehicle < empty[j].Vehicle
		}
		return empty[i].Trip > empty[j].Trip
	})
	for _, ch := range empty {
		s.removeTrip(ch.Vehicle, ch.Trip)
	}
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
