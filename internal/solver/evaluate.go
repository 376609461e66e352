package solver

import (
	"fmt"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// Evaluation is a stateless assessment of an existing set of routes under a
// given problem model, with no search involved. It powers the re-evaluation
// tool: build a Problem with an alternate endurance or speed profile and ask
// what the saved routes are worth under it.
type Evaluation struct {
	Makespan     float64   `json:"makespan"`
	TotalTravel  float64   `json:"total_travel"`
	VehicleTimes []float64 `json:"vehicle_times"`
	Feasible     bool      `json:"feasible"`
	Violations   []string  `json:"violations,omitempty"`
}

// EvaluateRoutes recomputes feasibility and makespan for per-vehicle trip
// sequences of location indices (each trip beginning and ending at the
// depot). Truck routes come first, then drone routes, matching the report
// layout. Violations are collected rather than short-circuited so a report
// lists everything wrong with an infeasible solution.
func EvaluateRoutes(p *models.Problem, truckRoutes, droneRoutes [][][]int) (*Evaluation, error) {
	if len(truckRoutes) != p.Trucks || len(droneRoutes) != p.Drones {
		return nil, fmt.Errorf("route sets (%d trucks, %d drones) do not match the fleet (%d trucks, %d drones)",
			len(truckRoutes), len(droneRoutes), p.Trucks, p.Drones)
	}

	ev := &Evaluation{Feasible: true}
	visitSeen := make([]int, p.LocationCount())
	served := make([]int64, p.LocationCount())

	evalVehicle := func(class models.VehicleClass, vehicle int, trips [][]int) {
		var total int64
		for ti, seq := range trips {
			units, err := unitsForTrip(p, seq, visitSeen, served)
			if err != nil {
				ev.Feasible = false
				ev.Violations = append(ev.Violations, fmt.Sprintf("%s %d trip %d: %v", class, vehicle, ti, err))
				continue
			}
			stats, verdict := evalTrip(p, class, units)
			if verdict != Accepted {
				ev.Feasible = false
				ev.Violations = append(ev.Violations, fmt.Sprintf("%s %d trip %d: %s", class, vehicle, ti, verdict))
			}
			total += stats.duration
		}
		ev.VehicleTimes = append(ev.VehicleTimes, models.Seconds(total))
		ev.TotalTravel += models.Seconds(total)
		if t := models.Seconds(total); t > ev.Makespan {
			ev.Makespan = t
		}
	}

	for v, trips := range truckRoutes {
		evalVehicle(models.ClassTruck, v, trips)
	}
	for v, trips := range droneRoutes {
		evalVehicle(models.ClassDrone, v, trips)
	}

	for c := 1; c < p.LocationCount(); c++ {
		if served[c] != p.Locations[c].Demand {
			ev.Feasible = false
			ev.Violations = append(ev.Violations, fmt.Sprintf(
				"customer %d: served %d of demand %d", c, served[c], p.Locations[c].Demand))
		}
	}

	return ev, nil
}

// unitsForTrip maps a location sequence back onto service units: the k-th
// appearance of a customer across the whole solution consumes its k-th unit.
func unitsForTrip(p *models.Problem, seq []int, visitSeen []int, served []int64) ([]int, error) {
	if len(seq) < 2 || seq[0] != 0 || seq[len(seq)-1] != 0 {
		return nil, fmt.Errorf("trip must begin and end at the depot")
	}
	units := make([]int, 0, len(seq)-2)
	for _, c := range seq[1 : len(seq)-1] {
		if c <= 0 || c >= p.LocationCount() {
			return nil, fmt.Errorf("location index %d out of range", c)
		}
		owned := p.UnitsOf(c)
		if visitSeen[c] >= len(owned) {
			return nil, fmt.Errorf("customer %d visited more than its %d required visits", c, len(owned))
		}
		u := owned[visitSeen[c]]
		visitSeen[c]++
		served[c] += p.Units[u].Quantity
		units = append(units, u)
	}
	return units, nil
}

// EvaluateResult audits a search result against a problem model, typically
// the same one it was produced with. It is the validation gate before any
// schedule leaves the core.
func EvaluateResult(p *models.Problem, r *Result) (*Evaluation, error) {
	routes := r.Schedule.Routes()
	return EvaluateRoutes(p, routes[:p.Trucks], routes[p.Trucks:])
}
