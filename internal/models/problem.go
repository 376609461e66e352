package models

import (
	"fmt"
	"math"
)

// Time values are quantized to int64 microseconds and load values to int64
// milli-units (grams when demands are kilograms) when the problem is built.
// All schedule bookkeeping downstream is exact integer arithmetic, so
// repeated incremental updates never drift.

// QuantizeTime converts seconds to microseconds.
func QuantizeTime(seconds float64) int64 {
	return int64(math.Round(seconds * 1e6))
}

// QuantizeLoad converts a demand quantity to milli-units.
func QuantizeLoad(quantity float64) int64 {
	return int64(math.Round(quantity * 1e3))
}

// Seconds converts a quantized time back to float seconds for reporting.
func Seconds(t int64) float64 { return float64(t) / 1e6 }

// VehicleClass distinguishes the two fleet variants.
type VehicleClass int

const (
	ClassTruck VehicleClass = iota
	ClassDrone
)

func (c VehicleClass) String() string {
	if c == ClassDrone {
		return "drone"
	}
	return "truck"
}

// EnergyModel selects how drone endurance is accounted.
type EnergyModel int

const (
	// ModelEndurance caps the cumulative flight time of a single trip.
	ModelEndurance EnergyModel = iota
	// ModelLinear caps the energy drawn from the battery within a single
	// trip, with power linear in the carried payload.
	ModelLinear
	// ModelNonLinear caps the battery energy like ModelLinear but draws
	// distinct aerodynamic takeoff, cruise and landing powers.
	ModelNonLinear
	// ModelUnlimited disables the endurance constraint.
	ModelUnlimited
)

func (m EnergyModel) String() string {
	switch m {
	case ModelLinear:
		return "linear"
	case ModelNonLinear:
		return "non-linear"
	case ModelUnlimited:
		return "unlimited"
	default:
		return "endurance"
	}
}

// ParseEnergyModel maps a config string to an EnergyModel.
func ParseEnergyModel(s string) (EnergyModel, error) {
	switch s {
	case "endurance":
		return ModelEndurance, nil
	case "linear":
		return ModelLinear, nil
	case "non-linear":
		return ModelNonLinear, nil
	case "unlimited":
		return ModelUnlimited, nil
	}
	return ModelEndurance, configErrorf("unknown energy model %q", s)
}

// TruckSpec describes the truck vehicle class.
type TruckSpec struct {
	Capacity int64   // milli-units per trip
	Speed    float64 // m/s
}

// DroneSpec describes the drone vehicle class as a tagged variant: the
// shared fields apply to every model, the remainder only to the tagged one.
type DroneSpec struct {
	Model    EnergyModel
	Capacity int64   // milli-units per trip
	Speed    float64 // cruise speed, m/s

	// ModelEndurance
	FlightLimit int64 // µs per trip, 0 means unlimited

	// ModelLinear and ModelNonLinear
	Battery     float64 // J per trip
	Beta        float64 // W per kg of payload
	Gamma       float64 // W baseline
	TakeoffTime int64   // µs per leg
	LandingTime int64   // µs per leg

	// ModelNonLinear, precomputed from the profile constants
	VertK1      float64
	VertK2      float64
	VertC2      float64
	HalfTakeoff float64 // m/s
	HalfLanding float64 // m/s
	HoriC12     float64
	HoriC4V3    float64
	HoriC42V4   float64
	HoriC5      float64
}

const (
	droneFrameMass = 1.5 // kg
	gravity        = 9.8 // m/s²
)

// Power returns the drone power draw in W while carrying the given payload.
func (d DroneSpec) Power(payload int64) float64 {
	return d.Beta*float64(payload)/1e3 + d.Gamma
}

// TakeoffPower returns the power drawn during the ascent leg.
func (d DroneSpec) TakeoffPower(payload int64) float64 {
	switch d.Model {
	case ModelLinear:
		return d.Power(payload)
	case ModelNonLinear:
		return d.verticalPower(payload, d.HalfTakeoff)
	}
	return 0
}

// LandingPower returns the power drawn during the descent leg.
func (d DroneSpec) LandingPower(payload int64) float64 {
	switch d.Model {
	case ModelLinear:
		return d.Power(payload)
	case ModelNonLinear:
		return d.verticalPower(payload, d.HalfLanding)
	}
	return 0
}

// CruisePower returns the power drawn at cruise speed.
func (d DroneSpec) CruisePower(payload int64) float64 {
	switch d.Model {
	case ModelLinear:
		return d.Power(payload)
	case ModelNonLinear:
		w := (droneFrameMass + float64(payload)/1e3) * gravity
		temp := w - d.HoriC5
		return d.HoriC12*math.Pow(temp*temp+d.HoriC42V4, 0.75) + d.HoriC4V3
	}
	return 0
}

func (d DroneSpec) verticalPower(payload int64, half float64) float64 {
	w := droneFrameMass + float64(payload)/1e3
	return d.VertK1*w*(half+math.Sqrt(half*half+d.VertK2*w)) + d.VertC2*math.Pow(w, 1.5)
}

// DistanceType selects the planar metric used for both vehicle classes.
type DistanceType int

const (
	Euclidean DistanceType = iota
	Manhattan
)

func (d DistanceType) String() string {
	if d == Manhattan {
		return "manhattan"
	}
	return "euclidean"
}

// ParseDistanceType maps a config string to a DistanceType.
func ParseDistanceType(s string) (DistanceType, error) {
	switch s {
	case "euclidean":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	}
	return Euclidean, configErrorf("unknown distance type %q", s)
}

func (d DistanceType) distance(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	if d == Manhattan {
		return math.Abs(dx) + math.Abs(dy)
	}
	return math.Sqrt(dx*dx + dy*dy)
}

// Location is the depot (index 0) or a customer (index >= 1).
type Location struct {
	X, Y     float64
	Demand   int64 // milli-units; 0 for the depot
	Dronable bool
	Visits   int // required visit count, >= 1 for customers
}

// ServiceUnit is one indivisible share of a customer's demand. A customer
// with required visit count k owns exactly k units whose quantities sum to
// its demand; assigning every unit to a trip covers the demand exactly.
type ServiceUnit struct {
	Customer int
	Quantity int64
}

// Problem is the immutable problem model shared read-only by all workers.
type Problem struct {
	Name      string
	Locations []Location
	Trucks    int
	Drones    int
	Truck     TruckSpec
	Drone     DroneSpec
	Units     []ServiceUnit

	n         int
	truckTime []int64 // flat n*n, µs
	droneTime []int64 // flat n*n, µs
	unitsOf   [][]int // customer -> unit ids
}

// NewProblem validates the instance and precomputes the travel-time matrices
// for both vehicle classes from the same coordinates.
func NewProblem(name string, locations []Location, trucks, drones int, truck TruckSpec, drone DroneSpec, dist DistanceType) (*Problem, error) {
	if trucks < 0 || drones < 0 {
		return nil, configErrorf("negative vehicle count: trucks=%d drones=%d", trucks, drones)
	}
	if trucks+drones == 0 {
		return nil, configErrorf("empty fleet")
	}
	if len(locations) < 2 {
		return nil, configErrorf("need a depot and at least one customer")
	}

	n := len(locations)
	p := &Problem{
		Name:      name,
		Locations: append([]Location(nil), locations...),
		Trucks:    trucks,
		Drones:    drones,
		Truck:     truck,
		Drone:     drone,
		n:         n,
		truckTime: make([]int64, n*n),
		droneTime: make([]int64, n*n),
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := dist.distance(locations[i].X, locations[i].Y, locations[j].X, locations[j].Y)
			p.truckTime[i*n+j] = QuantizeTime(d / truck.Speed)
			p.droneTime[i*n+j] = QuantizeTime(d / drone.Speed)
		}
	}

	p.unitsOf = make([][]int, n)
	for c := 1; c < n; c++ {
		loc := &p.Locations[c]
		if loc.Demand <= 0 {
			return nil, configErrorf("customer %d has non-positive demand", c)
		}
		if loc.Visits < 1 {
			loc.Visits = 1
		}

		// Split the demand into the required visit count; the first unit
		// absorbs the remainder so the quantities sum exactly.
		share := loc.Demand / int64(loc.Visits)
		if share == 0 {
			return nil, configErrorf("customer %d: demand %d cannot be split into %d visits", c, loc.Demand, loc.Visits)
		}
		rem := loc.Demand - share*int64(loc.Visits)
		for v := 0; v < loc.Visits; v++ {
			q := share
			if v == 0 {
				q += rem
			}
			p.unitsOf[c] = append(p.unitsOf[c], len(p.Units))
			p.Units = append(p.Units, ServiceUnit{Customer: c, Quantity: q})
		}

		// A dronable flag only holds if a single unit fits the drone payload.
		if loc.Dronable && share+rem > drone.Capacity {
			loc.Dronable = false
		}

		maxCap := truck.Capacity
		if trucks == 0 || (loc.Dronable && drone.Capacity > maxCap) {
			maxCap = drone.Capacity
		}
		if loc.Demand > maxCap*int64(loc.Visits) {
			return nil, configErrorf("customer %d: demand %d exceeds fleet capacity %d over %d visits", c, loc.Demand, maxCap, loc.Visits)
		}

		if trucks == 0 {
			// Drone-only fleet: every customer must be dronable and within
			// a depot round trip under the endurance limit. Multi-hop
			// feasibility beyond that is the search engine's concern.
			if !loc.Dronable {
				return nil, configErrorf("customer %d is not dronable and no trucks are available", c)
			}
			if err := p.checkHalfTrip(c); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// checkHalfTrip rejects customers whose depot round trip alone already
// exceeds the drone endurance limit.
func (p *Problem) checkHalfTrip(c int) error {
	d := p.Drone
	legs := int64(2)
	flight := p.droneTime[c] + p.droneTime[c*p.n] + (d.TakeoffTime+d.LandingTime)*legs
	switch d.Model {
	case ModelEndurance:
		if d.FlightLimit > 0 && flight > d.FlightLimit {
			return configErrorf("customer %d unreachable within drone endurance (%s round trip)", c, fmt.Sprintf("%.1fs", Seconds(flight)))
		}
	case ModelLinear, ModelNonLinear:
		q := p.Units[p.unitsOf[c][0]].Quantity
		out := d.TakeoffPower(0)*Seconds(d.TakeoffTime) +
			d.CruisePower(0)*Seconds(p.droneTime[c]) +
			d.LandingPower(0)*Seconds(d.LandingTime)
		back := d.TakeoffPower(q)*Seconds(d.TakeoffTime) +
			d.CruisePower(q)*Seconds(p.droneTime[c*p.n]) +
			d.LandingPower(q)*Seconds(d.LandingTime)
		if out+back > d.Battery {
			return configErrorf("customer %d unreachable within drone battery budget", c)
		}
	}
	return nil
}

// LocationCount returns the number of locations including the depot.
func (p *Problem) LocationCount() int { return p.n }

// Customers returns the number of customers (locations minus the depot).
func (p *Problem) Customers() int { return p.n - 1 }

// Vehicles returns the total fleet size.
func (p *Problem) Vehicles() int { return p.Trucks + p.Drones }

// UnitsOf returns the service unit ids of a customer.
func (p *Problem) UnitsOf(customer int) []int { return p.unitsOf[customer] }

// TruckTime returns the truck travel time between two locations in µs.
func (p *Problem) TruckTime(i, j int) int64 { return p.truckTime[i*p.n+j] }

// DroneTime returns the drone cruise time between two locations in µs,
// excluding takeoff and landing legs.
func (p *Problem) DroneTime(i, j int) int64 { return p.droneTime[i*p.n+j] }

// TravelTime returns the class-specific travel time between two locations.
func (p *Problem) TravelTime(class VehicleClass, i, j int) int64 {
	if class == ClassDrone {
		return p.droneTime[i*p.n+j]
	}
	return p.truckTime[i*p.n+j]
}

// Capacity returns the per-trip capacity of a vehicle class.
func (p *Problem) Capacity(class VehicleClass) int64 {
	if class == ClassDrone {
		return p.Drone.Capacity
	}
	return p.Truck.Capacity
}
