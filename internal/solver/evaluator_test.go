package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

func TestEvalTripEmpty(t *testing.T) {
	p := tinyProblem(t)
	stats, verdict := evalTrip(p, models.ClassTruck, nil)
	assert.Equal(t, Accepted, verdict)
	assert.Zero(t, stats.duration)
}

func TestEvalTripTruckDuration(t *testing.T) {
	p := tinyProblem(t)
	// Depot -> c1 (10 m) -> c2 (90 m) -> depot (100 m) at 1 m/s.
	stats, verdict := evalTrip(p, models.ClassTruck, []int{p.UnitsOf(1)[0], p.UnitsOf(2)[0]})
	assert.Equal(t, Accepted, verdict)
	assert.Equal(t, models.QuantizeTime(200), stats.duration)
	assert.Equal(t, models.QuantizeLoad(3), stats.load)
}

func TestEvalTripCapacityPrefix(t *testing.T) {
	p := newTestProblem(t, 1, 0, testDroneSpec(),
		models.Location{X: 10, Demand: models.QuantizeLoad(6), Visits: 1},
		models.Location{X: 20, Demand: models.QuantizeLoad(6), Visits: 1},
	)
	stats, verdict := evalTrip(p, models.ClassTruck, []int{p.UnitsOf(1)[0], p.UnitsOf(2)[0]})
	assert.Equal(t, RejectCapacity, verdict)
	// The scan still finishes, so the stats describe the whole trip.
	assert.Equal(t, models.QuantizeLoad(12), stats.load)
	assert.Equal(t, models.QuantizeTime(40), stats.duration)
}

func TestEvalTripVisitCount(t *testing.T) {
	p := newTestProblem(t, 1, 0, testDroneSpec(),
		models.Location{X: 10, Demand: models.QuantizeLoad(4), Visits: 2},
	)
	units := p.UnitsOf(1)
	require.Len(t, units, 2)
	_, verdict := evalTrip(p, models.ClassTruck, units)
	assert.Equal(t, RejectVisitCount, verdict)

	_, verdict = evalTrip(p, models.ClassTruck, units[:1])
	assert.Equal(t, Accepted, verdict)
}

func TestEvalTripNotDronable(t *testing.T) {
	p := tinyProblem(t)
	_, verdict := evalTrip(p, models.ClassDrone, []int{p.UnitsOf(2)[0]})
	assert.Equal(t, RejectNotDronable, verdict)
}

func TestEvalTripEnduranceLimit(t *testing.T) {
	drone := testDroneSpec()
	drone.FlightLimit = models.QuantizeTime(120)
	p := newTestProblem(t, 1, 1, drone,
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
	)
	// 200 m round trip at 2 m/s is exactly 100 s of flight.
	stats, verdict := evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, Accepted, verdict)
	assert.Equal(t, models.QuantizeTime(100), stats.duration)

	drone.FlightLimit = models.QuantizeTime(90)
	p = newTestProblem(t, 1, 1, drone,
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
	)
	_, verdict = evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, RejectEndurance, verdict)
}

func TestEvalTripLinearEnergy(t *testing.T) {
	drone := models.DroneSpec{
		Model:    models.ModelLinear,
		Capacity: models.QuantizeLoad(3),
		Speed:    2.0,
		Battery:  21000,
		Gamma:    100, // W, payload-independent
	}
	p := newTestProblem(t, 1, 1, drone,
		models.Location{X: 200, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
	)
	// 400 m round trip at 2 m/s: 200 s at 100 W is 20 kJ.
	stats, verdict := evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, Accepted, verdict)
	assert.InDelta(t, 20000, stats.energy, 1e-6)

	drone.Battery = 19000
	p = newTestProblem(t, 1, 1, drone,
		models.Location{X: 200, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
	)
	_, verdict = evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, RejectEndurance, verdict)
}

func TestEvalTripLinearEnergyGrowsWithPayload(t *testing.T) {
	drone := models.DroneSpec{
		Model:    models.ModelLinear,
		Capacity: models.QuantizeLoad(5),
		Speed:    2.0,
		Battery:  1e9,
		Beta:     10, // W per kg carried
		Gamma:    100,
	}
	p := newTestProblem(t, 1, 1, drone,
		models.Location{X: 100, Demand: models.QuantizeLoad(2), Dronable: true, Visits: 1},
	)
	// Outbound leg flies empty, the return leg carries the 2 kg sample:
	// 50 s * 100 W + 50 s * 120 W.
	stats, verdict := evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, Accepted, verdict)
	assert.InDelta(t, 5000+6000, stats.energy, 1e-6)
}

func TestEvalTripNonLinearEnergy(t *testing.T) {
	drone, err := models.DroneSpecFor(models.ModelNonLinear, "low", "low")
	require.NoError(t, err)
	customer := models.Location{X: 200, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1}

	p := newTestProblem(t, 1, 1, drone, customer)
	stats, verdict := evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, Accepted, verdict)
	assert.Greater(t, stats.energy, 0.0)
	// Each leg pays for the climb and the descent on top of the cruise.
	perLeg := p.DroneTime(0, 1) + drone.TakeoffTime + drone.LandingTime
	assert.Equal(t, 2*perLeg, stats.duration)

	drone.Battery = stats.energy / 2
	p = newTestProblem(t, 1, 1, drone, customer)
	_, verdict = evalTrip(p, models.ClassDrone, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, RejectEndurance, verdict)
}

func TestGhostOutcomeIsPure(t *testing.T) {
	p := tinyProblem(t)
	s, err := Construct(p)
	require.NoError(t, err)

	before := s.Makespan()
	travel := s.TotalTravel()
	for nb := Neighborhood(0); nb < neighborhoodCount; nb++ {
		for _, m := range generateMoves(s, nb) {
			s.EvaluateMove(m)
		}
	}
	assert.Equal(t, before, s.Makespan())
	assert.Equal(t, travel, s.TotalTravel())
	assert.NoError(t, s.Validate())
}

func TestGhostOutcomeMatchesCommit(t *testing.T) {
	p := newTestProblem(t, 2, 1, testDroneSpec(),
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
		models.Location{X: -80, Demand: models.QuantizeLoad(2), Visits: 1},
		models.Location{Y: 60, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
		models.Location{Y: -40, Demand: models.QuantizeLoad(3), Visits: 1},
	)
	s, err := Construct(p)
	require.NoError(t, err)

	checked := 0
	for nb := Neighborhood(0); nb < neighborhoodCount; nb++ {
		for _, m := range generateMoves(s, nb) {
			out := s.EvaluateMove(m)
			if out.Verdict != Accepted {
				continue
			}
			c := s.Clone()
			travel := c.TotalTravel()
			c.ApplyMove(m)
			assert.Equal(t, out.Makespan, c.Makespan())
			assert.Equal(t, out.DeltaTravel, c.TotalTravel()-travel)
			assert.NoError(t, c.Validate())
			checked++
		}
	}
	require.NotZero(t, checked)
}
