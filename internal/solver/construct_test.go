package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

func TestConstructCoversEveryUnit(t *testing.T) {
	p := newTestProblem(t, 2, 2, testDroneSpec(),
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
		models.Location{X: -80, Demand: models.QuantizeLoad(2), Visits: 1},
		models.Location{Y: 60, Demand: models.QuantizeLoad(4), Dronable: true, Visits: 2},
		models.Location{Y: -40, Demand: models.QuantizeLoad(3), Visits: 1},
	)
	s, err := Construct(p)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	for u := range p.Units {
		assert.NotEqual(t, Unassigned, s.Pos(u))
	}
}

func TestConstructIsDeterministic(t *testing.T) {
	p := newTestProblem(t, 2, 1, testDroneSpec(),
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
		models.Location{X: -80, Demand: models.QuantizeLoad(2), Visits: 1},
		models.Location{Y: 60, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
	)
	a, err := Construct(p)
	require.NoError(t, err)
	b, err := Construct(p)
	require.NoError(t, err)

	assert.Equal(t, a.Makespan(), b.Makespan())
	assert.Equal(t, a.Routes(), b.Routes())
}

func TestConstructPrefersDronesForDronable(t *testing.T) {
	p := tinyProblem(t)
	s, err := Construct(p)
	require.NoError(t, err)

	// The dronable customer lands on the drone, the other on the truck.
	dronableUnit := p.UnitsOf(1)[0]
	assert.Equal(t, models.ClassDrone, s.Vehicles[s.Pos(dronableUnit).Vehicle].Class)
	truckUnit := p.UnitsOf(2)[0]
	assert.Equal(t, models.ClassTruck, s.Vehicles[s.Pos(truckUnit).Vehicle].Class)
}

func TestConstructReportsInfeasibleInstance(t *testing.T) {
	// The 30 kg demand exceeds the truck capacity, and the 100 s round trip
	// exceeds the drone's 90 s endurance. No vehicle can serve the customer.
	drone := models.DroneSpec{
		Model:       models.ModelEndurance,
		Capacity:    models.QuantizeLoad(100),
		Speed:       2.0,
		FlightLimit: models.QuantizeTime(90),
	}
	p := newTestProblem(t, 1, 1, drone,
		models.Location{X: 100, Demand: models.QuantizeLoad(30), Dronable: true, Visits: 1},
	)

	_, err := Construct(p)
	var infeasible *models.InfeasibleInstance
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, 1, infeasible.Customer)
}

func TestConstructReachesTinyOptimum(t *testing.T) {
	p := tinyProblem(t)
	s, err := Construct(p)
	require.NoError(t, err)
	// The truck-only customer forces a 200 s round trip; nothing can beat it.
	assert.Equal(t, models.QuantizeTime(200), s.Makespan())
}
