package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// Test vehicles use round numbers so leg durations quantize exactly: the
// truck drives 1 m/s, the drone cruises 2 m/s with no takeoff or landing
// overhead and no endurance limit unless a test sets one.

func testTruckSpec() models.TruckSpec {
	return models.TruckSpec{Capacity: models.QuantizeLoad(10), Speed: 1.0}
}

func testDroneSpec() models.DroneSpec {
	return models.DroneSpec{Model: models.ModelEndurance, Capacity: models.QuantizeLoad(3), Speed: 2.0}
}

func newTestProblem(t *testing.T, trucks, drones int, drone models.DroneSpec, customers ...models.Location) *models.Problem {
	t.Helper()
	locs := append([]models.Location{{Dronable: true}}, customers...)
	p, err := models.NewProblem("test", locs, trucks, drones, testTruckSpec(), drone, models.Euclidean)
	require.NoError(t, err)
	return p
}

// tinyProblem has one dronable customer 10 m out and one truck-only customer
// 100 m out, served by one truck and one drone. The optimal makespan is the
// truck's 200 s round trip.
func tinyProblem(t *testing.T) *models.Problem {
	t.Helper()
	return newTestProblem(t, 1, 1, testDroneSpec(),
		models.Location{X: 10, Demand: models.QuantizeLoad(1), Dronable: true, Visits: 1},
		models.Location{X: 100, Demand: models.QuantizeLoad(2), Visits: 1},
	)
}
