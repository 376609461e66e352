package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// crossProblem has four single-visit customers on the axes, so every trip
// duration is a round number of seconds.
func crossProblem(t *testing.T) *models.Problem {
	t.Helper()
	return newTestProblem(t, 2, 0, testDroneSpec(),
		models.Location{X: 100, Demand: models.QuantizeLoad(1), Visits: 1},
		models.Location{X: -100, Demand: models.QuantizeLoad(1), Visits: 1},
		models.Location{Y: 50, Demand: models.QuantizeLoad(1), Visits: 1},
		models.Location{Y: -50, Demand: models.QuantizeLoad(1), Visits: 1},
	)
}

func TestNewScheduleLayout(t *testing.T) {
	p := tinyProblem(t)
	s := NewSchedule(p)

	require.Len(t, s.Vehicles, 2)
	assert.Equal(t, models.ClassTruck, s.Vehicles[0].Class)
	assert.Equal(t, models.ClassDrone, s.Vehicles[1].Class)
	assert.Zero(t, s.Makespan())
	for u := range p.Units {
		assert.Equal(t, Unassigned, s.Pos(u))
	}
}

func TestMakespanBookkeeping(t *testing.T) {
	p := crossProblem(t)
	s := NewSchedule(p)

	// Two holders of the maximum, then both shrink: the second shrink must
	// trigger a rescan rather than keep the stale maximum.
	s.addTrip(0, []int{p.UnitsOf(1)[0]})
	assert.Equal(t, models.QuantizeTime(200), s.Makespan())

	s.addTrip(1, []int{p.UnitsOf(2)[0]})
	assert.Equal(t, models.QuantizeTime(200), s.Makespan())

	s.setTrip(0, 0, []int{p.UnitsOf(3)[0]})
	assert.Equal(t, models.QuantizeTime(200), s.Makespan())

	s.setTrip(1, 0, []int{p.UnitsOf(4)[0]})
	assert.Equal(t, models.QuantizeTime(100), s.Makespan())

	assert.Equal(t, s.RecomputedMakespan(), s.Makespan())
}

func TestRemoveTripShiftsPositions(t *testing.T) {
	p := crossProblem(t)
	s := NewSchedule(p)
	u1, u2 := p.UnitsOf(1)[0], p.UnitsOf(2)[0]
	s.addTrip(0, []int{u1})
	s.addTrip(0, []int{u2})

	s.removeTrip(0, 0)
	assert.Equal(t, Unassigned, s.Pos(u1))
	assert.Equal(t, UnitPos{Vehicle: 0, Trip: 0, Index: 0}, s.Pos(u2))
	assert.Equal(t, models.QuantizeTime(200), s.Makespan())
	assert.Equal(t, s.RecomputedMakespan(), s.Makespan())
}

func TestCommittingRejectedTripPanics(t *testing.T) {
	p := newTestProblem(t, 1, 0, testDroneSpec(),
		models.Location{X: 10, Demand: models.QuantizeLoad(6), Visits: 1},
		models.Location{X: 20, Demand: models.QuantizeLoad(6), Visits: 1},
	)
	s := NewSchedule(p)
	assert.Panics(t, func() {
		s.addTrip(0, []int{p.UnitsOf(1)[0], p.UnitsOf(2)[0]})
	})
}

func TestCloneIndependence(t *testing.T) {
	p := crossProblem(t)
	s := NewSchedule(p)
	s.addTrip(0, []int{p.UnitsOf(1)[0]})

	c := s.Clone()
	s.addTrip(1, []int{p.UnitsOf(2)[0]})
	s.setTrip(0, 0, []int{p.UnitsOf(3)[0]})

	assert.Len(t, c.Vehicles[1].Trips, 0)
	assert.Equal(t, []int{p.UnitsOf(1)[0]}, c.Vehicles[0].Trips[0].Units)
	assert.Equal(t, models.QuantizeTime(200), c.Makespan())
}

func TestRoutes(t *testing.T) {
	p := crossProblem(t)
	s := NewSchedule(p)
	s.addTrip(0, []int{p.UnitsOf(1)[0], p.UnitsOf(3)[0]})
	s.addTrip(0, []int{p.UnitsOf(2)[0]})
	s.addTrip(1, []int{p.UnitsOf(4)[0]})

	routes := s.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, [][]int{{0, 1, 3, 0}, {0, 2, 0}}, routes[0])
	assert.Equal(t, [][]int{{0, 4, 0}}, routes[1])
}

func TestValidateAcceptsSplitVisits(t *testing.T) {
	p := newTestProblem(t, 2, 0, testDroneSpec(),
		models.Location{X: 10, Demand: models.QuantizeLoad(4), Visits: 2},
	)
	s := NewSchedule(p)
	units := p.UnitsOf(1)
	s.addTrip(0, units[:1])
	s.addTrip(1, units[1:])
	assert.NoError(t, s.Validate())
}
