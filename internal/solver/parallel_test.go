package solver

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

func TestSolveSingleWorkerMatchesSearch(t *testing.T) {
	p := searchProblem(t)
	direct, err := Search(context.Background(), p, searchOpts())
	require.NoError(t, err)

	res, err := Solve(context.Background(), p, SolveOptions{Options: searchOpts(), Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, direct.Makespan, res.Makespan)
	assert.Equal(t, direct.TotalTravel, res.TotalTravel)
}

func TestSolvePropagatesConstructionFailure(t *testing.T) {
	// A customer no vehicle can serve makes every worker fail the same way;
	// the coordinator must surface the error instead of a nil result.
	drone := models.DroneSpec{
		Model:       models.ModelEndurance,
		Capacity:    models.QuantizeLoad(100),
		Speed:       2.0,
		FlightLimit: models.QuantizeTime(90),
	}
	p := newTestProblem(t, 1, 1, drone,
		models.Location{X: 100, Demand: models.QuantizeLoad(30), Dronable: true, Visits: 1},
	)

	res, err := Solve(context.Background(), p, SolveOptions{Options: searchOpts(), Workers: 2})
	assert.Nil(t, res)
	var infeasible *models.InfeasibleInstance
	require.ErrorAs(t, err, &infeasible)
}

func TestSolvePicksBestAcrossWorkers(t *testing.T) {
	p := searchProblem(t)
	res, err := Solve(context.Background(), p, SolveOptions{Options: searchOpts(), Workers: 2})
	require.NoError(t, err)

	require.NotNil(t, res.Schedule)
	assert.NoError(t, res.Schedule.Validate())
	assert.Equal(t, res.Makespan, res.Schedule.Makespan())

	// The winner can never be worse than any individual seeded run.
	workers := 2
	if runtime.NumCPU() < workers {
		workers = runtime.NumCPU()
	}
	for seed := int64(7); seed < 7+int64(workers); seed++ {
		o := searchOpts()
		o.Seed = seed
		single, err := Search(context.Background(), p, o)
		require.NoError(t, err)
		if single.Makespan < res.Makespan {
			t.Fatalf("worker seed %d found makespan %d below the reported best %d",
				seed, single.Makespan, res.Makespan)
		}
	}
}
