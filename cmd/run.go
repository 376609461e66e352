package cmd

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/output"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/solver"
)

var runCmd = &cobra.Command{
	Use:   "run [problem file]",
	Short: "Solve a problem instance and write run artifacts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Problem = args[0]
		}
		if cfg.Problem == "" {
			return fmt.Errorf("no problem file given: pass it as an argument or set \"problem\" in the config")
		}
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		p, err := buildProblem(cfg)
		if err != nil {
			return err
		}
		log.Printf("Loaded %s: %d customers, %d trucks, %d drones",
			p.Name, p.Customers(), p.Trucks, p.Drones)

		opts := searchOptions(cfg, p)

		done := make(chan struct{})
		var res *solver.Result
		var solveErr error
		go func() {
			defer close(done)
			res, solveErr = solver.Solve(context.Background(), p, opts)
		}()

		trackProgress(cfg.TimeLimit, done)
		if solveErr != nil {
			return solveErr
		}

		ev, err := solver.EvaluateResult(p, res)
		if err != nil {
			return err
		}
		if !ev.Feasible {
			return fmt.Errorf("search produced an invalid schedule: %v", ev.Violations)
		}

		reporter, err := output.NewReporter(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer reporter.Close()

		sol, err := reporter.Finalize(p, res, ev)
		if err != nil {
			return err
		}
		log.Printf("Run %s finished: makespan %.2fs, total travel %.2fs, %d iterations",
			sol.RunID, sol.WorkingTime, sol.TotalTravel, sol.Iterations)
		return nil
	},
}

// buildProblem turns the configured instance and vehicle profiles into an
// immutable problem model.
func buildProblem(cfg *models.Config) (*models.Problem, error) {
	inst, err := models.ParseInstance(cfg.Problem)
	if err != nil {
		return nil, err
	}
	truck, err := models.DefaultTruckSpec()
	if err != nil {
		return nil, err
	}
	em, err := models.ParseEnergyModel(cfg.EnergyModel)
	if err != nil {
		return nil, err
	}
	drone, err := models.DroneSpecFor(em, cfg.SpeedType, cfg.RangeType)
	if err != nil {
		return nil, err
	}
	dist, err := models.ParseDistanceType(cfg.DistanceType)
	if err != nil {
		return nil, err
	}
	return inst.Build(truck, drone, dist, cfg.TrucksCount, cfg.DronesCount)
}

// searchOptions scales the tabu tenure and the stagnation threshold with the
// instance size, so one set of factors works from toy cases to hundreds of
// customers.
func searchOptions(cfg *models.Config, p *models.Problem) solver.SolveOptions {
	n := float64(p.Customers())
	tabuSize := int(math.Round(cfg.TabuSizeFactor * n))
	if tabuSize < 1 {
		tabuSize = 1
	}
	resetAfter := int(math.Round(cfg.ResetAfterFactor * float64(tabuSize)))
	if resetAfter < 1 {
		resetAfter = 1
	}
	return solver.SolveOptions{
		Options: solver.Options{
			Seed:            cfg.Seed,
			TabuSize:        tabuSize,
			ResetAfter:      resetAfter,
			MaxIterations:   cfg.MaxIterations,
			DestroyFraction: cfg.DestroyFraction,
			Strategy:        solver.ParseStrategy(cfg.Strategy),
			TraceIterations: cfg.IterationLog,
		},
		Workers:   cfg.Workers,
		TimeLimit: cfg.TimeLimit,
	}
}

// trackProgress renders a wall-clock progress bar while the search runs.
// With no time limit there is nothing to count down, so it just waits.
func trackProgress(limit time.Duration, done <-chan struct{}) {
	if limit <= 0 {
		<-done
		return
	}
	bar := progressbar.Default(int64(limit/time.Second), "searching")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			_ = bar.Finish()
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.Int("trucks-count", -1, "override the instance truck count (-1 keeps the header value)")
	flags.Int("drones-count", -1, "override the instance drone count (-1 keeps the header value)")
	flags.String("distance-type", "euclidean", "distance metric: euclidean or manhattan")
	flags.String("energy-model", "endurance", "drone energy model: endurance, linear, non-linear or unlimited")
	flags.String("speed-type", "high", "drone speed profile: low or high")
	flags.String("range-type", "high", "drone range profile: low or high")
	flags.Int64("seed", 0, "base RNG seed (0 picks one from the clock)")
	flags.Int("workers", 0, "parallel search runs (0 uses all CPUs)")
	flags.Duration("time-limit", 30*time.Second, "wall-clock budget for the search")
	flags.Int("max-iterations", 0, "per-run iteration budget (0 is unbounded)")
	flags.Float64("tabu-size-factor", 0.5, "tabu tenure as a fraction of the customer count")
	flags.Float64("reset-after-factor", 30, "stagnation threshold as a multiple of the tabu tenure")
	flags.Float64("destroy-fraction", 0.2, "share of service units removed by a perturbation")
	flags.String("strategy", "random", "neighborhood selection: random or cyclic")
	flags.Bool("verbose", false, "echo the solution to the console")
	flags.String("outputs", "outputs", "directory for run artifacts")
	flags.Bool("iteration-log", false, "write a Parquet per-iteration trace")
	flags.String("extra", "", "free-form note recorded with the run")

	for key, flag := range map[string]string{
		"trucks_count":       "trucks-count",
		"drones_count":       "drones-count",
		"distance_type":      "distance-type",
		"energy_model":       "energy-model",
		"speed_type":         "speed-type",
		"range_type":         "range-type",
		"seed":               "seed",
		"workers":            "workers",
		"time_limit":         "time-limit",
		"max_iterations":     "max-iterations",
		"tabu_size_factor":   "tabu-size-factor",
		"reset_after_factor": "reset-after-factor",
		"destroy_fraction":   "destroy-fraction",
		"strategy":           "strategy",
		"verbose":            "verbose",
		"outputs":            "outputs",
		"iteration_log":      "iteration-log",
		"extra":              "extra",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
