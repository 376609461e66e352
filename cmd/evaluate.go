package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/output"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/solver"
)

var (
	evalProblem      string
	evalDistanceType string
	evalEnergyModel  string
	evalSpeedType    string
	evalRangeType    string
)

// evaluateCmd re-scores a saved solution, optionally under a different
// vehicle profile than the one it was produced with. Routes are taken as-is;
// no search happens.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [solution file]",
	Short: "Recompute feasibility and makespan for a saved solution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var sol output.Solution
		if err := json.Unmarshal(data, &sol); err != nil {
			return fmt.Errorf("parsing solution %s: %w", args[0], err)
		}

		problem := sol.Problem
		if evalProblem != "" {
			problem = evalProblem
		}
		inst, err := models.ParseInstance(problem)
		if err != nil {
			return err
		}

		em, err := models.ParseEnergyModel(pick(evalEnergyModel, sol.EnergyModel))
		if err != nil {
			return err
		}
		truck, err := models.DefaultTruckSpec()
		if err != nil {
			return err
		}
		drone, err := models.DroneSpecFor(em, pick(evalSpeedType, sol.SpeedType), pick(evalRangeType, sol.RangeType))
		if err != nil {
			return err
		}
		dist, err := models.ParseDistanceType(pick(pick(evalDistanceType, sol.DistanceType), "euclidean"))
		if err != nil {
			return err
		}

		// The fleet shape must match the saved route sets.
		p, err := inst.Build(truck, drone, dist, sol.Trucks, sol.Drones)
		if err != nil {
			return err
		}

		ev, err := solver.EvaluateRoutes(p, sol.TruckRoutes, sol.DroneRoutes)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func pick(override, recorded string) string {
	if override != "" {
		return override
	}
	return recorded
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalProblem, "problem", "", "instance file (defaults to the one recorded in the solution)")
	evaluateCmd.Flags().StringVar(&evalDistanceType, "distance-type", "", "distance metric override")
	evaluateCmd.Flags().StringVar(&evalEnergyModel, "energy-model", "", "drone energy model override")
	evaluateCmd.Flags().StringVar(&evalSpeedType, "speed-type", "", "drone speed profile override")
	evaluateCmd.Flags().StringVar(&evalRangeType, "range-type", "", "drone range profile override")
}
