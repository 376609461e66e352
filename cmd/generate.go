package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/generator"
)

var genParams generator.Params

var generateCmd = &cobra.Command{
	Use:   "generate [output file]",
	Short: "Generate a random problem instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := generator.Generate(args[0], genParams); err != nil {
			return err
		}
		log.Printf("Wrote %d-customer instance to %s", genParams.Customers, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.IntVar(&genParams.Customers, "customers", 50, "number of customers")
	flags.IntVar(&genParams.Trucks, "trucks", 2, "truck count written to the header")
	flags.IntVar(&genParams.Drones, "drones", 2, "drone count written to the header")
	flags.IntVar(&genParams.Radius, "radius", 5000, "max coordinate magnitude in meters")
	flags.Float64Var(&genParams.MaxDemand, "max-demand", 2.0, "max customer demand in kilograms")
	flags.IntVar(&genParams.DronableRate, "dronable-rate", 80, "percentage of customers eligible for drones")
	flags.IntVar(&genParams.MaxVisits, "max-visits", 1, "upper bound for the required visit count")
	flags.Int64Var(&genParams.Seed, "seed", 1, "generation seed")
}
