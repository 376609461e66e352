package generator

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/jaswdr/faker"
)

// Params controls synthetic instance generation. Coordinates are meters
// around a depot at the origin, demands are kilograms.
type Params struct {
	Customers    int
	Trucks       int
	Drones       int
	Radius       int     // max coordinate magnitude, m
	MaxDemand    float64 // kg
	DronableRate int     // percentage of customers eligible for drones
	MaxVisits    int     // upper bound for the required visit count
	Seed         int64
}

// Generate writes a random problem file. The same seed always produces the
// same instance, which keeps generated fixtures reproducible.
func Generate(path string, p Params) error {
	if p.Customers < 1 {
		return fmt.Errorf("need at least one customer")
	}
	if p.Trucks+p.Drones < 1 {
		return fmt.Errorf("need at least one vehicle")
	}
	if p.MaxVisits < 1 {
		p.MaxVisits = 1
	}

	fake := faker.NewWithSeed(rand.NewSource(p.Seed))

	var b strings.Builder
	fmt.Fprintf(&b, "# generated instance: %d customers around %s\n", p.Customers, fake.Address().City())
	fmt.Fprintf(&b, "trucks_count %d\n", p.Trucks)
	fmt.Fprintf(&b, "drones_count %d\n", p.Drones)
	fmt.Fprintf(&b, "depot 0.0 0.0\n")

	for i := 0; i < p.Customers; i++ {
		x := fake.Float64(2, -p.Radius, p.Radius)
		y := fake.Float64(2, -p.Radius, p.Radius)
		demand := fake.Float64(3, 1, int(p.MaxDemand*1000)) / 1000.0
		dronable := 0
		if fake.Boolean().BoolWithChance(p.DronableRate) {
			dronable = 1
		}
		visits := 1
		if p.MaxVisits > 1 {
			visits = fake.IntBetween(1, p.MaxVisits)
		}
		if visits > 1 {
			fmt.Fprintf(&b, "%.2f %.2f %d %.3f %d\n", x, y, dronable, demand, visits)
		} else {
			fmt.Fprintf(&b, "%.2f %.2f %d %.3f\n", x, y, dronable, demand)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
