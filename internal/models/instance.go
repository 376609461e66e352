package models

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Instance is the raw content of a problem file before quantization.
type Instance struct {
	Name      string
	Trucks    int
	Drones    int
	DepotX    float64
	DepotY    float64
	Customers []InstanceCustomer
}

// InstanceCustomer is one customer row of a problem file.
type InstanceCustomer struct {
	X, Y     float64
	Dronable bool
	Demand   float64
	Visits   int
}

var (
	trucksCountRe = regexp.MustCompile(`trucks_count (\d+)`)
	dronesCountRe = regexp.MustCompile(`drones_count (\d+)`)
	depotRe       = regexp.MustCompile(`depot (-?[\d\.]+)\s+(-?[\d\.]+)`)
	customerRe    = regexp.MustCompile(`(?m)^\s*(-?[\d\.]+)\s+(-?[\d\.]+)\s+(0|1)\s+([\d\.]+)(?:\s+(\d+))?\s*$`)
)

// ParseInstance reads a problem file. The format is plain text with
// `trucks_count N`, `drones_count N` and `depot X Y` headers followed by one
// `x y dronable demand [visits]` row per customer.
func ParseInstance(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance: %w", err)
	}

	inst := &Instance{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	if m := trucksCountRe.FindStringSubmatch(string(data)); m != nil {
		inst.Trucks, _ = strconv.Atoi(m[1])
	} else {
		return nil, configErrorf("%s: missing trucks_count", path)
	}
	if m := dronesCountRe.FindStringSubmatch(string(data)); m != nil {
		inst.Drones, _ = strconv.Atoi(m[1])
	} else {
		return nil, configErrorf("%s: missing drones_count", path)
	}
	if m := depotRe.FindStringSubmatch(string(data)); m != nil {
		inst.DepotX, _ = strconv.ParseFloat(m[1], 64)
		inst.DepotY, _ = strconv.ParseFloat(m[2], 64)
	} else {
		return nil, configErrorf("%s: missing depot coordinates", path)
	}

	for _, m := range customerRe.FindAllStringSubmatch(string(data), -1) {
		x, _ := strconv.ParseFloat(m[1], 64)
		y, _ := strconv.ParseFloat(m[2], 64)
		demand, _ := strconv.ParseFloat(m[4], 64)
		visits := 1
		if m[5] != "" {
			visits, _ = strconv.Atoi(m[5])
			if visits < 1 {
				visits = 1
			}
		}
		inst.Customers = append(inst.Customers, InstanceCustomer{
			X:        x,
			Y:        y,
			Dronable: m[3] == "1",
			Demand:   demand,
			Visits:   visits,
		})
	}
	if len(inst.Customers) == 0 {
		return nil, configErrorf("%s: no customer rows", path)
	}

	return inst, nil
}

// Build turns a parsed instance into a Problem. Non-negative truckDelta and
// droneDelta override the fleet counts from the file header.
func (inst *Instance) Build(truck TruckSpec, drone DroneSpec, dist DistanceType, truckDelta, droneDelta int) (*Problem, error) {
	trucks, drones := inst.Trucks, inst.Drones
	if truckDelta >= 0 {
		trucks = truckDelta
	}
	if droneDelta >= 0 {
		drones = droneDelta
	}

	locations := make([]Location, 0, len(inst.Customers)+1)
	locations = append(locations, Location{X: inst.DepotX, Y: inst.DepotY, Dronable: true})
	for _, c := range inst.Customers {
		locations = append(locations, Location{
			X:        c.X,
			Y:        c.Y,
			Demand:   QuantizeLoad(c.Demand),
			Dronable: c.Dronable,
			Visits:   c.Visits,
		})
	}

	return NewProblem(inst.Name, locations, trucks, drones, truck, drone, dist)
}
