package models

import (
	_ "embed"
	"encoding/json"
	"math"
)

// Drone performance profiles shipped with the binary. Each energy model comes
// in four variants keyed by speed type and range type, mirroring the
// reference parameter tables for the sampling-service fleet.

//go:embed profiles/truck_config.json
var truckConfigJSON []byte

//go:embed profiles/drone_endurance_config.json
var droneEnduranceJSON []byte

//go:embed profiles/drone_linear_config.json
var droneLinearJSON []byte

//go:embed profiles/drone_nonlinear_config.json
var droneNonLinearJSON []byte

type truckProfileJSON struct {
	SpeedMPS   float64 `json:"speed_mps"`
	CapacityKG float64 `json:"capacity_kg"`
}

type enduranceProfileJSON struct {
	SpeedType  string  `json:"speed_type"`
	RangeType  string  `json:"range_type"`
	CapacityKG float64 `json:"capacity_kg"`
	FixedTimeS float64 `json:"fixed_time_s"`
	SpeedMPS   float64 `json:"speed_mps"`
}

type linearProfileJSON struct {
	SpeedType       string  `json:"speed_type"`
	RangeType       string  `json:"range_type"`
	TakeoffSpeedMPS float64 `json:"takeoff_speed_mps"`
	CruiseSpeedMPS  float64 `json:"cruise_speed_mps"`
	LandingSpeedMPS float64 `json:"landing_speed_mps"`
	CruiseAltM      float64 `json:"cruise_alt_m"`
	CapacityKG      float64 `json:"capacity_kg"`
	BatteryJ        float64 `json:"battery_j"`
	BetaWPerKG      float64 `json:"beta_w_per_kg"`
	GammaW          float64 `json:"gamma_w"`
}

type nonLinearProfileJSON struct {
	SpeedType       string  `json:"speed_type"`
	RangeType       string  `json:"range_type"`
	TakeoffSpeedMPS float64 `json:"takeoff_speed_mps"`
	CruiseSpeedMPS  float64 `json:"cruise_speed_mps"`
	LandingSpeedMPS float64 `json:"landing_speed_mps"`
	CruiseAltM      float64 `json:"cruise_alt_m"`
	CapacityKG      float64 `json:"capacity_kg"`
	BatteryJ        float64 `json:"battery_j"`
}

type nonLinearFileJSON struct {
	K1       float64                `json:"k1"`
	K2       float64                `json:"k2_sqrt_kg_per_m"`
	C1       float64                `json:"c1_sqrt_m_per_kg"`
	C2       float64                `json:"c2_sqrt_m_per_kg"`
	C4       float64                `json:"c4_kg_per_m"`
	C5       float64                `json:"c5_ns_per_m"`
	Profiles []nonLinearProfileJSON `json:"profiles"`
}

// DefaultTruckSpec returns the built-in truck profile.
func DefaultTruckSpec() (TruckSpec, error) {
	var raw truckProfileJSON
	if err := json.Unmarshal(truckConfigJSON, &raw); err != nil {
		return TruckSpec{}, configErrorf("bad truck profile: %v", err)
	}
	return TruckSpec{
		Capacity: QuantizeLoad(raw.CapacityKG),
		Speed:    raw.SpeedMPS,
	}, nil
}

// DroneSpecFor resolves a drone profile by energy model, speed type and range
// type. The unlimited model ignores both type selectors.
func DroneSpecFor(model EnergyModel, speedType, rangeType string) (DroneSpec, error) {
	switch model {
	case ModelUnlimited:
		return DroneSpec{
			Model:    ModelUnlimited,
			Capacity: math.MaxInt64,
			Speed:    1.0,
		}, nil
	case ModelEndurance:
		var raw []enduranceProfileJSON
		if err := json.Unmarshal(droneEnduranceJSON, &raw); err != nil {
			return DroneSpec{}, configErrorf("bad endurance profile: %v", err)
		}
		for _, p := range raw {
			if p.SpeedType == speedType && p.RangeType == rangeType {
				return DroneSpec{
					Model:       ModelEndurance,
					Capacity:    QuantizeLoad(p.CapacityKG),
					Speed:       p.SpeedMPS,
					FlightLimit: QuantizeTime(p.FixedTimeS),
				}, nil
			}
		}
	case ModelLinear:
		var raw []linearProfileJSON
		if err := json.Unmarshal(droneLinearJSON, &raw); err != nil {
			return DroneSpec{}, configErrorf("bad linear profile: %v", err)
		}
		for _, p := range raw {
			if p.SpeedType == speedType && p.RangeType == rangeType {
				return DroneSpec{
					Model:       ModelLinear,
					Capacity:    QuantizeLoad(p.CapacityKG),
					Speed:       p.CruiseSpeedMPS,
					Battery:     p.BatteryJ,
					Beta:        p.BetaWPerKG,
					Gamma:       p.GammaW,
					TakeoffTime: QuantizeTime(p.CruiseAltM / p.TakeoffSpeedMPS),
					LandingTime: QuantizeTime(p.CruiseAltM / p.LandingSpeedMPS),
				}, nil
			}
		}
	case ModelNonLinear:
		var raw nonLinearFileJSON
		if err := json.Unmarshal(droneNonLinearJSON, &raw); err != nil {
			return DroneSpec{}, configErrorf("bad non-linear profile: %v", err)
		}
		for _, p := range raw.Profiles {
			if p.SpeedType == speedType && p.RangeType == rangeType {
				v := p.CruiseSpeedMPS
				// Cruise speed is tilted 10 degrees off the horizontal.
				tilted := v * math.Cos(math.Pi/18)
				return DroneSpec{
					Model:       ModelNonLinear,
					Capacity:    QuantizeLoad(p.CapacityKG),
					Speed:       v,
					Battery:     p.BatteryJ,
					TakeoffTime: QuantizeTime(p.CruiseAltM / p.TakeoffSpeedMPS),
					LandingTime: QuantizeTime(p.CruiseAltM / p.LandingSpeedMPS),
					VertK1:      raw.K1 * gravity,
					VertK2:      gravity / (raw.K2 * raw.K2),
					VertC2:      raw.C2 * math.Pow(gravity, 1.5),
					HalfTakeoff: p.TakeoffSpeedMPS / 2,
					HalfLanding: p.LandingSpeedMPS / 2,
					HoriC12:     raw.C1 + raw.C2,
					HoriC4V3:    raw.C4 * v * v * v,
					HoriC42V4:   raw.C4 * raw.C4 * v * v * v * v,
					HoriC5:      raw.C5 * tilted * tilted,
				}, nil
			}
		}
	}
	return DroneSpec{}, configErrorf("no drone profile for model=%s speed=%s range=%s", model, speedType, rangeType)
}
