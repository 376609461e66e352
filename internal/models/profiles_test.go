package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTruckSpec(t *testing.T) {
	truck, err := DefaultTruckSpec()
	require.NoError(t, err)
	assert.Equal(t, QuantizeLoad(1400), truck.Capacity)
	assert.Equal(t, 11.11, truck.Speed)
}

func TestDroneSpecForEndurance(t *testing.T) {
	d, err := DroneSpecFor(ModelEndurance, "high", "low")
	require.NoError(t, err)
	assert.Equal(t, ModelEndurance, d.Model)
	assert.Equal(t, 31.3, d.Speed)
	assert.Equal(t, QuantizeTime(1800), d.FlightLimit)
	assert.Equal(t, QuantizeLoad(2.27), d.Capacity)

	d, err = DroneSpecFor(ModelEndurance, "low", "high")
	require.NoError(t, err)
	assert.Equal(t, 15.6, d.Speed)
	assert.Equal(t, QuantizeTime(3600), d.FlightLimit)
}

func TestDroneSpecForLinear(t *testing.T) {
	d, err := DroneSpecFor(ModelLinear, "high", "high")
	require.NoError(t, err)
	assert.Equal(t, ModelLinear, d.Model)
	assert.Equal(t, 800000.0, d.Battery)
	assert.Equal(t, 210.8, d.Beta)
	assert.Equal(t, 1129.0, d.Gamma)
	// 50 m altitude at 20 m/s up, 10 m/s down.
	assert.Equal(t, QuantizeTime(2.5), d.TakeoffTime)
	assert.Equal(t, QuantizeTime(5), d.LandingTime)

	// Power draw is linear in the carried payload.
	assert.Equal(t, 1129.0, d.Power(0))
	assert.InDelta(t, 1129.0+210.8*2, d.Power(QuantizeLoad(2)), 1e-9)
}

func TestDroneSpecForNonLinear(t *testing.T) {
	d, err := DroneSpecFor(ModelNonLinear, "low", "low")
	require.NoError(t, err)
	assert.Equal(t, ModelNonLinear, d.Model)
	assert.Equal(t, 15.6, d.Speed)
	assert.Equal(t, 500000.0, d.Battery)
	assert.Equal(t, QuantizeLoad(2.27), d.Capacity)
	// 50 m altitude at 10 m/s up, 5 m/s down.
	assert.Equal(t, QuantizeTime(5), d.TakeoffTime)
	assert.Equal(t, QuantizeTime(10), d.LandingTime)
}

func TestNonLinearPowerCurve(t *testing.T) {
	d, err := DroneSpecFor(ModelNonLinear, "low", "low")
	require.NoError(t, err)

	for _, payload := range []int64{0, QuantizeLoad(1), QuantizeLoad(2)} {
		assert.Greater(t, d.TakeoffPower(payload), 0.0)
		assert.Greater(t, d.CruisePower(payload), 0.0)
		assert.Greater(t, d.LandingPower(payload), 0.0)
	}

	// The ascent runs at twice the descent speed, so it draws more power.
	assert.Greater(t, d.TakeoffPower(0), d.LandingPower(0))

	// Every phase draws more power the heavier the payload.
	assert.Greater(t, d.TakeoffPower(QuantizeLoad(2)), d.TakeoffPower(0))
	assert.Greater(t, d.CruisePower(QuantizeLoad(2)), d.CruisePower(0))
	assert.Greater(t, d.LandingPower(QuantizeLoad(2)), d.LandingPower(0))
}

func TestDroneSpecForUnlimited(t *testing.T) {
	d, err := DroneSpecFor(ModelUnlimited, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), d.Capacity)
}

func TestDroneSpecForUnknownProfile(t *testing.T) {
	_, err := DroneSpecFor(ModelEndurance, "medium", "high")
	assert.Error(t, err)
}
