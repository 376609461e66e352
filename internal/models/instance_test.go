package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInstance = `# three customers, one with a split demand
trucks_count 2
drones_count 3
depot 1.5 -2.0
100.0 50.0 1 0.45
-30.5 80.0 0 2.10
200.0 -10.0 1 4.00 2
`

func writeInstance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseInstance(t *testing.T) {
	inst, err := ParseInstance(writeInstance(t, sampleInstance))
	require.NoError(t, err)

	assert.Equal(t, "sample", inst.Name)
	assert.Equal(t, 2, inst.Trucks)
	assert.Equal(t, 3, inst.Drones)
	assert.Equal(t, 1.5, inst.DepotX)
	assert.Equal(t, -2.0, inst.DepotY)

	require.Len(t, inst.Customers, 3)
	assert.Equal(t, InstanceCustomer{X: 100, Y: 50, Dronable: true, Demand: 0.45, Visits: 1}, inst.Customers[0])
	assert.Equal(t, InstanceCustomer{X: -30.5, Y: 80, Dronable: false, Demand: 2.10, Visits: 1}, inst.Customers[1])
	assert.Equal(t, 2, inst.Customers[2].Visits)
}

func TestParseInstanceMissingHeaders(t *testing.T) {
	_, err := ParseInstance(writeInstance(t, "drones_count 1\ndepot 0 0\n1 1 0 1.0\n"))
	assert.ErrorContains(t, err, "trucks_count")

	_, err = ParseInstance(writeInstance(t, "trucks_count 1\ndrones_count 1\n"))
	assert.ErrorContains(t, err, "depot")

	_, err = ParseInstance(writeInstance(t, "trucks_count 1\ndrones_count 1\ndepot 0.0 0.0\n"))
	assert.ErrorContains(t, err, "no customer rows")
}

func TestInstanceBuild(t *testing.T) {
	inst, err := ParseInstance(writeInstance(t, sampleInstance))
	require.NoError(t, err)

	p, err := inst.Build(testTruck(), testDrone(), Euclidean, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Trucks)
	assert.Equal(t, 3, p.Drones)
	assert.Equal(t, 3, p.Customers())
	assert.Equal(t, QuantizeLoad(0.45), p.Locations[1].Demand)
	// Customer 3 asks for two visits, so it owns two units.
	assert.Len(t, p.UnitsOf(3), 2)

	// Non-negative deltas override the header fleet.
	p, err = inst.Build(testTruck(), testDrone(), Euclidean, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Trucks)
	assert.Equal(t, 0, p.Drones)
}
