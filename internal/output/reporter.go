package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lucsky/cuid"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/cloudwriter"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/solver"
)

// Solution is the externally reported schedule: per-vehicle trip sequences of
// location indices plus the achieved metrics. Once written it is immutable.
type Solution struct {
	Problem      string `json:"problem"`
	RunID        string `json:"run_id"`
	Seed         int64  `json:"seed"`
	Customers    int    `json:"customers_count"`
	Trucks       int    `json:"trucks_count"`
	Drones       int    `json:"drones_count"`
	DistanceType string `json:"distance_type"`
	EnergyModel  string `json:"energy_model"`
	SpeedType    string `json:"speed_type"`
	RangeType    string `json:"range_type"`

	TruckRoutes [][][]int `json:"truck_routes"`
	DroneRoutes [][][]int `json:"drone_routes"`

	TruckWorkingTime []float64 `json:"truck_working_time"`
	DroneWorkingTime []float64 `json:"drone_working_time"`

	WorkingTime float64 `json:"working_time"` // makespan, seconds
	TotalTravel float64 `json:"total_travel"` // fleet travel, seconds
	Feasible    bool    `json:"feasible"`
	Iterations  int     `json:"iterations"`
	Extra       string  `json:"extra,omitempty"`
}

// Visualization is the rendering payload for the external map viewer:
// coordinates, dronable flags and the two route sets, nothing else.
type Visualization struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Dronable    []bool    `json:"dronable"`
	TruckRoutes [][][]int `json:"truck_routes"`
	DroneRoutes [][][]int `json:"drone_routes"`
}

// Reporter turns a validated search result into run artifacts: solution
// JSON, config snapshot, visualization JSON, a summary.csv row, the optional
// Parquet iteration trace, and fan-out to the configured destinations.
type Reporter struct {
	cfg          *models.Config
	destinations []Destination
	cloud        cloudwriter.CloudWriterFactory
}

func NewReporter(ctx context.Context, cfg *models.Config) (*Reporter, error) {
	r := &Reporter{cfg: cfg}

	if cfg.Verbose {
		r.destinations = append(r.destinations, &ConsoleOutput{})
	}
	if cfg.Kafka.Enabled {
		k, err := NewKafkaOutput(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		r.destinations = append(r.destinations, k)
	}
	if cfg.Database.Enabled {
		pg, err := NewPostgresOutput(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		r.destinations = append(r.destinations, pg)
	}
	if cfg.Cloud.Enabled {
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Cloud.Region)
		if err != nil {
			return nil, err
		}
		r.cloud = factory
	}

	return r, nil
}

func (r *Reporter) Close() error {
	var firstErr error
	for _, d := range r.destinations {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Finalize writes every artifact for a finished run and returns the reported
// solution. The result must already have passed full validation.
func (r *Reporter) Finalize(p *models.Problem, res *solver.Result, ev *solver.Evaluation) (*Solution, error) {
	if err := os.MkdirAll(r.cfg.Outputs, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	routes := res.Schedule.Routes()
	sol := &Solution{
		Problem:          p.Name,
		RunID:            cuid.New(),
		Seed:             res.Seed,
		Customers:        p.Customers(),
		Trucks:           p.Trucks,
		Drones:           p.Drones,
		DistanceType:     r.cfg.DistanceType,
		EnergyModel:      r.cfg.EnergyModel,
		SpeedType:        r.cfg.SpeedType,
		RangeType:        r.cfg.RangeType,
		TruckRoutes:      routes[:p.Trucks],
		DroneRoutes:      routes[p.Trucks:],
		TruckWorkingTime: ev.VehicleTimes[:p.Trucks],
		DroneWorkingTime: ev.VehicleTimes[p.Trucks:],
		WorkingTime:      ev.Makespan,
		TotalTravel:      ev.TotalTravel,
		Feasible:         ev.Feasible,
		Iterations:       res.Iterations,
		Extra:            r.cfg.Extra,
	}

	base := fmt.Sprintf("%s-%s", p.Name, sol.RunID)
	solutionPath := filepath.Join(r.cfg.Outputs, base+".json")
	if err := r.writeJSON(solutionPath, sol); err != nil {
		return nil, err
	}
	log.Printf("Writing solution to %s", solutionPath)

	if err := r.writeJSON(filepath.Join(r.cfg.Outputs, base+"-config.json"), r.cfg); err != nil {
		return nil, err
	}

	viz := &Visualization{
		TruckRoutes: sol.TruckRoutes,
		DroneRoutes: sol.DroneRoutes,
	}
	for _, loc := range p.Locations {
		viz.X = append(viz.X, loc.X)
		viz.Y = append(viz.Y, loc.Y)
		viz.Dronable = append(viz.Dronable, loc.Dronable)
	}
	if err := r.writeJSON(filepath.Join(r.cfg.Outputs, base+"-viz.json"), viz); err != nil {
		return nil, err
	}

	if err := r.appendSummary(sol); err != nil {
		return nil, err
	}

	if r.cfg.IterationLog && len(res.Trace) > 0 {
		tracePath := filepath.Join(r.cfg.Outputs, base+"-trace.parquet")
		if err := WriteTrace(tracePath, res.Trace); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(sol)
	if err != nil {
		return nil, err
	}
	topic := r.cfg.Kafka.Topic
	if topic == "" {
		topic = "solutions"
	}
	for _, d := range r.destinations {
		if err := d.WriteMessage(topic, payload); err != nil {
			log.Printf("destination write failed: %v", err)
		}
	}

	if r.cloud != nil {
		if err := r.upload(filepath.Join(r.cfg.Cloud.Prefix, base+".json"), payload); err != nil {
			log.Printf("cloud upload failed: %v", err)
		}
	}

	return sol, nil
}

func (r *Reporter) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (r *Reporter) upload(key string, data []byte) error {
	w, err := r.cloud.NewWriter(r.cfg.Cloud.Bucket, key)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

var summaryHeader = []string{
	"problem", "run_id", "seed", "customers_count", "trucks_count",
	"drones_count", "iterations", "energy_model", "speed_type", "range_type",
	"makespan_s", "total_travel_s", "feasible",
}

// appendSummary adds one row to the cross-run summary.csv, writing the
// header when the file is fresh.
func (r *Reporter) appendSummary(sol *Solution) error {
	path := filepath.Join(r.cfg.Outputs, "summary.csv")
	info, err := os.Stat(path)
	fresh := err != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(summaryHeader); err != nil {
			return err
		}
	}
	row := []string{
		sol.Problem,
		sol.RunID,
		strconv.FormatInt(sol.Seed, 10),
		strconv.Itoa(sol.Customers),
		strconv.Itoa(sol.Trucks),
		strconv.Itoa(sol.Drones),
		strconv.Itoa(sol.Iterations),
		sol.EnergyModel,
		sol.SpeedType,
		sol.RangeType,
		strconv.FormatFloat(sol.WorkingTime, 'f', 6, 64),
		strconv.FormatFloat(sol.TotalTravel, 'f', 6, 64),
		strconv.FormatBool(sol.Feasible),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
