package solver

import (
	"context"
	"math/rand"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// State is the lifecycle of a single search run.
type State int

const (
	StateConstructing State = iota
	StateImproving
	StateDiversifying
	StateTerminated
)

// Strategy selects how the next neighborhood is chosen each iteration.
type Strategy int

const (
	StrategyRandom Strategy = iota
	StrategyCyclic
)

// ParseStrategy maps a config string to a Strategy.
func ParseStrategy(s string) Strategy {
	if s == "cyclic" {
		return StrategyCyclic
	}
	return StrategyRandom
}

// Options configures one independent search run.
type Options struct {
	Seed            int64
	TabuSize        int
	ResetAfter      int     // consecutive non-improving iterations before diversifying
	MaxIterations   int     // 0 means unbounded (deadline-driven)
	DestroyFraction float64 // share of units removed by a perturbation
	Strategy        Strategy
	TraceIterations bool
}

// IterationRecord is one row of the optional per-iteration trace.
type IterationRecord struct {
	Iteration    int64   `parquet:"name=iteration, type=INT64"`
	Neighborhood string  `parquet:"name=neighborhood, type=BYTE_ARRAY, convertedtype=UTF8"`
	Makespan     float64 `parquet:"name=makespan, type=DOUBLE"`
	Incumbent    float64 `parquet:"name=incumbent, type=DOUBLE"`
	Diversified  bool    `parquet:"name=diversified, type=BOOLEAN"`
}

// Result is the outcome of a run: the incumbent schedule and its metrics.
// The incumbent may differ from the working schedule at termination time.
type Result struct {
	Seed        int64
	Makespan    int64
	TotalTravel int64
	Iterations  int
	Schedule    *Schedule
	Trace       []IterationRecord
}

type tabuList struct {
	entries [][]int
	next    int
}

func newTabuList(size int) *tabuList {
	if size < 1 {
		size = 1
	}
	return &tabuList{entries: make([][]int, size)}
}

func (t *tabuList) contains(sig []int) bool {
	for _, e := range t.entries {
		if intsEqual(e, sig) {
			return true
		}
	}
	return false
}

// push records a signature, evicting the oldest entry once the ring is full.
func (t *tabuList) push(sig []int) {
	t.entries[t.next] = sig
	t.next = (t.next + 1) % len(t.entries)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Search runs one independent tabu search: construct, improve, diversify on
// stagnation, terminate on deadline or iteration budget. Identical problem,
// options and seed yield bit-identical results.
//
// The context deadline is only checked at the top of an iteration, never
// mid-move, so the schedule is always left internally consistent.
func Search(ctx context.Context, p *models.Problem, opts Options) (*Result, error) {
	s, err := Construct(p)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	tabu := newTabuList(opts.TabuSize)
	incumbent := s.Clone()
	state := StateImproving
	stall := 0
	iterations := 0

	result := func() *Result {
		return &Result{
			Seed:        opts.Seed,
			Makespan:    incumbent.Makespan(),
			TotalTravel: incumbent.TotalTravel(),
			Iterations:  iterations,
			Schedule:    incumbent,
		}
	}

	var trace []IterationRecord
	cycle := 0
	for {
		select {
		case <-ctx.Done():
			// Expected termination, not an error: hand back the incumbent.
			state = StateTerminated
		default:
		}
		if state == StateTerminated || (opts.MaxIterations > 0 && iterations >= opts.MaxIterations) {
			break
		}
		iterations++

		diversified := false
		nbName := "perturbation"
		if state == StateDiversifying {
			diversify(s, rng, opts.DestroyFraction)
			stall = 0
			state = StateImproving
			diversified = true
		} else {
			var nb Neighborhood
			if opts.Strategy == StrategyCyclic {
				nb = Neighborhood(cycle % int(neighborhoodCount))
				cycle++
			} else {
				nb = Neighborhood(rng.Intn(int(neighborhoodCount)))
			}
			nbName = nb.String()

			moves := generateMoves(s, nb)
			bestAt := -1
			var best Outcome
			for i, m := range moves {
				out := s.EvaluateMove(m)
				if out.Verdict != Accepted {
					continue
				}
				// Aspiration: a tabu move is admissible when it beats the
				// incumbent outright.
				if tabu.contains(m.Signature()) && out.Makespan >= incumbent.Makespan() {
					continue
				}
				if bestAt < 0 || out.Makespan < best.Makespan ||
					(out.Makespan == best.Makespan && out.DeltaTravel < best.DeltaTravel) {
					bestAt, best = i, out
				}
			}

			if bestAt >= 0 {
				m := moves[bestAt]
				s.ApplyMove(m)
				tabu.push(m.Signature())
			}

			if s.Makespan() < incumbent.Makespan() {
				incumbent = s.Clone()
				stall = 0
			} else {
				stall++
			}
			if opts.ResetAfter > 0 && stall >= opts.ResetAfter {
				state = StateDiversifying
			}
		}

		if opts.TraceIterations {
			trace = append(trace, IterationRecord{
				Iteration:    int64(iterations),
				Neighborhood: nbName,
				Makespan:     models.Seconds(s.Makespan()),
				Incumbent:    models.Seconds(incumbent.Makespan()),
				Diversified:  diversified,
			})
		}
	}

	r := result()
	r.Trace = trace
	return r, nil
}

// diversify performs a destroy-and-repair perturbation: a random fraction of
// units is pulled out of the schedule and greedily reinserted. If the repair
// cannot place every unit, the pre-perturbation schedule is restored, so the
// working schedule stays feasible at every safe point.
func diversify(s *Schedule, rng *rand.Rand, fraction float64) {
	if fraction <= 0 {
		fraction = 0.1
	}
	count := int(fraction * float64(len(s.p.Units)))
	if count < 1 {
		count = 1
	}
	if count > len(s.p.Units) {
		count = len(s.p.Units)
	}

	backup := s.Clone()
	removed := rng.Perm(len(s.p.Units))[:count]

	for _, u := range removed {
		pos := s.pos[u]
		trip := s.Vehicles[pos.Vehicle].Trips[pos.Trip]
		s.commit([]tripChange{{pos.Vehicle, pos.Trip, without(trip.Units, pos.Index)}})
	}
	for _, u := range removed {
		if !insertUnit(s, u) {
			*s = *backup
			return
		}
	}
}
