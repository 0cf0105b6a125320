package population

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/civicsim/heatsim/internal/grid"
)

// ErrInvalidTargets is returned when demographic target fractions do not
// sum to 1 within tolerance.
var ErrInvalidTargets = errors.New("demographic target fractions must sum to 1")

// ErrEmptyGrid is returned when no cell can plausibly house residents.
var ErrEmptyGrid = errors.New("grid has no residential capacity")

// TargetTolerance is the permitted deviation of the target-fraction sum from 1.
const TargetTolerance = 1e-6

// Stratum is one demographic cell of the target distribution:
// age band × income quintile × AC access.
type Stratum struct {
	Age    AgeBand        `json:"age"`
	Income IncomeQuintile `json:"income"`
	HasAC  bool           `json:"has_ac"`
}

// Targets maps each stratum to its target population fraction.
type Targets map[Stratum]float64

// Validate checks that fractions are non-negative and sum to 1 ± tolerance.
func (t Targets) Validate() error {
	sum := 0.0
	for s, f := range t {
		if f < 0 {
			return fmt.Errorf("stratum %+v has negative fraction %g: %w", s, f, ErrInvalidTargets)
		}
		sum += f
	}
	if math.Abs(sum-1) > TargetTolerance {
		return fmt.Errorf("fractions sum to %g: %w", sum, ErrInvalidTargets)
	}
	return nil
}

// Residential sampling weights by land cover. Road cells house nobody.
var coverWeight = map[grid.LandCover]float64{
	grid.CoverResidential: 1.0,
	grid.CoverCommercial:  0.30,
	grid.CoverIndustrial:  0.10,
	grid.CoverPark:        0.05,
	grid.CoverRoad:        0.0,
}

// Generate produces n agents matching the target distribution, geolocated
// into grid cells proportional to residential density. Deterministic from
// (seed, targets, grid): identical inputs yield an identical agent slice.
//
// n of zero returns an empty slice. Invalid targets fail with
// ErrInvalidTargets; a grid with zero residential weight fails with
// ErrEmptyGrid.
func Generate(n int, targets Targets, g *grid.Grid, seed int64) ([]Agent, error) {
	if err := targets.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("population: negative agent count %d", n)
	}
	if n == 0 {
		return []Agent{}, nil
	}

	weights, total := cellWeights(g)
	if total <= 0 {
		return nil, fmt.Errorf("population: %w", ErrEmptyGrid)
	}

	// Stable stratum order so map iteration cannot affect output.
	strata := make([]Stratum, 0, len(targets))
	for s := range targets {
		strata = append(strata, s)
	}
	sort.Slice(strata, func(i, j int) bool {
		a, b := strata[i], strata[j]
		if a.Age != b.Age {
			return a.Age < b.Age
		}
		if a.Income != b.Income {
			return a.Income < b.Income
		}
		return !a.HasAC && b.HasAC
	})

	counts := apportion(n, strata, targets)
	rng := rand.New(rand.NewSource(seed))

	agents := make([]Agent, 0, n)
	var id AgentID
	for i, s := range strata {
		for k := 0; k < counts[i]; k++ {
			mobility := 0.2 + 0.8*rng.Float64()
			agents = append(agents, Agent{
				ID:            id,
				CellID:        sampleCell(rng, weights, total),
				Age:           s.Age,
				Income:        s.Income,
				HasAC:         s.HasAC,
				Mobility:      mobility,
				Vulnerability: vulnerability(s.Age, s.Income, s.HasAC, mobility),
				Alive:         true,
			})
			id++
		}
	}

	logProfileBreakdown(agents)
	return agents, nil
}

// apportion splits n across strata by largest remainder so counts sum
// exactly to n.
func apportion(n int, strata []Stratum, targets Targets) []int {
	counts := make([]int, len(strata))
	type remainder struct {
		idx  int
		frac float64
	}
	remainders := make([]remainder, len(strata))

	assigned := 0
	for i, s := range strata {
		exact := float64(n) * targets[s]
		counts[i] = int(exact)
		remainders[i] = remainder{idx: i, frac: exact - float64(counts[i])}
		assigned += counts[i]
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})
	for k := 0; k < n-assigned; k++ {
		counts[remainders[k%len(remainders)].idx]++
	}
	return counts
}

// cellWeights returns per-cell residential weights and their sum.
func cellWeights(g *grid.Grid) ([]float64, float64) {
	weights := make([]float64, len(g.Cells))
	total := 0.0
	for i := range g.Cells {
		w := coverWeight[g.Cells[i].Cover]
		weights[i] = w
		total += w
	}
	return weights, total
}

// sampleCell draws a cell ID proportional to residential weight.
func sampleCell(rng *rand.Rand, weights []float64, total float64) int {
	target := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if target < acc {
			return i
		}
	}
	return len(weights) - 1
}

func logProfileBreakdown(agents []Agent) {
	if len(agents) == 0 {
		return
	}
	profiles := make(map[RiskProfile]int)
	for i := range agents {
		profiles[agents[i].Profile()]++
	}
	slog.Info("population generated",
		"agents", len(agents),
		"low_risk", profiles[RiskLow],
		"moderate_risk", profiles[RiskModerate],
		"high_risk", profiles[RiskHigh],
		"extreme_risk", profiles[RiskExtreme],
	)
}
