package scenario

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNonComparable is returned when two results cannot be meaningfully
// compared: cost-per-life-saved is a paired comparison and requires the
// same population seed and grid.
var ErrNonComparable = errors.New("scenarios are not comparable")

// Comparison is the paired outcome of an intervention scenario against a
// baseline run sharing its seed and grid.
type Comparison struct {
	BaselineRunID uuid.UUID `json:"baseline_run_id"`
	ScenarioRunID uuid.UUID `json:"scenario_run_id"`

	DeathsAverted   int `json:"deaths_averted"`
	ERVisitsAverted int `json:"er_visits_averted"`

	TotalCost float64 `json:"total_cost"`
	// CostPerLifeSaved divides total intervention cost by deaths averted,
	// with the divisor floored at one so the figure stays finite when
	// nothing was averted.
	CostPerLifeSaved float64 `json:"cost_per_life_saved"`

	CoveragePct float64 `json:"coverage_pct"`
}

// Compare computes averted outcomes of scenario relative to baseline. Both
// runs must be complete and share seed, grid dimensions, and population
// size; anything else fails with ErrNonComparable rather than silently
// computing a number.
func Compare(baseline, scenario *Result) (*Comparison, error) {
	if baseline.Seed != scenario.Seed {
		return nil, fmt.Errorf("population seeds differ (%d vs %d): %w",
			baseline.Seed, scenario.Seed, ErrNonComparable)
	}
	if baseline.GridRows != scenario.GridRows || baseline.GridCols != scenario.GridCols {
		return nil, fmt.Errorf("grids differ (%dx%d vs %dx%d): %w",
			baseline.GridRows, baseline.GridCols, scenario.GridRows, scenario.GridCols, ErrNonComparable)
	}
	if baseline.AgentCount != scenario.AgentCount {
		return nil, fmt.Errorf("agent counts differ (%d vs %d): %w",
			baseline.AgentCount, scenario.AgentCount, ErrNonComparable)
	}
	if !baseline.Complete || !scenario.Complete {
		return nil, fmt.Errorf("incomplete run: %w", ErrNonComparable)
	}

	deathsAverted := baseline.CumulativeDeaths - scenario.CumulativeDeaths
	erAverted := baseline.CumulativeERVisits - scenario.CumulativeERVisits

	divisor := deathsAverted
	if divisor < 1 {
		divisor = 1
	}

	return &Comparison{
		BaselineRunID:    baseline.RunID,
		ScenarioRunID:    scenario.RunID,
		DeathsAverted:    deathsAverted,
		ERVisitsAverted:  erAverted,
		TotalCost:        scenario.TotalCost,
		CostPerLifeSaved: scenario.TotalCost / float64(divisor),
		CoveragePct:      scenario.CoveragePct,
	}, nil
}
