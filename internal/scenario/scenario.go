// Package scenario drives the day-stepped simulation loop, coordinates the
// grid, population, heat-field, intervention, and outcome models, and
// aggregates results.
package scenario

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/civicsim/heatsim/internal/exposure"
	"github.com/civicsim/heatsim/internal/grid"
	"github.com/civicsim/heatsim/internal/heat"
	"github.com/civicsim/heatsim/internal/intervention"
	"github.com/civicsim/heatsim/internal/population"
)

// Scenario is a pure value describing one simulation run: rerunning it with
// the same population seed and interventions is deterministic. The grid and
// agent set built for a run are owned by that run and never shared.
type Scenario struct {
	ID   uuid.UUID
	Name string

	// Seed drives population generation and all health-event draws.
	// Scenarios compared against each other must share it.
	Seed int64

	HorizonDays int
	NAgents     int
	Targets     population.Targets

	Grid          *grid.Grid
	Forecast      heat.Forecast
	Interventions []intervention.Intervention

	Params exposure.Params

	// SnapshotTemps retains a per-cell temperature snapshot per day for
	// visualization consumers.
	SnapshotTemps bool

	// Parallelism bounds the worker count for the per-day cell and agent
	// phases. Zero means GOMAXPROCS.
	Parallelism int
}

// Validate fails fast on configuration errors, before any step runs.
func (s *Scenario) Validate() error {
	if s.Grid == nil || len(s.Grid.Cells) == 0 {
		return fmt.Errorf("scenario %q: %w", s.Name, population.ErrEmptyGrid)
	}
	if s.HorizonDays < 0 {
		return fmt.Errorf("scenario %q: negative horizon %d", s.Name, s.HorizonDays)
	}
	if s.NAgents < 0 {
		return fmt.Errorf("scenario %q: negative agent count %d", s.Name, s.NAgents)
	}
	if err := s.Targets.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if !s.Forecast.Covers(s.HorizonDays) {
		return fmt.Errorf("scenario %q: horizon %d days, forecast %d: %w",
			s.Name, s.HorizonDays, len(s.Forecast.Days), heat.ErrMissingForecast)
	}
	for _, iv := range s.Interventions {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return nil
}
