package intervention

import (
	"fmt"
	"log/slog"

	"github.com/civicsim/heatsim/internal/grid"
	"github.com/civicsim/heatsim/internal/heat"
)

// Engine resolves the combined intervention effect per cell per day.
// Coverage is precomputed at construction so effect lookups inside the day
// loop touch no geometry. All lookups are pure functions of (day, cell),
// so applying the same intervention set twice to identical pre-step state
// yields identical post-step state.
type Engine struct {
	grid  *grid.Grid
	items []Intervention

	// covered[i] lists cell IDs targeted by items[i], in insertion
	// priority order.
	covered [][]int

	// coveredAny marks cells targeted by at least one intervention, for
	// coverage metrics.
	coveredAny map[int]bool
}

// NewEngine validates every intervention and resolves its covered cells.
// Fails fast before any simulation step runs: a bad intervention is never
// partially applied.
func NewEngine(g *grid.Grid, items []Intervention) (*Engine, error) {
	e := &Engine{
		grid:       g,
		items:      items,
		covered:    make([][]int, len(items)),
		coveredAny: make(map[int]bool),
	}
	for i, iv := range items {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		cells, err := e.resolveCells(iv)
		if err != nil {
			return nil, err
		}
		e.covered[i] = cells
		for _, id := range cells {
			e.coveredAny[id] = true
		}
		slog.Info("intervention registered",
			"name", iv.Name,
			"type", iv.Kind.Name(),
			"cells", len(cells),
			"start_day", iv.StartDay,
			"ramp_days", iv.RampDays,
		)
	}
	return e, nil
}

func (e *Engine) resolveCells(iv Intervention) ([]int, error) {
	if iv.Region.explicit() {
		for _, id := range iv.Region.CellIDs {
			if e.grid.Cell(id) == nil {
				return nil, fmt.Errorf("intervention %q: cell id %d not in grid", iv.Name, id)
			}
		}
		return iv.Region.CellIDs, nil
	}
	return e.grid.CoveredCellIDs(iv.Region.CenterLat, iv.Region.CenterLon, iv.Region.RadiusKm), nil
}

// CellCooling returns the per-cell heat-field cooling contribution (°F)
// for the day, indexed by cell ID. Tree canopy and cool roofs contribute;
// cooling centers cool no cell. Effects across interventions add, then the
// heat model's floor clamp bounds the total.
func (e *Engine) CellCooling(day int) []float64 {
	cooling := make([]float64, len(e.grid.Cells))
	for i, iv := range e.items {
		ramp := iv.RampProgress(day)
		if ramp <= 0 {
			continue
		}
		for _, id := range e.covered[i] {
			c := e.grid.Cell(id)
			switch iv.Kind {
			case TreeCanopy:
				extra := CanopyCeiling - c.Canopy
				if extra > 0 {
					cooling[id] += heat.CanopyCoeff * extra * ramp
				}
			case CoolRoof:
				extra := AlbedoCeiling - c.RoofAlbedo
				if extra > 0 {
					cooling[id] += heat.AlbedoCoeff * extra * ramp
				}
			}
		}
	}
	return cooling
}

// ExposureScale returns the multiplier on outdoor exposure for an agent
// homed in cellID on the given day. Cooling centers gate on the day's
// forecast high: below the trigger their effect is zero even inside the
// timeline window. Coverage alone confers no benefit on inactive days.
// A center mid-ramp delivers a proportional fraction of its reduction,
// matching how CellCooling ramps the field effects.
func (e *Engine) ExposureScale(cellID, day int, forecastHigh float64) float64 {
	scale := 1.0
	for i, iv := range e.items {
		if iv.Kind != CoolingCenter {
			continue
		}
		ramp := iv.RampProgress(day)
		if ramp <= 0 || forecastHigh < iv.triggerHigh() {
			continue
		}
		for _, id := range e.covered[i] {
			if id == cellID {
				scale *= 1 - (1-ExposureReduction)*ramp
				break
			}
		}
	}
	return scale
}

// Covers reports whether any intervention targets the cell.
func (e *Engine) Covers(cellID int) bool {
	return e.coveredAny[cellID]
}

// StartedCost returns the capital cost newly incurred on the given day:
// each intervention's full cost accrues on its start day.
func (e *Engine) StartedCost(day int) float64 {
	total := 0.0
	for _, iv := range e.items {
		if iv.StartDay == day {
			total += iv.Cost
		}
	}
	return total
}

// TotalCost sums the cost of every intervention in the set.
func (e *Engine) TotalCost() float64 {
	total := 0.0
	for _, iv := range e.items {
		total += iv.Cost
	}
	return total
}

// Len returns the number of interventions in the set.
func (e *Engine) Len() int { return len(e.items) }
