package heat

import (
	"github.com/civicsim/heatsim/internal/grid"
)

// Heat-field coefficients, all in °F at full fraction. Chosen to sit inside
// published urban-heat-island and shade-cooling deltas.
const (
	// UHICoeff is the warming added at fully impervious cover.
	UHICoeff = 8.0
	// CanopyCoeff is the cooling removed at full tree canopy.
	CanopyCoeff = 12.0
	// AlbedoCoeff is the cooling removed at fully reflective roofs.
	AlbedoCoeff = 6.0
	// MaxCoolingDelta caps total cooling below the cell's pre-cooling
	// temperature. This clamp is intentional: it prevents runaway cooling
	// when several interventions stack on one cell.
	MaxCoolingDelta = 10.0
)

// SampleHours are the hours of day at which the field and agent exposure
// are stepped. Four samples bracket the afternoon peak.
var SampleHours = []int{8, 12, 16, 20}

// PeakHour is the sampled hour used for snapshots and daily mean reporting.
const PeakHour = 16

// CellTemp computes a cell's temperature for one step, given the ambient
// air temperature and any intervention cooling overlapping the cell. Pure
// per-cell: it reads only the cell's static fields, so cells can be
// computed in parallel within a step.
//
//	T = ambient + uhi·impervious − min(canopy + albedo + intervention, MaxCoolingDelta)
func CellTemp(c *grid.Cell, ambient, interventionCooling float64) float64 {
	raw := ambient + c.BaselineTemp + UHICoeff*c.Impervious
	cooling := CanopyCoeff*c.Canopy + AlbedoCoeff*c.RoofAlbedo + interventionCooling
	if cooling > MaxCoolingDelta {
		cooling = MaxCoolingDelta
	}
	return raw - cooling
}

// StepRange updates CurrentTemp for cells [lo, hi). extraCooling is indexed
// by cell ID and may be nil when no intervention is active.
func StepRange(g *grid.Grid, lo, hi int, w DayWeather, hour int, extraCooling []float64) {
	ambient := Ambient(w, hour)
	for i := lo; i < hi; i++ {
		cooling := 0.0
		if extraCooling != nil {
			cooling = extraCooling[i]
		}
		g.Cells[i].CurrentTemp = CellTemp(&g.Cells[i], ambient, cooling)
	}
}

// Step updates every cell's CurrentTemp for the given day-hour.
func Step(g *grid.Grid, w DayWeather, hour int, extraCooling []float64) {
	StepRange(g, 0, len(g.Cells), w, hour, extraCooling)
}
