// Package config parses JSON scenario files into validated engine inputs.
// All parsed state is run-scoped: it is handed to the scenario runner as
// plain parameters and discarded at run end.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/civicsim/heatsim/internal/exposure"
	"github.com/civicsim/heatsim/internal/grid"
	"github.com/civicsim/heatsim/internal/heat"
	"github.com/civicsim/heatsim/internal/intervention"
	"github.com/civicsim/heatsim/internal/population"
	"github.com/civicsim/heatsim/internal/scenario"
)

// ScenarioFile is the on-disk scenario description.
type ScenarioFile struct {
	Name        string `json:"name"`
	Seed        int64  `json:"seed"`
	HorizonDays int    `json:"horizon_days"`
	NAgents     int    `json:"n_agents"`

	Grid          GridSpec           `json:"grid"`
	Targets       []TargetSpec       `json:"targets"`
	Weather       []heat.DayWeather  `json:"weather,omitempty"`
	Interventions []InterventionSpec `json:"interventions,omitempty"`

	SnapshotTemps bool `json:"snapshot_temps,omitempty"`
}

// GridSpec describes grid geometry: a bounding box plus cell size. Land
// cover is synthesized from LandSeed unless explicit cell overrides are
// given.
type GridSpec struct {
	Bounds     grid.Bounds `json:"bounds"`
	CellSizeKm float64     `json:"cell_size_km"`
	LandSeed   int64       `json:"land_seed"`
	Cells      []CellSpec  `json:"cells,omitempty"`
}

// CellSpec overrides a synthesized cell's land cover and surface values.
type CellSpec struct {
	ID         int      `json:"id"`
	Cover      string   `json:"cover"`
	Canopy     *float64 `json:"canopy,omitempty"`
	RoofAlbedo *float64 `json:"roof_albedo,omitempty"`
	Impervious *float64 `json:"impervious,omitempty"`
}

// TargetSpec is one demographic stratum's target fraction.
type TargetSpec struct {
	Age      string  `json:"age"` // child | adult | senior
	Income   int     `json:"income"`
	HasAC    bool    `json:"has_ac"`
	Fraction float64 `json:"fraction"`
}

// InterventionSpec is the wire form of one intervention.
type InterventionSpec struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	CenterLat   float64 `json:"center_lat,omitempty"`
	CenterLon   float64 `json:"center_lon,omitempty"`
	RadiusKm    float64 `json:"radius_km,omitempty"`
	CellIDs     []int   `json:"cell_ids,omitempty"`
	Cost        float64 `json:"cost"`
	StartDay    int     `json:"start_day"`
	RampDays    int     `json:"ramp_days"`
	TriggerHigh float64 `json:"trigger_high,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var f ScenarioFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	return &f, nil
}

// Build validates the file and assembles a runnable Scenario. Every
// configuration problem surfaces here, before any simulation step.
func (f *ScenarioFile) Build() (*scenario.Scenario, error) {
	g, err := grid.New(f.Grid.Bounds, f.Grid.CellSizeKm)
	if err != nil {
		return nil, err
	}
	grid.Synthesize(g, f.Grid.LandSeed)
	if err := applyCellOverrides(g, f.Grid.Cells); err != nil {
		return nil, err
	}

	targets, err := buildTargets(f.Targets)
	if err != nil {
		return nil, err
	}

	ivs, err := buildInterventions(f.Interventions)
	if err != nil {
		return nil, err
	}

	fc := heat.Forecast{Days: f.Weather}
	if len(f.Weather) == 0 {
		// No explicit forecast: synthesize a seasonal one from the seed,
		// starting at the beginning of summer.
		fc = heat.Seasonal(f.HorizonDays, 152, f.Seed)
	}

	s := &scenario.Scenario{
		ID:            uuid.New(),
		Name:          f.Name,
		Seed:          f.Seed,
		HorizonDays:   f.HorizonDays,
		NAgents:       f.NAgents,
		Targets:       targets,
		Grid:          g,
		Forecast:      fc,
		Interventions: ivs,
		Params:        exposure.DefaultParams(),
		SnapshotTemps: f.SnapshotTemps,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func applyCellOverrides(g *grid.Grid, specs []CellSpec) error {
	for _, cs := range specs {
		c := g.Cell(cs.ID)
		if c == nil {
			return fmt.Errorf("cell override: id %d not in grid", cs.ID)
		}
		cover, err := parseCover(cs.Cover)
		if err != nil {
			return err
		}
		c.Cover = cover
		if cs.Canopy != nil {
			c.Canopy = *cs.Canopy
		}
		if cs.RoofAlbedo != nil {
			c.RoofAlbedo = *cs.RoofAlbedo
		}
		if cs.Impervious != nil {
			c.Impervious = *cs.Impervious
		}
	}
	return nil
}

func parseCover(s string) (grid.LandCover, error) {
	switch s {
	case "residential":
		return grid.CoverResidential, nil
	case "commercial":
		return grid.CoverCommercial, nil
	case "park":
		return grid.CoverPark, nil
	case "industrial":
		return grid.CoverIndustrial, nil
	case "road":
		return grid.CoverRoad, nil
	default:
		return 0, fmt.Errorf("unknown land cover %q", s)
	}
}

func parseAge(s string) (population.AgeBand, error) {
	switch s {
	case "child":
		return population.AgeChild, nil
	case "adult":
		return population.AgeAdult, nil
	case "senior":
		return population.AgeSenior, nil
	default:
		return 0, fmt.Errorf("unknown age band %q", s)
	}
}

func buildTargets(specs []TargetSpec) (population.Targets, error) {
	targets := make(population.Targets, len(specs))
	for _, ts := range specs {
		age, err := parseAge(ts.Age)
		if err != nil {
			return nil, err
		}
		if ts.Income < 1 || ts.Income > 5 {
			return nil, fmt.Errorf("income quintile %d outside [1, 5]", ts.Income)
		}
		stratum := population.Stratum{
			Age:    age,
			Income: population.IncomeQuintile(ts.Income),
			HasAC:  ts.HasAC,
		}
		targets[stratum] += ts.Fraction
	}
	if err := targets.Validate(); err != nil {
		return nil, err
	}
	return targets, nil
}

func buildInterventions(specs []InterventionSpec) ([]intervention.Intervention, error) {
	ivs := make([]intervention.Intervention, 0, len(specs))
	for _, is := range specs {
		kind, err := intervention.ParseType(is.Type)
		if err != nil {
			return nil, err
		}
		iv := intervention.Intervention{
			ID:   uuid.New(),
			Name: is.Name,
			Kind: kind,
			Region: intervention.Region{
				CenterLat: is.CenterLat,
				CenterLon: is.CenterLon,
				RadiusKm:  is.RadiusKm,
				CellIDs:   is.CellIDs,
			},
			Cost:        is.Cost,
			StartDay:    is.StartDay,
			RampDays:    is.RampDays,
			TriggerHigh: is.TriggerHigh,
		}
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	return ivs, nil
}
