package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsim/heatsim/internal/heat"
	"github.com/civicsim/heatsim/internal/intervention"
	"github.com/civicsim/heatsim/internal/population"
)

const validScenario = `{
	"name": "summer baseline",
	"seed": 42,
	"horizon_days": 30,
	"n_agents": 1000,
	"grid": {
		"bounds": {"min_lat": 33.40, "min_lon": -112.10, "max_lat": 33.50, "max_lon": -112.00},
		"cell_size_km": 2.0,
		"land_seed": 7
	},
	"targets": [
		{"age": "adult", "income": 3, "has_ac": true, "fraction": 0.5},
		{"age": "senior", "income": 1, "has_ac": false, "fraction": 0.3},
		{"age": "child", "income": 2, "has_ac": true, "fraction": 0.2}
	],
	"interventions": [
		{
			"name": "downtown trees",
			"type": "tree_canopy",
			"center_lat": 33.45,
			"center_lon": -112.05,
			"radius_km": 3.0,
			"cost": 2000000,
			"start_day": 0,
			"ramp_days": 10
		}
	]
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)

	s, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, "summer baseline", s.Name)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 30, s.HorizonDays)
	assert.Equal(t, 1000, s.NAgents)
	assert.NotEmpty(t, s.Grid.Cells)
	assert.Len(t, s.Interventions, 1)
	assert.Equal(t, intervention.TreeCanopy, s.Interventions[0].Kind)

	// No explicit weather: a seasonal forecast covers the horizon.
	assert.True(t, s.Forecast.Covers(s.HorizonDays))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeScenario(t, `{"name": "broken`))
	require.Error(t, err)
}

func TestBuildUnknownInterventionType(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	f.Interventions[0].Type = "shade_sails"

	_, err = f.Build()
	require.ErrorIs(t, err, intervention.ErrUnknownInterventionType)
}

func TestBuildTargetsDoNotSum(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	f.Targets = f.Targets[:1]

	_, err = f.Build()
	require.ErrorIs(t, err, population.ErrInvalidTargets)
}

func TestBuildBadAgeAndQuintile(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	f.Targets[0].Age = "elder"
	_, err = f.Build()
	require.Error(t, err)

	f, err = Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	f.Targets[0].Income = 6
	_, err = f.Build()
	require.Error(t, err)
}

func TestBuildCellOverrides(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	canopy := 0.9
	f.Grid.Cells = []CellSpec{{ID: 0, Cover: "park", Canopy: &canopy}}

	s, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.Grid.Cells[0].Canopy)

	f.Grid.Cells = []CellSpec{{ID: 100000, Cover: "park"}}
	_, err = f.Build()
	require.Error(t, err, "override for a cell outside the grid")

	f.Grid.Cells = []CellSpec{{ID: 0, Cover: "swamp"}}
	_, err = f.Build()
	require.Error(t, err, "unknown land cover")
}

func TestBuildExplicitWeather(t *testing.T) {
	f, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)
	f.HorizonDays = 2
	f.Weather = []heat.DayWeather{{High: 108, Low: 82}, {High: 111, Low: 84}}

	s, err := f.Build()
	require.NoError(t, err)
	require.Len(t, s.Forecast.Days, 2)
	assert.Equal(t, 108.0, s.Forecast.Days[0].High)
}
