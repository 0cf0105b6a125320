package exposure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsim/heatsim/internal/population"
)

func TestInstantaneousBelowOnset(t *testing.T) {
	p := DefaultParams()
	a := population.Agent{Mobility: 1.0, Alive: true}

	assert.Zero(t, Instantaneous(&a, 80, 12, 1.0, p))
	assert.Zero(t, Instantaneous(&a, p.StressOnset, 12, 1.0, p))
	assert.Greater(t, Instantaneous(&a, 100, 12, 1.0, p), 0.0)
}

func TestACReducesIndoorExposure(t *testing.T) {
	p := DefaultParams()
	withAC := population.Agent{Mobility: 1.0, HasAC: true, Alive: true}
	without := population.Agent{Mobility: 1.0, HasAC: false, Alive: true}

	// Overnight hour: AC shelters.
	assert.Less(t,
		Instantaneous(&withAC, 100, 22, 1.0, p),
		Instantaneous(&without, 100, 22, 1.0, p))

	// Midday outdoor hour: AC does not help outdoors.
	assert.Equal(t,
		Instantaneous(&withAC, 100, 12, 1.0, p),
		Instantaneous(&without, 100, 12, 1.0, p))
}

func TestMobilityScalesExposure(t *testing.T) {
	p := DefaultParams()
	active := population.Agent{Mobility: 1.0, Alive: true}
	sedentary := population.Agent{Mobility: 0.2, Alive: true}

	assert.Greater(t,
		Instantaneous(&active, 100, 12, 1.0, p),
		Instantaneous(&sedentary, 100, 12, 1.0, p))
}

func TestExposureScaleMultiplier(t *testing.T) {
	p := DefaultParams()
	a := population.Agent{Mobility: 1.0, Alive: true}

	full := Instantaneous(&a, 100, 12, 1.0, p)
	halved := Instantaneous(&a, 100, 12, 0.5, p)
	assert.InDelta(t, full*0.5, halved, 1e-9)
}

func TestAccumulateDecay(t *testing.T) {
	p := DefaultParams()
	a := population.Agent{Stress: 10, Alive: true}

	Accumulate(&a, 5, p)
	assert.InDelta(t, 10*p.DecayFactor+5, a.Stress, 1e-9)

	// Pure decay with zero exposure.
	prev := a.Stress
	Accumulate(&a, 0, p)
	assert.InDelta(t, prev*p.DecayFactor, a.Stress, 1e-9)
	assert.GreaterOrEqual(t, a.Stress, 0.0)
}

func TestDailyDrawDeterministic(t *testing.T) {
	p := DefaultParams()
	for day := 0; day < 20; day++ {
		a1 := population.Agent{ID: 7, Stress: 80, Vulnerability: 0.9, Alive: true}
		a2 := population.Agent{ID: 7, Stress: 80, Vulnerability: 0.9, Alive: true}

		o1, err := DailyDraw(&a1, 42, day, p)
		require.NoError(t, err)
		o2, err := DailyDraw(&a2, 42, day, p)
		require.NoError(t, err)

		require.Equal(t, o1, o2)
		require.Equal(t, a1, a2)
	}
}

func TestDailyDrawDeadAgentExcluded(t *testing.T) {
	p := DefaultParams()
	a := population.Agent{ID: 1, Stress: 1e6, Vulnerability: 1, Alive: false}

	out, err := DailyDraw(&a, 42, 0, p)
	require.NoError(t, err)
	assert.False(t, out.ERVisit)
	assert.False(t, out.Death)
	assert.False(t, a.Alive)
	assert.Zero(t, a.ERVisits)
}

func TestDailyDrawProbabilityBounds(t *testing.T) {
	p := DefaultParams()
	// Extreme loads must stay within the bounded curves, not error.
	for _, stress := range []float64{0, 1, 100, 1e6, 1e12} {
		a := population.Agent{ID: 3, Stress: stress, Vulnerability: 1, Alive: true}
		_, err := DailyDraw(&a, 42, 0, p)
		require.NoError(t, err)
	}
}

func TestOutcomeCurvesMonotonic(t *testing.T) {
	p := DefaultParams()
	prev := 0.0
	for load := 0.0; load <= 300; load += 10 {
		pER := scaledLogistic(load, p.ERMax, p.ERMid, p.ERScale)
		assert.GreaterOrEqual(t, pER, prev)
		assert.LessOrEqual(t, pER, p.ERMax)
		prev = pER
	}
}

func TestKeyedSourceIndependentStreams(t *testing.T) {
	seen := make(map[float64]bool)
	for agent := uint64(0); agent < 8; agent++ {
		for day := uint64(0); day < 8; day++ {
			v := keyedSource(42, agent, day).Float64()
			assert.False(t, seen[v], "streams for distinct keys should not collide")
			seen[v] = true
		}
	}

	// Same key, same stream.
	assert.Equal(t,
		keyedSource(42, 5, 5).Float64(),
		keyedSource(42, 5, 5).Float64())
}
