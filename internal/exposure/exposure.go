// Package exposure converts per-agent heat exposure into cumulative stress
// and probabilistic daily health outcomes.
package exposure

import (
	"fmt"
	"math"

	"github.com/civicsim/heatsim/internal/population"
)

// NumericRangeError reports a computed quantity outside its valid range.
// It signals an internal modeling bug and halts the run; it is never
// clamped away.
type NumericRangeError struct {
	Quantity string
	Value    float64
}

func (e *NumericRangeError) Error() string {
	return fmt.Sprintf("%s out of range: %g", e.Quantity, e.Value)
}

// Params holds the documented exposure and outcome constants. The curves
// must stay identical across scenarios that will be compared.
type Params struct {
	// StressOnset is the temperature (°F) above which exposure accrues.
	StressOnset float64 `json:"stress_onset"`
	// DecayFactor multiplies cumulative stress each step, modeling
	// physiological recovery between samples.
	DecayFactor float64 `json:"decay_factor"`
	// ACFactor scales exposure for agents with AC access during
	// indoor-dominated hours.
	ACFactor float64 `json:"ac_factor"`

	// ER-visit probability: scaled logistic over stress × vulnerability.
	ERMax   float64 `json:"er_max"`
	ERMid   float64 `json:"er_mid"`
	ERScale float64 `json:"er_scale"`

	// Death probability: scaled logistic, shifted well past the ER curve.
	DeathMax   float64 `json:"death_max"`
	DeathMid   float64 `json:"death_mid"`
	DeathScale float64 `json:"death_scale"`
}

// DefaultParams returns the fixed model constants.
func DefaultParams() Params {
	return Params{
		StressOnset: 85.0,
		DecayFactor: 0.80,
		ACFactor:    0.25,
		ERMax:       0.12,
		ERMid:       60.0,
		ERScale:     18.0,
		DeathMax:    0.03,
		DeathMid:    110.0,
		DeathScale:  22.0,
	}
}

// outdoorHour reports whether the hour falls in the outdoor-dominated part
// of the day. Agents with AC shelter indoors outside this window.
func outdoorHour(hour int) bool {
	return hour >= 9 && hour <= 18
}

// Instantaneous computes one step's exposure from the agent's cell
// temperature. AC access cuts effective exposure sharply during indoor
// hours; the mobility factor scales outdoor exposure. scale is the combined
// intervention exposure multiplier (1 when none applies).
func Instantaneous(a *population.Agent, cellTemp float64, hour int, scale float64, p Params) float64 {
	excess := cellTemp - p.StressOnset
	if excess <= 0 {
		return 0
	}
	e := excess * a.Mobility * scale
	if a.HasAC && !outdoorHour(hour) {
		e *= p.ACFactor
	}
	return e
}

// Accumulate folds one step's exposure into the agent's cumulative stress:
// stress = stress·decay + exposure. Stress never goes negative.
func Accumulate(a *population.Agent, exposure float64, p Params) {
	a.Stress = a.Stress*p.DecayFactor + exposure
	if a.Stress < 0 {
		a.Stress = 0
	}
}

// Outcome is the result of one agent's daily health-event draw.
type Outcome struct {
	ERVisit bool
	Death   bool
}

// DailyDraw evaluates the agent's once-per-day health events against the
// outcome curves. The ER visit is evaluated before death: a death
// supersedes all further bookkeeping for the agent, so the order is
// load-bearing. Dead agents draw nothing.
//
// Draws use a source keyed by (scenario seed, agent ID, day) so results
// are reproducible and independent of evaluation order across agents.
func DailyDraw(a *population.Agent, scenarioSeed int64, day int, p Params) (Outcome, error) {
	var out Outcome
	if !a.Alive {
		return out, nil
	}

	load := a.Stress * a.Vulnerability
	pER := scaledLogistic(load, p.ERMax, p.ERMid, p.ERScale)
	pDeath := scaledLogistic(load, p.DeathMax, p.DeathMid, p.DeathScale)

	if pER < 0 || pER > 1 {
		return out, &NumericRangeError{Quantity: "er probability", Value: pER}
	}
	if pDeath < 0 || pDeath > 1 {
		return out, &NumericRangeError{Quantity: "death probability", Value: pDeath}
	}

	rng := keyedSource(scenarioSeed, uint64(a.ID), uint64(day))

	if rng.Float64() < pER {
		out.ERVisit = true
		a.ERVisits++
	}
	if rng.Float64() < pDeath {
		out.Death = true
		a.Alive = false
	}
	return out, nil
}

// scaledLogistic is maxP · σ((x − mid)/scale): monotonic in x and bounded
// by (0, maxP), so the probability invariant holds by construction.
func scaledLogistic(x, maxP, mid, scale float64) float64 {
	return maxP / (1 + math.Exp(-(x-mid)/scale))
}
