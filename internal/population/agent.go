// Package population provides the synthetic agent model and the stratified
// population generator.
package population

// AgentID is a unique identifier for an agent within one scenario.
type AgentID uint64

// AgeBand buckets agents into broad demographic ages.
type AgeBand uint8

const (
	AgeChild  AgeBand = iota // under 18
	AgeAdult                 // 18–64
	AgeSenior                // 65+
)

// Name returns a human-readable name for an age band.
func (a AgeBand) Name() string {
	switch a {
	case AgeChild:
		return "child"
	case AgeAdult:
		return "adult"
	case AgeSenior:
		return "senior"
	default:
		return "unknown"
	}
}

// IncomeQuintile is 1 (lowest) through 5 (highest).
type IncomeQuintile uint8

// RiskProfile classifies vulnerability into reporting bands.
type RiskProfile uint8

const (
	RiskLow RiskProfile = iota
	RiskModerate
	RiskHigh
	RiskExtreme
)

// Name returns a human-readable name for a risk profile.
func (r RiskProfile) Name() string {
	switch r {
	case RiskLow:
		return "low_risk"
	case RiskModerate:
		return "moderate_risk"
	case RiskHigh:
		return "high_risk"
	case RiskExtreme:
		return "extreme_risk"
	}
	return "unknown"
}

// Agent is one synthetic resident. Demographics and the vulnerability score
// are fixed at creation; only the heat-stress state mutates during a run.
// The cell association is a stable ID, not a live reference, so agent
// updates never alias the mutable grid.
type Agent struct {
	ID     AgentID `json:"id"`
	CellID int     `json:"cell_id"`

	// Demographics — immutable after generation.
	Age      AgeBand        `json:"age"`
	Income   IncomeQuintile `json:"income"`
	HasAC    bool           `json:"has_ac"`
	Mobility float64        `json:"mobility"` // outdoor exposure factor, 0.2–1.0

	// Vulnerability is a static multiplier on health-outcome risk, 0–1.
	Vulnerability float64 `json:"vulnerability"`

	// Mutable heat-stress state, reset per scenario.
	Stress   float64 `json:"stress"`
	Alive    bool    `json:"alive"`
	ERVisits int     `json:"er_visits"`
}

// Profile classifies the agent's vulnerability into a risk band.
func (a *Agent) Profile() RiskProfile {
	switch {
	case a.Vulnerability < 0.25:
		return RiskLow
	case a.Vulnerability < 0.50:
		return RiskModerate
	case a.Vulnerability < 0.75:
		return RiskHigh
	default:
		return RiskExtreme
	}
}

// Vulnerable returns the IDs of agents whose vulnerability meets or
// exceeds the threshold, in slice order.
func Vulnerable(agents []Agent, threshold float64) []AgentID {
	var ids []AgentID
	for i := range agents {
		if agents[i].Vulnerability >= threshold {
			ids = append(ids, agents[i].ID)
		}
	}
	return ids
}

// ageRisk maps an age band to its heat-risk weight. Children and seniors
// carry elevated physiological risk.
func ageRisk(a AgeBand) float64 {
	switch a {
	case AgeChild:
		return 0.55
	case AgeSenior:
		return 1.0
	default:
		return 0.15
	}
}

// vulnerability computes the static score:
//
//	v = 0.35·ageRisk + 0.30·(1 − incomeNorm) + 0.25·acPenalty + 0.10·mobility
//
// where incomeNorm = (quintile−1)/4 and acPenalty is 1 without AC access.
// Monotonic in every risk direction and bounded in [0, 1]. The formula is
// fixed so vulnerability is comparable across scenarios run from the same
// generator version.
func vulnerability(age AgeBand, income IncomeQuintile, hasAC bool, mobility float64) float64 {
	incomeNorm := float64(income-1) / 4.0
	acPenalty := 0.0
	if !hasAC {
		acPenalty = 1.0
	}
	v := 0.35*ageRisk(age) + 0.30*(1-incomeNorm) + 0.25*acPenalty + 0.10*mobility
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
