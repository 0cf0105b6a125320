package scenario

import (
	"iter"

	"github.com/google/uuid"
)

// DailyMetrics is one day's aggregated outcomes.
type DailyMetrics struct {
	Day        int     `json:"day" db:"day"`
	ERVisits   int     `json:"er_visits" db:"er_visits"`
	Deaths     int     `json:"deaths" db:"deaths"`
	ActiveCost float64 `json:"active_cost" db:"active_cost"`
	MeanTempF  float64 `json:"mean_temp_f" db:"mean_temp_f"`
}

// DaySnapshot is a per-cell temperature snapshot at the day's peak sample
// hour, indexed by cell ID.
type DaySnapshot struct {
	Day       int       `json:"day"`
	CellTemps []float64 `json:"cell_temps"`
}

// Result is the immutable output of one run. A run aborted mid-horizon
// retains the days completed before the abort and reports Complete=false.
type Result struct {
	RunID        uuid.UUID `json:"run_id"`
	ScenarioID   uuid.UUID `json:"scenario_id"`
	ScenarioName string    `json:"scenario_name"`
	Seed         int64     `json:"seed"`

	GridRows   int `json:"grid_rows"`
	GridCols   int `json:"grid_cols"`
	AgentCount int `json:"agent_count"`

	// HighRiskAgents counts agents in the high or extreme risk bands at
	// generation time.
	HighRiskAgents int `json:"high_risk_agents"`

	Days []DailyMetrics `json:"days"`

	CumulativeERVisits int     `json:"cumulative_er_visits"`
	CumulativeDeaths   int     `json:"cumulative_deaths"`
	TotalCost          float64 `json:"total_cost"`

	// CoveragePct is the fraction of agents homed in a cell targeted by
	// at least one intervention, in percent.
	CoveragePct float64 `json:"coverage_pct"`

	Complete bool `json:"complete"`

	snapshots         []DaySnapshot
	snapshotsConsumed bool
}

// Snapshots yields one temperature snapshot per completed day, in day
// order. The sequence is lazy and not restartable: once consumed it yields
// nothing on later calls, so consumers needing replay must buffer. Empty
// unless the scenario requested SnapshotTemps.
func (r *Result) Snapshots() iter.Seq[DaySnapshot] {
	return func(yield func(DaySnapshot) bool) {
		if r.snapshotsConsumed {
			return
		}
		r.snapshotsConsumed = true
		for _, s := range r.snapshots {
			if !yield(s) {
				return
			}
		}
	}
}
