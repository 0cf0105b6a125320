package scenario

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/civicsim/heatsim/internal/exposure"
	"github.com/civicsim/heatsim/internal/heat"
	"github.com/civicsim/heatsim/internal/intervention"
	"github.com/civicsim/heatsim/internal/population"
)

// Physically valid bounds for a computed cell temperature (°F). Outside
// this range the model is broken and the run halts.
const (
	minValidTemp = -100.0
	maxValidTemp = 200.0
)

// highRiskThreshold is the vulnerability score at which an agent enters the
// high-risk bands reported in run summaries.
const highRiskThreshold = 0.50

// Run executes the scenario: Setup, then per day ApplyInterventions →
// UpdateHeatField → UpdateAgents → RecordDailyMetrics, then Finalize.
//
// Within a day, cell updates and agent updates each run in parallel with a
// barrier between phases; days are strictly sequential. Cancellation is
// honored at day boundaries only: the returned partial result keeps every
// fully completed day and reports Complete=false. Per-step model errors
// abort the same way. No retries: failures are deterministic given fixed
// inputs.
func (s *Scenario) Run(ctx context.Context) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	agents, err := population.Generate(s.NAgents, s.Targets, s.Grid, s.Seed)
	if err != nil {
		return nil, err
	}

	eng, err := intervention.NewEngine(s.Grid, s.Interventions)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:          uuid.New(),
		ScenarioID:     s.ID,
		ScenarioName:   s.Name,
		Seed:           s.Seed,
		GridRows:       s.Grid.Rows,
		GridCols:       s.Grid.Cols,
		AgentCount:     len(agents),
		HighRiskAgents: len(population.Vulnerable(agents, highRiskThreshold)),
		CoveragePct:    coveragePct(agents, eng),
	}

	workers := s.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slog.Info("scenario starting",
		"name", s.Name,
		"seed", s.Seed,
		"horizon_days", s.HorizonDays,
		"agents", len(agents),
		"grid", s.Grid.String(),
		"interventions", eng.Len(),
	)

	for day := 0; day < s.HorizonDays; day++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("run aborted", "name", s.Name, "completed_days", len(res.Days))
			return res, err
		}

		wx, err := s.Forecast.Day(day)
		if err != nil {
			return res, err
		}

		cooling := eng.CellCooling(day)
		dm := DailyMetrics{Day: day, ActiveCost: eng.StartedCost(day)}

		for _, hour := range heat.SampleHours {
			// Heat-field phase: pure per-cell, parallel across cells.
			err := parallelChunks(len(s.Grid.Cells), workers, func(lo, hi int) error {
				heat.StepRange(s.Grid, lo, hi, wx, hour, cooling)
				return nil
			})
			if err != nil {
				return res, err
			}
			if err := s.checkTemps(); err != nil {
				return res, err
			}

			// Agent phase: each agent reads its cell's temperature and
			// accumulates stress. Disjoint agent ranges, grid read-only.
			err = parallelChunks(len(agents), workers, func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					a := &agents[i]
					if !a.Alive {
						continue
					}
					temp := s.Grid.Cells[a.CellID].CurrentTemp
					scale := eng.ExposureScale(a.CellID, day, wx.High)
					ex := exposure.Instantaneous(a, temp, hour, scale, s.Params)
					exposure.Accumulate(a, ex, s.Params)
				}
				return nil
			})
			if err != nil {
				return res, err
			}

			if hour == heat.PeakHour {
				dm.MeanTempF = s.meanTemp()
				if s.SnapshotTemps {
					res.snapshots = append(res.snapshots, s.snapshot(day))
				}
			}
		}

		// Outcome phase: one draw per agent per day, keyed RNG, so the
		// chunking cannot influence results.
		var erCount, deathCount atomic.Int64
		err = parallelChunks(len(agents), workers, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				out, err := exposure.DailyDraw(&agents[i], s.Seed, day, s.Params)
				if err != nil {
					return err
				}
				if out.ERVisit {
					erCount.Add(1)
				}
				if out.Death {
					deathCount.Add(1)
				}
			}
			return nil
		})
		if err != nil {
			slog.Error("run halted", "name", s.Name, "day", day, "error", err)
			return res, err
		}

		dm.ERVisits = int(erCount.Load())
		dm.Deaths = int(deathCount.Load())
		res.Days = append(res.Days, dm)
		res.CumulativeERVisits += dm.ERVisits
		res.CumulativeDeaths += dm.Deaths

		if day%30 == 0 {
			slog.Info("daily report",
				"name", s.Name,
				"day", day,
				"high", wx.High,
				"mean_temp", dm.MeanTempF,
				"er_visits", dm.ERVisits,
				"deaths", dm.Deaths,
				"cumulative_deaths", res.CumulativeDeaths,
			)
		}
	}

	res.Complete = true
	res.TotalCost = eng.TotalCost()
	slog.Info("scenario complete",
		"name", s.Name,
		"days", len(res.Days),
		"er_visits", res.CumulativeERVisits,
		"deaths", res.CumulativeDeaths,
		"total_cost", res.TotalCost,
	)
	return res, nil
}

// parallelChunks fans fn out over [0, n) in contiguous ranges, one per
// worker, and waits for all of them. The barrier between phases is the
// Wait.
func parallelChunks(n, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return fn(0, n)
	}
	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

func (s *Scenario) checkTemps() error {
	for i := range s.Grid.Cells {
		t := s.Grid.Cells[i].CurrentTemp
		if t < minValidTemp || t > maxValidTemp {
			return &exposure.NumericRangeError{Quantity: "cell temperature", Value: t}
		}
	}
	return nil
}

func (s *Scenario) meanTemp() float64 {
	sum := 0.0
	for i := range s.Grid.Cells {
		sum += s.Grid.Cells[i].CurrentTemp
	}
	return sum / float64(len(s.Grid.Cells))
}

func (s *Scenario) snapshot(day int) DaySnapshot {
	temps := make([]float64, len(s.Grid.Cells))
	for i := range s.Grid.Cells {
		temps[i] = s.Grid.Cells[i].CurrentTemp
	}
	return DaySnapshot{Day: day, CellTemps: temps}
}

func coveragePct(agents []population.Agent, eng *intervention.Engine) float64 {
	if len(agents) == 0 {
		return 0
	}
	covered := 0
	for i := range agents {
		if eng.Covers(agents[i].CellID) {
			covered++
		}
	}
	return 100 * float64(covered) / float64(len(agents))
}
