package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/civicsim/heatsim/internal/config"
	"github.com/civicsim/heatsim/internal/persistence"
	"github.com/civicsim/heatsim/internal/scenario"
)

func runScenario(ctx context.Context, path, dbPath string, snapshots bool) error {
	f, err := config.Load(path)
	if err != nil {
		return err
	}
	f.SnapshotTemps = f.SnapshotTemps || snapshots

	s, err := f.Build()
	if err != nil {
		return err
	}

	res, err := s.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printResult(res)
	return archive(dbPath, res, nil)
}

func runComparison(ctx context.Context, baselinePath, scenarioPath, dbPath string) error {
	bf, err := config.Load(baselinePath)
	if err != nil {
		return err
	}
	sf, err := config.Load(scenarioPath)
	if err != nil {
		return err
	}

	baseline, err := bf.Build()
	if err != nil {
		return err
	}
	alt, err := sf.Build()
	if err != nil {
		return err
	}

	baseRes, err := baseline.Run(ctx)
	if err != nil {
		return err
	}
	altRes, err := alt.Run(ctx)
	if err != nil {
		return err
	}

	cmp, err := scenario.Compare(baseRes, altRes)
	if err != nil {
		return err
	}

	printResult(baseRes)
	printResult(altRes)

	fmt.Printf("\n=== Impact Analysis ===\n")
	fmt.Printf("Deaths averted:      %s\n", humanize.Comma(int64(cmp.DeathsAverted)))
	fmt.Printf("ER visits averted:   %s\n", humanize.Comma(int64(cmp.ERVisitsAverted)))
	fmt.Printf("Total cost:          $%s\n", humanize.CommafWithDigits(cmp.TotalCost, 0))
	fmt.Printf("Cost per life saved: $%s\n", humanize.CommafWithDigits(cmp.CostPerLifeSaved, 0))
	fmt.Printf("Population coverage: %.1f%%\n", cmp.CoveragePct)

	return archive(dbPath, baseRes, func(db *persistence.DB) error {
		if err := db.SaveRun(altRes); err != nil {
			return err
		}
		return db.SaveComparison(cmp)
	})
}

func showHistory(dbPath string, limit int) error {
	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		status := "complete"
		if !r.Complete {
			status = "incomplete"
		}
		fmt.Printf("%s  %-24s seed=%-12d agents=%-8s days=%-4d deaths=%-6s er=%-8s %s\n",
			r.CreatedAt, r.Name, r.Seed,
			humanize.Comma(int64(r.AgentCount)), r.Days,
			humanize.Comma(int64(r.Deaths)), humanize.Comma(int64(r.ERVisits)),
			status,
		)
	}
	return nil
}

func printResult(res *scenario.Result) {
	status := "complete"
	if !res.Complete {
		status = fmt.Sprintf("incomplete (%d days)", len(res.Days))
	}
	fmt.Printf("\n--- %s (%s) ---\n", res.ScenarioName, status)
	fmt.Printf("Agents:     %s (%s high risk)\n",
		humanize.Comma(int64(res.AgentCount)), humanize.Comma(int64(res.HighRiskAgents)))
	fmt.Printf("Deaths:     %s\n", humanize.Comma(int64(res.CumulativeDeaths)))
	fmt.Printf("ER visits:  %s\n", humanize.Comma(int64(res.CumulativeERVisits)))
	if res.TotalCost > 0 {
		fmt.Printf("Total cost: $%s\n", humanize.CommafWithDigits(res.TotalCost, 0))
	}
}

// archive saves results to the run archive unless dbPath is empty. extra
// runs inside the same open handle, after the primary result is saved.
func archive(dbPath string, res *scenario.Result, extra func(*persistence.DB) error) error {
	if dbPath == "" {
		return nil
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(res); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(db); err != nil {
			return err
		}
	}
	slog.Info("archive updated", "path", dbPath)
	return nil
}
