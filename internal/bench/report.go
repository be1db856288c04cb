package bench

import (
	"fmt"
	"time"
)

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	report := fmt.Sprintf(`
================================================================================
                         COMPARISON REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Start Time:     %s
  End Time:       %s
  Duration:       %v
  Tasks per run:  %d

STRATEGY RESULTS
----------------
`,
		r.Name,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.EndTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Millisecond),
		r.Count,
	)

	report += fmt.Sprintf("  %-15s %-12s %-12s %-12s %-12s %s\n",
		"STRATEGY", "WALL TIME", "AVG", "P99", "MAX", "STATUS")

	for _, sr := range r.Strategies {
		status := "ok"
		if sr.Err != "" {
			status = sr.Err
		} else if sr.SlowestDelay > 0 {
			status = fmt.Sprintf("slowest id=%d (%v)", sr.SlowestID, sr.SlowestDelay.Round(time.Millisecond))
		}

		report += fmt.Sprintf("  %-15s %-12v %-12v %-12v %-12v %s\n",
			sr.Strategy,
			sr.WallTime.Round(time.Millisecond),
			sr.Metrics.AverageLatency.Round(time.Millisecond),
			sr.Metrics.P99Latency.Round(time.Millisecond),
			sr.Metrics.MaxLatency.Round(time.Millisecond),
			status,
		)
	}

	if r.FaultStats != nil {
		report += fmt.Sprintf(`
FAULT STATISTICS
----------------
  Total Injected:   %d
`, r.FaultStats.TotalInjected)
		for faultType, count := range r.FaultStats.ByType {
			report += fmt.Sprintf("  %-18s %d\n", faultType+":", count)
		}
	}

	report += "\n================================================================================"

	return report
}
