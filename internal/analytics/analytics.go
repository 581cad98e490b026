// Package analytics summarizes the harness event history into per-scenario
// pass rates and durations.
package analytics

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// DB is the interface for database queries used by analytics.
type DB interface {
	Conn() *sql.DB
}

// ScenarioStats holds aggregate outcomes for one scenario.
type ScenarioStats struct {
	Scenario   string  `json:"scenario"`
	Runs       int     `json:"runs"`
	Passed     int     `json:"passed"`
	PassRate   float64 `json:"pass_rate_pct"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// timestamp formats to try when parsing timestamps from the database
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// QueryScenarioStats aggregates per-scenario results. One run of a scenario
// is one fixture issue: it counts as passed when no stage of that issue
// recorded a 'failed' event. Duration is measured from the issue's 'created'
// event to its last event.
func QueryScenarioStats(database DB, since string) ([]ScenarioStats, error) {
	query := `
		SELECT issue, scenario,
			MIN(CASE WHEN event = 'created' THEN timestamp END) as created_ts,
			MAX(timestamp) as last_ts,
			SUM(CASE WHEN event = 'failed' THEN 1 ELSE 0 END) as failures
		FROM harness_events`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE timestamp >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY issue, scenario`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scenario stats: %w", err)
	}
	defer rows.Close()

	type agg struct {
		runs    int
		passed  int
		minutes []float64
	}
	byScenario := make(map[string]*agg)

	for rows.Next() {
		var issue, failures int
		var scenario string
		var createdTS sql.NullString
		var lastTS string
		if err := rows.Scan(&issue, &scenario, &createdTS, &lastTS, &failures); err != nil {
			return nil, fmt.Errorf("scan scenario stats: %w", err)
		}

		a := byScenario[scenario]
		if a == nil {
			a = &agg{}
			byScenario[scenario] = a
		}
		a.runs++
		if failures == 0 {
			a.passed++
		}

		if !createdTS.Valid {
			continue
		}
		start, err := parseTimestamp(createdTS.String)
		if err != nil {
			continue
		}
		end, err := parseTimestamp(lastTS)
		if err != nil {
			continue
		}
		if minutes := end.Sub(start).Minutes(); minutes > 0 {
			a.minutes = append(a.minutes, minutes)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var results []ScenarioStats
	for scenario, a := range byScenario {
		results = append(results, ScenarioStats{
			Scenario:   scenario,
			Runs:       a.runs,
			Passed:     a.passed,
			PassRate:   pct(a.passed, a.runs),
			AvgMinutes: avg(a.minutes),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Scenario < results[j].Scenario
	})
	return results, nil
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
