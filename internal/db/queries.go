package db

import (
	"database/sql"
	"fmt"
)

// HarnessEvent represents a row in the harness_events table.
type HarnessEvent struct {
	ID        int
	Issue     int
	Scenario  string
	Stage     string
	Event     string
	Detail    string
	Timestamp string
}

// LogEvent inserts a harness event.
func (d *DB) LogEvent(issue int, scenario, stage, event, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO harness_events (issue, scenario, stage, event, detail) VALUES (?, ?, ?, ?, ?)`,
		issue, scenario, stage, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log harness event: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent events, newest first.
func (d *DB) RecentEvents(limit int) ([]HarnessEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, issue, scenario, stage, event, detail, timestamp
		 FROM harness_events ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []HarnessEvent
	for rows.Next() {
		var e HarnessEvent
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Issue, &e.Scenario, &e.Stage, &e.Event, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan harness event: %w", err)
		}
		e.Detail = detail.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventsForIssue returns all events for one issue, oldest first.
func (d *DB) EventsForIssue(issue int) ([]HarnessEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, issue, scenario, stage, event, detail, timestamp
		 FROM harness_events WHERE issue = ? ORDER BY timestamp ASC, id ASC`,
		issue,
	)
	if err != nil {
		return nil, fmt.Errorf("query events for issue %d: %w", issue, err)
	}
	defer rows.Close()

	var events []HarnessEvent
	for rows.Next() {
		var e HarnessEvent
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Issue, &e.Scenario, &e.Stage, &e.Event, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan harness event: %w", err)
		}
		e.Detail = detail.String
		events = append(events, e)
	}
	return events, rows.Err()
}
