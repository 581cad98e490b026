// Package verify implements the asynchronous validation engine: correlating
// a triage workflow run with the issue that triggered it, waiting for the
// run to finish, and checking the labels and assessment comment it produced.
package verify

import (
	"strconv"

	"github.com/kenjpais/okd/internal/extract"
	"github.com/kenjpais/okd/internal/github"
)

// FindRun returns the most recent run triggered by the given issue. Runs are
// assumed pre-sorted most-recent-first, so the first match wins. The embedded
// issue number must string-equal the target exactly — a substring match would
// let "#1" select a "#11" run.
func FindRun(runs []github.WorkflowRun, issue int) (*github.WorkflowRun, bool) {
	target := strconv.Itoa(issue)
	for i := range runs {
		num, ok := extract.IssueNumberFromTitle(runs[i].DisplayTitle)
		if ok && num == target {
			return &runs[i], true
		}
	}
	return nil, false
}
