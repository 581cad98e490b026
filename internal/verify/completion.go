package verify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kenjpais/okd/internal/backoff"
	"github.com/kenjpais/okd/internal/github"
)

const (
	statusInProgress  = "in_progress"
	statusCompleted   = "completed"
	conclusionSuccess = "success"
)

// RunLister is the subset of the tracker gateway the completion check needs.
type RunLister interface {
	ListRuns(ctx context.Context, repo, workflow string, limit int) ([]github.WorkflowRun, error)
}

// CompletionCheck waits for an issue's triage run to leave the in-progress
// state and asserts it completed successfully.
type CompletionCheck struct {
	Runs     RunLister
	Workflow string
	Limit    int
	Poller   backoff.Poller
	Progress io.Writer // nil = silent
}

func (c *CompletionCheck) logf(format string, args ...any) {
	if c.Progress != nil {
		fmt.Fprintf(c.Progress, format+"\n", args...)
	}
}

// Validate polls for the issue's run until it is terminal, then requires
// status "completed" with conclusion "success". The final run snapshot is
// returned as evidence even on failure, when one was seen.
func (c *CompletionCheck) Validate(ctx context.Context, repo string, issue int) (*github.WorkflowRun, error) {
	var (
		last    *github.WorkflowRun
		hardErr error
	)

	poller := c.Poller
	if poller.OnWait == nil {
		poller.OnWait = func(attempt int, wait time.Duration) {
			c.logf("issue #%d: waiting %v before retry %d/%d", issue, wait, attempt+1, poller.MaxRetries)
		}
	}

	result := poller.Poll(func() backoff.Result {
		runs, err := c.Runs.ListRuns(ctx, repo, c.Workflow, c.Limit)
		if err != nil {
			c.logf("issue #%d: fetching workflow runs: %v", issue, err)
			return backoff.Retry
		}

		run, ok := FindRun(runs, issue)
		if !ok {
			c.logf("issue #%d: no workflow run found yet", issue)
			return backoff.Retry
		}
		last = run

		// A terminal-looking snapshot without identity or timestamps is
		// a data-integrity fault, not an eventual-consistency gap.
		if run.ID == 0 || run.CreatedAt == "" || run.UpdatedAt == "" {
			hardErr = fmt.Errorf("issue #%d: run snapshot missing run id or timestamps (id=%d createdAt=%q updatedAt=%q)",
				issue, run.ID, run.CreatedAt, run.UpdatedAt)
			return backoff.Failed
		}

		c.logf("issue #%d: run %d status=%s conclusion=%s", issue, run.ID, run.Status, run.Conclusion)
		if run.Status == statusInProgress {
			return backoff.Retry
		}
		return backoff.Done
	})

	switch result {
	case backoff.Failed:
		return last, hardErr
	case backoff.Exhausted:
		if last == nil {
			return nil, fmt.Errorf("no workflow run found for issue #%d after %d attempts", issue, c.Poller.MaxRetries+1)
		}
		return last, fmt.Errorf("issue #%d did not complete after %d retries with exponential backoff", issue, c.Poller.MaxRetries)
	}

	if last.Status != statusCompleted {
		return last, fmt.Errorf("issue #%d did not complete (status=%q)", issue, last.Status)
	}
	if last.Conclusion != conclusionSuccess {
		return last, fmt.Errorf("issue #%d did not complete successfully (conclusion=%q)", issue, last.Conclusion)
	}

	c.logf("✓ issue #%d: workflow run %d validated", issue, last.ID)
	return last, nil
}
