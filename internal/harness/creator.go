// Package harness drives an end-to-end verification run: it files fixture
// issues from the scenario catalog, waits for the triage workflow to act on
// them, and checks the outcome of each one independently.
package harness

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kenjpais/okd/internal/extract"
	"github.com/kenjpais/okd/internal/github"
	"github.com/kenjpais/okd/internal/scenario"
)

// IssueCreator is the subset of the tracker gateway the creator needs.
type IssueCreator interface {
	CreateIssue(ctx context.Context, repo string, opts github.IssueCreateOpts) (*github.CreateResult, error)
	GetIssue(ctx context.Context, repo string, number int) (*github.Issue, error)
}

// CreatedIssue identifies one fixture issue filed for a scenario.
type CreatedIssue struct {
	Number   int
	URL      string
	Scenario scenario.Scenario
}

// Creator files fixture issues and resolves their numbers from the tracker's
// output. Parameter verification after create is best effort: mismatches are
// logged as warnings, never failures, since the triage workflow may already
// have started mutating the issue.
type Creator struct {
	Tracker    IssueCreator
	LabelWait  time.Duration // propagation delay before reading back
	SettleWait time.Duration // grace period before validation starts
	Sleep      func(time.Duration)
	Progress   io.Writer
}

func (c *Creator) logf(format string, args ...any) {
	if c.Progress != nil {
		fmt.Fprintf(c.Progress, format+"\n", args...)
	}
}

func (c *Creator) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Create files one fixture issue and returns its number and URL.
// The issue URL is read from stdout, falling back to stderr; gh moved it
// between channels across releases.
func (c *Creator) Create(ctx context.Context, repo string, sc scenario.Scenario) (*CreatedIssue, error) {
	res, err := c.Tracker.CreateIssue(ctx, repo, github.IssueCreateOpts{
		Title:  sc.Title,
		Body:   sc.Body,
		Labels: sc.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("create issue for scenario %q: %w", sc.Name, err)
	}

	url, ok := extract.URLFromText(res.Stdout)
	if !ok {
		url, ok = extract.URLFromText(res.Stderr)
	}
	if !ok {
		return nil, fmt.Errorf("scenario %q: no issue URL in tracker output", sc.Name)
	}

	numStr, ok := extract.IssueNumberFromURL(url)
	if !ok {
		return nil, fmt.Errorf("scenario %q: no issue number in URL %q", sc.Name, url)
	}
	number, err := strconv.Atoi(numStr)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: parse issue number %q: %w", sc.Name, numStr, err)
	}

	c.logf("✓ created issue #%d for scenario %q: %s", number, sc.Name, url)

	c.sleep(c.LabelWait)
	c.verifyParams(ctx, repo, number, sc)
	c.sleep(c.SettleWait)

	return &CreatedIssue{Number: number, URL: url, Scenario: sc}, nil
}

// verifyParams reads the issue back and warns when the stored title, body
// or labels differ from what was submitted.
func (c *Creator) verifyParams(ctx context.Context, repo string, number int, sc scenario.Scenario) {
	issue, err := c.Tracker.GetIssue(ctx, repo, number)
	if err != nil {
		c.logf("warning: issue #%d: could not read back for verification: %v", number, err)
		return
	}

	if issue.Title != sc.Title {
		c.logf("warning: issue #%d: title mismatch: want %q, have %q", number, sc.Title, issue.Title)
	}
	if strings.TrimRight(issue.Body, " \t\r\n") != strings.TrimRight(sc.Body, " \t\r\n") {
		c.logf("warning: issue #%d: body differs from submitted text", number)
	}
	if !sameLabelSet(issue.LabelNames(), sc.Labels) {
		c.logf("warning: issue #%d: labels mismatch: want %v, have %v", number, sc.Labels, issue.LabelNames())
	}
}

func sameLabelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
