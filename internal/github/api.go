package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// APIClient provides the same gateway operations as Client, but over the
// GitHub REST API instead of the gh CLI. Selected with `tracker: api`.
type APIClient struct {
	gh *gh.Client
}

// NewAPIClient creates a REST API client authenticated with a token.
func NewAPIClient(ctx context.Context, token string) *APIClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &APIClient{gh: gh.NewClient(oauth2.NewClient(ctx, ts))}
}

// splitRepo splits an "owner/repo" slug.
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", repo)
	}
	return owner, name, nil
}

// CreateIssue files a new issue. The created issue's URL is placed on
// CreateResult.Stdout so callers extract it the same way as with the CLI.
func (c *APIClient) CreateIssue(ctx context.Context, repo string, opts IssueCreateOpts) (*CreateResult, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	req := &gh.IssueRequest{
		Title:  gh.String(opts.Title),
		Body:   gh.String(opts.Body),
		Labels: &opts.Labels,
	}
	issue, _, err := c.gh.Issues.Create(ctx, owner, name, req)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &CreateResult{Stdout: issue.GetHTMLURL()}, nil
}

// GetIssue fetches an issue's title, body and labels.
func (c *APIClient) GetIssue(ctx context.Context, repo string, number int) (*Issue, error) {
	if err := ValidateIssueNumber(number); err != nil {
		return nil, err
	}
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	issue, _, err := c.gh.Issues.Get(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", number, err)
	}
	return mapIssue(issue), nil
}

// ListComments fetches all comments on an issue.
func (c *APIClient) ListComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	if err := ValidateIssueNumber(number); err != nil {
		return nil, err
	}
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	raw, _, err := c.gh.Issues.ListComments(ctx, owner, name, number, nil)
	if err != nil {
		return nil, fmt.Errorf("list comments for issue %d: %w", number, err)
	}

	comments := make([]Comment, 0, len(raw))
	for _, cm := range raw {
		comments = append(comments, Comment{Body: cm.GetBody()})
	}
	return comments, nil
}

// ListRuns fetches recent issue-triggered runs of the named workflow.
// The REST API addresses workflows by ID, so the name is resolved first.
func (c *APIClient) ListRuns(ctx context.Context, repo, workflow string, limit int) ([]WorkflowRun, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	workflows, _, err := c.gh.Actions.ListWorkflows(ctx, owner, name, nil)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	var workflowID int64
	for _, wf := range workflows.Workflows {
		if wf.GetName() == workflow {
			workflowID = wf.GetID()
			break
		}
	}
	if workflowID == 0 {
		return nil, fmt.Errorf("workflow %q not found in %s", workflow, repo)
	}

	runs, _, err := c.gh.Actions.ListWorkflowRunsByID(ctx, owner, name, workflowID, &gh.ListWorkflowRunsOptions{
		Event:       "issues",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}

	mapped := make([]WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		mapped = append(mapped, mapRun(run))
	}
	return mapped, nil
}

func mapIssue(issue *gh.Issue) *Issue {
	mapped := &Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
	}
	for _, l := range issue.Labels {
		mapped.Labels = append(mapped.Labels, Label{Name: l.GetName()})
	}
	return mapped
}

func mapRun(run *gh.WorkflowRun) WorkflowRun {
	return WorkflowRun{
		ID:           run.GetID(),
		DisplayTitle: run.GetDisplayTitle(),
		Status:       run.GetStatus(),
		Conclusion:   run.GetConclusion(),
		CreatedAt:    formatTimestamp(run.GetCreatedAt()),
		UpdatedAt:    formatTimestamp(run.GetUpdatedAt()),
	}
}

func formatTimestamp(ts gh.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
