// Package github is the tracker gateway: a thin request/response wrapper
// around GitHub, implemented over the gh CLI (Client) or the REST API
// (APIClient). Both fail closed — callers treat an error as "no data yet".
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kenjpais/okd/internal/extract"
)

// CmdRunner provides gh command execution. Interface for testing.
// Stdout and stderr come back separately because gh prints created-issue
// URLs on stdout, while some versions emit them on stderr.
type CmdRunner interface {
	Run(ctx context.Context, args ...string) (stdout, stderr string, err error)
}

// GitRunner provides git command execution. Interface for testing.
type GitRunner interface {
	RunGit(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs gh and git commands via exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	stdout := strings.TrimSpace(out.String())
	stderr := strings.TrimSpace(errOut.String())
	if err != nil {
		return stdout, stderr, fmt.Errorf("gh %s: %s: %w", strings.Join(args, " "), stderr, err)
	}
	return stdout, stderr, nil
}

// RunGit implements GitRunner using exec.CommandContext.
func (r *ExecRunner) RunGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Client provides GitHub operations via the gh CLI.
type Client struct {
	cmd CmdRunner
	git GitRunner
}

// NewClient creates a gh-CLI client. If cmd also implements GitRunner,
// it will be used for repository detection.
func NewClient(cmd CmdRunner) *Client {
	c := &Client{cmd: cmd}
	if git, ok := cmd.(GitRunner); ok {
		c.git = git
	}
	return c
}

// NewClientWithGit creates a gh-CLI client with a separate git runner.
func NewClientWithGit(cmd CmdRunner, git GitRunner) *Client {
	return &Client{cmd: cmd, git: git}
}

// Issue represents a GitHub issue.
type Issue struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Body   string  `json:"body"`
	Labels []Label `json:"labels"`
}

// Label represents a GitHub label.
type Label struct {
	Name string `json:"name"`
}

// LabelNames returns the issue's label names.
func (i *Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Comment represents an issue comment.
type Comment struct {
	Body string `json:"body"`
}

// WorkflowRun is a snapshot of one workflow run, as reported by
// `gh run list`. The display title of issue-triggered runs embeds the
// issue number as a #-token.
type WorkflowRun struct {
	ID           int64  `json:"databaseId"`
	DisplayTitle string `json:"displayTitle"`
	Status       string `json:"status"`
	Conclusion   string `json:"conclusion"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// IssueCreateOpts holds the parameters for creating an issue.
type IssueCreateOpts struct {
	Title  string
	Body   string
	Labels []string
}

// CreateResult carries the raw output channels of an issue create, so the
// caller can extract the issue URL from stdout with a stderr fallback.
type CreateResult struct {
	Stdout string
	Stderr string
}

// ValidateIssueNumber checks that an issue number is positive.
func ValidateIssueNumber(n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid issue number %d: must be positive", n)
	}
	return nil
}

// CreateIssue files a new issue with the given title, body and labels.
func (c *Client) CreateIssue(ctx context.Context, repo string, opts IssueCreateOpts) (*CreateResult, error) {
	args := []string{"issue", "create", "--repo", repo, "--title", opts.Title, "--body", opts.Body}
	for _, label := range opts.Labels {
		args = append(args, "--label", label)
	}

	stdout, stderr, err := c.cmd.Run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &CreateResult{Stdout: stdout, Stderr: stderr}, nil
}

// GetIssue fetches an issue's title, body and labels.
func (c *Client) GetIssue(ctx context.Context, repo string, number int) (*Issue, error) {
	if err := ValidateIssueNumber(number); err != nil {
		return nil, err
	}

	stdout, _, err := c.cmd.Run(ctx, "issue", "view", strconv.Itoa(number), "--repo", repo, "--json", "number,title,body,labels")
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal([]byte(stdout), &issue); err != nil {
		return nil, fmt.Errorf("parse issue JSON: %w", err)
	}
	return &issue, nil
}

// ListComments fetches all comments on an issue, oldest first.
func (c *Client) ListComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	if err := ValidateIssueNumber(number); err != nil {
		return nil, err
	}

	stdout, _, err := c.cmd.Run(ctx, "api", fmt.Sprintf("repos/%s/issues/%d/comments", repo, number))
	if err != nil {
		return nil, fmt.Errorf("list comments for issue %d: %w", number, err)
	}
	if stdout == "" {
		return nil, nil
	}

	var comments []Comment
	if err := json.Unmarshal([]byte(stdout), &comments); err != nil {
		return nil, fmt.Errorf("parse comments JSON: %w", err)
	}
	return comments, nil
}

// ListRuns fetches recent issue-triggered runs of the named workflow,
// most recent first.
func (c *Client) ListRuns(ctx context.Context, repo, workflow string, limit int) ([]WorkflowRun, error) {
	stdout, _, err := c.cmd.Run(ctx,
		"run", "list",
		"--repo", repo,
		"--workflow", workflow,
		"--event", "issues",
		"--json", "databaseId,displayTitle,status,conclusion,createdAt,updatedAt",
		"--limit", strconv.Itoa(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}
	if stdout == "" {
		return nil, nil
	}

	var runs []WorkflowRun
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		return nil, fmt.Errorf("parse workflow runs JSON: %w", err)
	}
	return runs, nil
}

// DetectRepo determines the "owner/repo" slug, trying the git origin remote
// first and falling back to gh's view of the current repository.
func (c *Client) DetectRepo(ctx context.Context) (string, error) {
	if c.git != nil {
		out, err := c.git.RunGit(ctx, "remote", "get-url", "origin")
		if err == nil {
			if repo, ok := extract.RepoFromRemote(out); ok {
				return repo, nil
			}
		}
	}

	stdout, _, err := c.cmd.Run(ctx, "repo", "view", "--json", "nameWithOwner", "-q", ".nameWithOwner")
	if err != nil {
		return "", fmt.Errorf("detect repository: %w", err)
	}
	if stdout == "" {
		return "", fmt.Errorf("detect repository: gh returned no repository name")
	}
	return stdout, nil
}
