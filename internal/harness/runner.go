package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kenjpais/okd/internal/backoff"
	"github.com/kenjpais/okd/internal/config"
	"github.com/kenjpais/okd/internal/github"
	"github.com/kenjpais/okd/internal/scenario"
	"github.com/kenjpais/okd/internal/verify"
)

// Tracker is the full gateway surface the harness needs. Both the gh-CLI
// client and the REST API client satisfy it.
type Tracker interface {
	CreateIssue(ctx context.Context, repo string, opts github.IssueCreateOpts) (*github.CreateResult, error)
	GetIssue(ctx context.Context, repo string, number int) (*github.Issue, error)
	ListComments(ctx context.Context, repo string, number int) ([]github.Comment, error)
	ListRuns(ctx context.Context, repo, workflow string, limit int) ([]github.WorkflowRun, error)
}

// EventLogger records harness events for later analysis. Optional.
type EventLogger interface {
	LogEvent(issue int, scenario, stage, event, detail string) error
}

// Validation stages, in execution order.
const (
	StageCreate     = "create"
	StageCompletion = "completion"
	StageLabels     = "labels"
	StageAssessment = "assessment"
)

// Result records the outcome of one stage for one fixture issue.
type Result struct {
	Issue    int
	Scenario string
	Stage    string
	Passed   bool
	Reason   string
}

// Runner executes the full harness: create all fixtures first, then walk
// each created issue through completion, label and assessment validation.
// Fixtures are strictly sequential; one issue's failure never stops the
// others.
type Runner struct {
	Tracker  Tracker
	Cfg      config.Harness
	Events   EventLogger
	Progress io.Writer
	Sleep    func(time.Duration)
}

func (r *Runner) logf(format string, args ...any) {
	if r.Progress != nil {
		fmt.Fprintf(r.Progress, format+"\n", args...)
	}
}

func (r *Runner) logEvent(issue int, scenarioName, stage, event, detail string) {
	if r.Events == nil {
		return
	}
	if err := r.Events.LogEvent(issue, scenarioName, stage, event, detail); err != nil {
		r.logf("warning: record event for issue #%d: %v", issue, err)
	}
}

// Run creates a fixture issue per scenario, then validates each one.
func (r *Runner) Run(ctx context.Context, repo string, scenarios []scenario.Scenario) (*Report, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to run")
	}

	report := &Report{}
	creator := r.creator()

	var created []CreatedIssue
	for _, sc := range scenarios {
		r.logf("── scenario %q", sc.Name)
		issue, err := creator.Create(ctx, repo, sc)
		if err != nil {
			r.logf("✗ %v", err)
			report.add(Result{Scenario: sc.Name, Stage: StageCreate, Reason: err.Error()})
			continue
		}
		created = append(created, *issue)
		report.add(Result{Issue: issue.Number, Scenario: sc.Name, Stage: StageCreate, Passed: true, Reason: issue.URL})
		r.logEvent(issue.Number, sc.Name, StageCreate, "created", issue.URL)
	}

	for i := range created {
		r.validate(ctx, repo, &created[i], report)
	}
	return report, nil
}

// ValidateIssue runs the three validation stages against an existing issue,
// skipping creation. Used to re-check an issue after the fact.
func (r *Runner) ValidateIssue(ctx context.Context, repo string, number int, sc scenario.Scenario) *Report {
	report := &Report{}
	r.validate(ctx, repo, &CreatedIssue{Number: number, Scenario: sc}, report)
	return report
}

func (r *Runner) validate(ctx context.Context, repo string, issue *CreatedIssue, report *Report) {
	name := issue.Scenario.Name
	r.logf("── validating issue #%d (scenario %q)", issue.Number, name)

	completion := r.completionCheck()
	if _, err := completion.Validate(ctx, repo, issue.Number); err != nil {
		r.logf("✗ issue #%d: %v", issue.Number, err)
		report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageCompletion, Reason: err.Error()})
		r.logEvent(issue.Number, name, StageCompletion, "failed", err.Error())
		// Label and assessment checks require a validated workflow run.
		r.logf("issue #%d: skipping label and assessment checks, workflow run did not validate", issue.Number)
		return
	}
	report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageCompletion, Passed: true})
	r.logEvent(issue.Number, name, StageCompletion, "passed", "")

	labels := r.labelCheck()
	if err := labels.Validate(ctx, repo, issue.Number, issue.Scenario.ExpectedLabels); err != nil {
		r.logf("✗ issue #%d: %v", issue.Number, err)
		report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageLabels, Reason: err.Error()})
		r.logEvent(issue.Number, name, StageLabels, "failed", err.Error())
	} else {
		report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageLabels, Passed: true})
		r.logEvent(issue.Number, name, StageLabels, "passed", "")
	}

	// Negative scenarios with no expected assessment skip the comment check.
	if !issue.Scenario.IsPositive && issue.Scenario.ExpectedAssessment == "" {
		return
	}

	assessment := r.assessmentCheck()
	if tag, err := assessment.Validate(ctx, repo, issue.Number); err != nil {
		r.logf("✗ issue #%d: %v", issue.Number, err)
		report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageAssessment, Reason: err.Error()})
		r.logEvent(issue.Number, name, StageAssessment, "failed", err.Error())
	} else {
		report.add(Result{Issue: issue.Number, Scenario: name, Stage: StageAssessment, Passed: true, Reason: tag})
		r.logEvent(issue.Number, name, StageAssessment, "passed", tag)
	}
}

func (r *Runner) creator() *Creator {
	return &Creator{
		Tracker:    r.Tracker,
		LabelWait:  r.Cfg.LabelWait.Std(),
		SettleWait: r.Cfg.SettleWait.Std(),
		Sleep:      r.Sleep,
		Progress:   r.Progress,
	}
}

func (r *Runner) completionCheck() *verify.CompletionCheck {
	return &verify.CompletionCheck{
		Runs:     r.Tracker,
		Workflow: r.Cfg.Workflow,
		Limit:    r.Cfg.RunLimit,
		Poller: backoff.Poller{
			MaxRetries: r.Cfg.RunRetries,
			BaseWait:   r.Cfg.RunBaseWait.Std(),
			Sleep:      r.Sleep,
		},
		Progress: r.Progress,
	}
}

func (r *Runner) labelCheck() *verify.LabelCheck {
	return &verify.LabelCheck{
		Issues:     r.Tracker,
		SettleWait: r.Cfg.LabelWait.Std(),
		Sleep:      r.Sleep,
		Progress:   r.Progress,
	}
}

func (r *Runner) assessmentCheck() *verify.AssessmentCheck {
	return &verify.AssessmentCheck{
		Comments:   r.Tracker,
		SettleWait: r.Cfg.CommentWait.Std(),
		Sleep:      r.Sleep,
		Poller: backoff.Poller{
			MaxRetries: r.Cfg.CommentRetries,
			BaseWait:   r.Cfg.CommentBaseWait.Std(),
			Sleep:      r.Sleep,
		},
		Progress: r.Progress,
	}
}
