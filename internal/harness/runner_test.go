package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kenjpais/okd/internal/config"
	"github.com/kenjpais/okd/internal/github"
	"github.com/kenjpais/okd/internal/scenario"
)

// fakeTracker simulates a repository where the triage workflow has already
// finished: creating an issue immediately yields a completed run, the
// configured final labels, and the configured assessment comment.
type fakeTracker struct {
	nextNumber int
	issues     map[int]*github.Issue
	comments   map[int][]github.Comment
	runs       []github.WorkflowRun

	failCreateTitle string // CreateIssue fails for this title
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		nextNumber: 100,
		issues:     map[int]*github.Issue{},
		comments:   map[int][]github.Comment{},
	}
}

func (f *fakeTracker) CreateIssue(_ context.Context, repo string, opts github.IssueCreateOpts) (*github.CreateResult, error) {
	if opts.Title == f.failCreateTitle {
		return nil, errors.New("gh issue create: exit status 1")
	}
	f.nextNumber++
	n := f.nextNumber
	issue := &github.Issue{Number: n, Title: opts.Title, Body: opts.Body}
	for _, l := range opts.Labels {
		issue.Labels = append(issue.Labels, github.Label{Name: l})
	}
	f.issues[n] = issue
	f.runs = append(f.runs, github.WorkflowRun{
		ID:           int64(1000 + n),
		DisplayTitle: fmt.Sprintf("Triage New Issue for #%d", n),
		Status:       "completed",
		Conclusion:   "success",
		CreatedAt:    "2026-08-24T10:00:00Z",
		UpdatedAt:    "2026-08-24T10:02:00Z",
	})
	return &github.CreateResult{Stdout: fmt.Sprintf("https://github.com/%s/issues/%d", repo, n)}, nil
}

func (f *fakeTracker) GetIssue(_ context.Context, repo string, number int) (*github.Issue, error) {
	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue %d not found", number)
	}
	return issue, nil
}

func (f *fakeTracker) ListComments(_ context.Context, repo string, number int) ([]github.Comment, error) {
	return f.comments[number], nil
}

func (f *fakeTracker) ListRuns(_ context.Context, repo, workflow string, limit int) ([]github.WorkflowRun, error) {
	return f.runs, nil
}

// triage applies the simulated workflow outcome to an issue: final labels
// and an assessment comment.
func (f *fakeTracker) triage(number int, labels []string, comment string) {
	issue := f.issues[number]
	issue.Labels = nil
	for _, l := range labels {
		issue.Labels = append(issue.Labels, github.Label{Name: l})
	}
	if comment != "" {
		f.comments[number] = append(f.comments[number], github.Comment{Body: comment})
	}
}

func testConfig() config.Harness {
	return config.Harness{
		Workflow:        "Triage New Issue",
		RunLimit:        20,
		RunRetries:      1,
		RunBaseWait:     config.Duration(time.Second),
		CommentRetries:  1,
		CommentBaseWait: config.Duration(time.Second),
	}
}

func twoScenarios() []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:               "crash-loop",
			Title:              "[TEST] Scenario 1: API server crash loop",
			Body:               "The API server pod restarts continuously.",
			Labels:             []string{"kind/bug"},
			IsPositive:         true,
			ExpectedAssessment: "critical-coreapi",
			ExpectedLabels:     []string{"kind/bug", "ai:bug-triage:critical-coreapi"},
		},
		{
			Name:               "dns-flake",
			Title:              "[TEST] Scenario 2: intermittent DNS resolution failures",
			Body:               "Pods intermittently fail to resolve cluster-internal names.",
			Labels:             []string{"kind/bug"},
			IsPositive:         true,
			ExpectedAssessment: "high-networking",
			ExpectedLabels:     []string{"kind/bug", "ai:bug-triage:high-networking"},
		},
	}
}

func newRunner(tracker Tracker) *Runner {
	return &Runner{
		Tracker:  tracker,
		Cfg:      testConfig(),
		Sleep:    func(time.Duration) {},
		Progress: &bytes.Buffer{},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	tracker := newFakeTracker()
	runner := newRunner(tracker)
	scenarios := twoScenarios()

	// Pre-create both issues through the runner by simulating the triage
	// outcome as soon as each issue exists: wrap the tracker so CreateIssue
	// also applies the scenario's expected result.
	wrapped := &triagingTracker{fakeTracker: tracker, scenarios: scenarios}
	runner.Tracker = wrapped

	report, err := runner.Run(context.Background(), "okd-project/okd", scenarios)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed() {
		report.Render(&bytes.Buffer{})
		t.Fatalf("expected all stages to pass, got %+v", report.Results)
	}

	want := []Result{
		{Issue: 101, Scenario: "crash-loop", Stage: StageCreate, Passed: true, Reason: "https://github.com/okd-project/okd/issues/101"},
		{Issue: 102, Scenario: "dns-flake", Stage: StageCreate, Passed: true, Reason: "https://github.com/okd-project/okd/issues/102"},
		{Issue: 101, Scenario: "crash-loop", Stage: StageCompletion, Passed: true},
		{Issue: 101, Scenario: "crash-loop", Stage: StageLabels, Passed: true},
		{Issue: 101, Scenario: "crash-loop", Stage: StageAssessment, Passed: true, Reason: "critical-CoreAPI"},
		{Issue: 102, Scenario: "dns-flake", Stage: StageCompletion, Passed: true},
		{Issue: 102, Scenario: "dns-flake", Stage: StageLabels, Passed: true},
		{Issue: 102, Scenario: "dns-flake", Stage: StageAssessment, Passed: true, Reason: "high-Networking"},
	}
	if diff := cmp.Diff(want, report.Results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

// triagingTracker applies a scenario's expected outcome right after its
// fixture issue is created, standing in for the real workflow.
type triagingTracker struct {
	*fakeTracker
	scenarios []scenario.Scenario
	created   int
}

var assessmentTags = map[string]string{
	"critical-coreapi": "critical-CoreAPI",
	"high-networking":  "high-Networking",
}

func (f *triagingTracker) CreateIssue(ctx context.Context, repo string, opts github.IssueCreateOpts) (*github.CreateResult, error) {
	res, err := f.fakeTracker.CreateIssue(ctx, repo, opts)
	if err != nil {
		return nil, err
	}
	sc := f.scenarios[f.created]
	f.created++
	comment := ""
	if tag, ok := assessmentTags[sc.ExpectedAssessment]; ok {
		comment = "AI Assessment: " + tag + "\n\nAutomated triage details."
	}
	f.triage(f.nextNumber, sc.ExpectedLabels, comment)
	return res, nil
}

func TestRun_OneCreateFailureDoesNotStopOthers(t *testing.T) {
	tracker := newFakeTracker()
	scenarios := twoScenarios()
	tracker.failCreateTitle = scenarios[0].Title

	wrapped := &triagingTracker{fakeTracker: tracker, scenarios: scenarios[1:]}
	runner := newRunner(tracker)
	runner.Tracker = wrapped

	report, err := runner.Run(context.Background(), "okd-project/okd", scenarios)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Failed() {
		t.Fatal("expected a failed create in the report")
	}
	var createFails, assessmentPasses int
	for _, res := range report.Results {
		if res.Stage == StageCreate && !res.Passed {
			createFails++
			if res.Scenario != "crash-loop" {
				t.Errorf("wrong scenario failed: %+v", res)
			}
		}
		if res.Stage == StageAssessment && res.Passed {
			assessmentPasses++
		}
	}
	if createFails != 1 {
		t.Errorf("expected 1 create failure, got %d", createFails)
	}
	if assessmentPasses != 1 {
		t.Errorf("expected the surviving issue to validate fully, got %d assessment passes", assessmentPasses)
	}
}

func TestRun_OneValidationFailureDoesNotStopOthers(t *testing.T) {
	tracker := newFakeTracker()
	scenarios := twoScenarios()

	wrapped := &triagingTracker{fakeTracker: tracker, scenarios: scenarios}
	// First scenario's triage misassigns the component.
	wrapped.scenarios = []scenario.Scenario{
		{
			Name:               scenarios[0].Name,
			Title:              scenarios[0].Title,
			Body:               scenarios[0].Body,
			Labels:             scenarios[0].Labels,
			ExpectedAssessment: scenarios[0].ExpectedAssessment,
			ExpectedLabels:     []string{"kind/bug", "ai:bug-triage:critical-storage"},
		},
		scenarios[1],
	}
	runner := newRunner(tracker)
	runner.Tracker = wrapped

	report, err := runner.Run(context.Background(), "okd-project/okd", scenarios)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var labelResults []Result
	for _, res := range report.Results {
		if res.Stage == StageLabels {
			labelResults = append(labelResults, res)
		}
	}
	if len(labelResults) != 2 {
		t.Fatalf("expected both issues to reach label validation, got %+v", labelResults)
	}
	if labelResults[0].Passed {
		t.Error("expected first issue's label check to fail (wrong component)")
	}
	if !labelResults[1].Passed {
		t.Errorf("expected second issue's label check to pass, got %+v", labelResults[1])
	}
}

func TestRun_CompletionFailureSkipsRemainingChecks(t *testing.T) {
	tracker := newFakeTracker()
	scenarios := twoScenarios()[:1]
	wrapped := &triagingTracker{fakeTracker: tracker, scenarios: scenarios}
	runner := newRunner(tracker)
	runner.Tracker = wrapped

	// Create and triage the fixture, then mark its only run failed and
	// re-validate. Labels and assessment must not be checked for a run
	// that did not complete successfully, even when they would pass.
	if _, err := runner.Run(context.Background(), "okd-project/okd", scenarios); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range tracker.runs {
		tracker.runs[i].Conclusion = "failure"
	}
	report := runner.ValidateIssue(context.Background(), "okd-project/okd", 101, scenarios[0])

	if len(report.Results) != 1 {
		t.Fatalf("expected only the completion result, got %+v", report.Results)
	}
	res := report.Results[0]
	if res.Stage != StageCompletion || res.Passed {
		t.Errorf("expected a failed completion result, got %+v", res)
	}
	if !report.Failed() {
		t.Error("expected the report to be failed")
	}
}

func TestRun_NoScenarios(t *testing.T) {
	runner := newRunner(newFakeTracker())
	if _, err := runner.Run(context.Background(), "okd-project/okd", nil); err == nil {
		t.Fatal("expected error for empty scenario list")
	}
}

func TestValidateIssue_SkipsCreation(t *testing.T) {
	tracker := newFakeTracker()
	tracker.issues[55] = &github.Issue{
		Number: 55,
		Labels: []github.Label{{Name: "kind/bug"}, {Name: "ai:bug-triage:high-coreapi"}},
	}
	tracker.comments[55] = []github.Comment{{Body: "AI Assessment: high-CoreAPI"}}
	tracker.runs = []github.WorkflowRun{{
		ID:           2055,
		DisplayTitle: "Triage New Issue for #55",
		Status:       "completed",
		Conclusion:   "success",
		CreatedAt:    "2026-08-24T10:00:00Z",
		UpdatedAt:    "2026-08-24T10:02:00Z",
	}}

	runner := newRunner(tracker)
	report := runner.ValidateIssue(context.Background(), "okd-project/okd", 55, twoScenarios()[0])

	if report.Failed() {
		t.Fatalf("expected validation to pass, got %+v", report.Results)
	}
	for _, res := range report.Results {
		if res.Stage == StageCreate {
			t.Errorf("validation-only run must not include a create stage: %+v", res)
		}
	}
}

func TestReport_Render(t *testing.T) {
	report := &Report{Results: []Result{
		{Issue: 101, Scenario: "crash-loop", Stage: StageCompletion, Passed: true},
		{Scenario: "dns-flake", Stage: StageCreate, Reason: "no issue URL in tracker output"},
	}}

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()

	for _, want := range []string{"#101", "PASS", "FAIL", "dns-flake", "1 passed, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered report:\n%s", want, out)
		}
	}
}

type recordingLogger struct {
	events []string
}

func (l *recordingLogger) LogEvent(issue int, scenarioName, stage, event, detail string) error {
	l.events = append(l.events, fmt.Sprintf("%d/%s/%s/%s", issue, scenarioName, stage, event))
	return nil
}

func TestRun_EventsRecorded(t *testing.T) {
	tracker := newFakeTracker()
	scenarios := twoScenarios()[:1]
	wrapped := &triagingTracker{fakeTracker: tracker, scenarios: scenarios}

	logger := &recordingLogger{}
	runner := newRunner(tracker)
	runner.Tracker = wrapped
	runner.Events = logger

	if _, err := runner.Run(context.Background(), "okd-project/okd", scenarios); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"101/crash-loop/create/created",
		"101/crash-loop/completion/passed",
		"101/crash-loop/labels/passed",
		"101/crash-loop/assessment/passed",
	}
	if diff := cmp.Diff(want, logger.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
