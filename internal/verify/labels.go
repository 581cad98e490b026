package verify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kenjpais/okd/internal/github"
)

const (
	// automationPrefix marks labels assigned by the automation rather
	// than carried over from issue creation.
	automationPrefix = "ai:"
	// triageLabelPrefix is the structured form: ai:bug-triage:severity-component.
	triageLabelPrefix = "ai:bug-triage:"
)

// IssueGetter is the subset of the tracker gateway the label check needs.
type IssueGetter interface {
	GetIssue(ctx context.Context, repo string, number int) (*github.Issue, error)
}

// LabelCheck verifies the label set after the triage run completes.
// Carry-over labels must survive verbatim; triage labels must match on
// component, while severity is allowed to differ.
type LabelCheck struct {
	Issues     IssueGetter
	SettleWait time.Duration       // flat propagation delay before reading
	Sleep      func(time.Duration) // nil = time.Sleep
	Progress   io.Writer
}

func (c *LabelCheck) logf(format string, args ...any) {
	if c.Progress != nil {
		fmt.Fprintf(c.Progress, format+"\n", args...)
	}
}

func (c *LabelCheck) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Validate fetches the issue's current labels once (after the settle delay)
// and checks them against the expected set.
func (c *LabelCheck) Validate(ctx context.Context, repo string, issue int, expected []string) error {
	c.sleep(c.SettleWait)

	got, err := c.Issues.GetIssue(ctx, repo, issue)
	if err != nil {
		return fmt.Errorf("fetch labels for issue #%d: %w", issue, err)
	}
	actual := got.LabelNames()
	actualSet := make(map[string]bool, len(actual))
	for _, name := range actual {
		actualSet[name] = true
	}

	for _, want := range expected {
		if !strings.HasPrefix(want, automationPrefix) {
			// Carry-over label: must survive the triage run untouched.
			if !actualSet[want] {
				return fmt.Errorf("issue #%d: expected label %q to be preserved, but it is missing (actual labels: %v)",
					issue, want, sorted(actual))
			}
			c.logf("✓ issue #%d: label %q preserved", issue, want)
			continue
		}

		component, ok := triageComponent(want)
		if !ok {
			// Not the structured severity-component shape: exact match.
			if !actualSet[want] {
				return fmt.Errorf("issue #%d: expected label %q not found (actual labels: %v)",
					issue, want, sorted(actual))
			}
			c.logf("✓ issue #%d: label %q assigned", issue, want)
			continue
		}

		matched := ""
		for _, have := range actual {
			if hc, ok := triageComponent(have); ok && hc == component {
				matched = have
				break
			}
		}
		if matched == "" {
			return fmt.Errorf("issue #%d: no %s* label with component %q found (expected %q, actual labels: %v)",
				issue, triageLabelPrefix, component, want, sorted(actual))
		}
		c.logf("✓ issue #%d: label %q found (component %q matches)", issue, matched, component)
	}
	return nil
}

// triageComponent extracts the component part of a structured triage label.
// "ai:bug-triage:critical-coreapi" → "coreapi". The severity is deliberately
// ignored: the automation may disagree on severity but not on component.
func triageComponent(label string) (string, bool) {
	rest, ok := strings.CutPrefix(label, triageLabelPrefix)
	if !ok {
		return "", false
	}
	_, component, ok := strings.Cut(rest, "-")
	if !ok || component == "" {
		return "", false
	}
	return component, true
}

func sorted(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
