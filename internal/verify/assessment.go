package verify

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/kenjpais/okd/internal/backoff"
	"github.com/kenjpais/okd/internal/github"
)

// assessmentMarker is the literal phrase the triage workflow puts in front
// of its severity-component tag.
const assessmentMarker = "AI Assessment:"

var (
	assessmentTokenRe = regexp.MustCompile(`(?i)AI Assessment:\s*(\S+)`)
	assessmentTagRe   = regexp.MustCompile(`(?i)^(critical|high|medium|low)-(coreapi|networking|installation|storage|webconsole|documentation)$`)
)

// CommentLister is the subset of the tracker gateway the assessment check needs.
type CommentLister interface {
	ListComments(ctx context.Context, repo string, number int) ([]github.Comment, error)
}

// AssessmentCheck polls the issue's comments for an AI assessment tag drawn
// from the closed severity-component vocabulary.
type AssessmentCheck struct {
	Comments   CommentLister
	SettleWait time.Duration
	Sleep      func(time.Duration)
	Poller     backoff.Poller
	Progress   io.Writer
}

func (c *AssessmentCheck) logf(format string, args ...any) {
	if c.Progress != nil {
		fmt.Fprintf(c.Progress, format+"\n", args...)
	}
}

func (c *AssessmentCheck) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Validate waits for a comment carrying a well-formed assessment tag and
// returns the tag found. At exhaustion the error distinguishes "no comments
// at all", "marker present but token malformed" (reporting every token
// actually found) and "marker never found".
func (c *AssessmentCheck) Validate(ctx context.Context, repo string, issue int) (string, error) {
	c.sleep(c.SettleWait)

	var (
		found        string
		lastComments []github.Comment
		lastTokens   []string
	)

	poller := c.Poller
	if poller.OnWait == nil {
		poller.OnWait = func(attempt int, wait time.Duration) {
			c.logf("issue #%d: assessment comment not found yet, waiting %v before retry %d/%d",
				issue, wait, attempt+1, poller.MaxRetries)
		}
	}

	result := poller.Poll(func() backoff.Result {
		comments, err := c.Comments.ListComments(ctx, repo, issue)
		if err != nil {
			c.logf("issue #%d: fetching comments: %v", issue, err)
			return backoff.Retry
		}
		lastComments = comments
		lastTokens = lastTokens[:0]

		for _, cm := range comments {
			if !strings.Contains(cm.Body, assessmentMarker) {
				continue
			}
			m := assessmentTokenRe.FindStringSubmatch(cm.Body)
			if m == nil {
				continue
			}
			token := strings.TrimSpace(m[1])
			lastTokens = append(lastTokens, token)
			if assessmentTagRe.MatchString(token) {
				found = token
				return backoff.Done
			}
		}

		c.logf("issue #%d: no valid assessment in %d comment(s)", issue, len(comments))
		return backoff.Retry
	})

	if result == backoff.Done {
		c.logf("✓ issue #%d: found AI assessment %q", issue, found)
		return found, nil
	}

	attempts := c.Poller.MaxRetries + 1
	switch {
	case len(lastComments) == 0:
		return "", fmt.Errorf("issue #%d: no comments found (expected AI assessment comment after %d attempts)", issue, attempts)
	case len(lastTokens) > 0:
		return "", fmt.Errorf("issue #%d: AI assessment comment found but malformed: expected severity-component (e.g. critical-CoreAPI), found: %s",
			issue, strings.Join(lastTokens, ", "))
	default:
		return "", fmt.Errorf("issue #%d: AI assessment comment not found after %d attempts", issue, attempts)
	}
}
