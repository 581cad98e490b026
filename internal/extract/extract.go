// Package extract pulls structured values out of unstructured tracker text.
// All functions are pure; absence is reported as ok=false, never an error,
// so callers can treat "not found" as a normal retryable condition.
package extract

import "regexp"

var (
	issueNumberInURLRe   = regexp.MustCompile(`/issues/(\d+)`)
	issueNumberInTitleRe = regexp.MustCompile(`#\s*(\d+)\b`)
	githubURLRe          = regexp.MustCompile(`https://github\.com/[^\s]+`)
	repoFromRemoteRe     = regexp.MustCompile(`github\.com[:/]([^/]+/[^/]+?)(?:\.git)?$`)
)

// IssueNumberFromURL returns the issue number embedded in a GitHub issue URL.
func IssueNumberFromURL(url string) (string, bool) {
	m := issueNumberInURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IssueNumberFromTitle returns the first #-prefixed issue number in free
// text, e.g. "123" from "Triage New Issue for #123".
func IssueNumberFromTitle(title string) (string, bool) {
	m := issueNumberInTitleRe.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// URLFromText returns the first GitHub URL found in arbitrary text.
func URLFromText(text string) (string, bool) {
	m := githubURLRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// RepoFromRemote returns "owner/repo" from a git remote URL, handling both
// ssh and https forms and an optional .git suffix.
func RepoFromRemote(remote string) (string, bool) {
	m := repoFromRemoteRe.FindStringSubmatch(remote)
	if m == nil {
		return "", false
	}
	return m[1], true
}
