package extract

import "testing"

func TestIssueNumberFromURL(t *testing.T) {
	n, ok := IssueNumberFromURL("https://github.com/okd-project/okd/issues/2041")
	if !ok || n != "2041" {
		t.Errorf("expected 2041, got %q ok=%v", n, ok)
	}
}

func TestIssueNumberFromURL_NotFound(t *testing.T) {
	for _, url := range []string{
		"https://github.com/okd-project/okd/pull/17",
		"https://github.com/okd-project/okd",
		"",
	} {
		if n, ok := IssueNumberFromURL(url); ok {
			t.Errorf("%q: expected not found, got %q", url, n)
		}
	}
}

func TestIssueNumberFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Triage New Issue for #123", "123"},
		{"AI Triage for Issue # 42", "42"},
		{"[TEST] fix #7: broken mount", "7"},
	}
	for _, tt := range tests {
		got, ok := IssueNumberFromTitle(tt.title)
		if !ok || got != tt.want {
			t.Errorf("%q: expected %q, got %q ok=%v", tt.title, tt.want, got, ok)
		}
	}
}

func TestIssueNumberFromTitle_NotFound(t *testing.T) {
	if n, ok := IssueNumberFromTitle("no number here"); ok {
		t.Errorf("expected not found, got %q", n)
	}
}

func TestURLFromText(t *testing.T) {
	out := "Creating issue...\nhttps://github.com/okd-project/okd/issues/9\ndone"
	url, ok := URLFromText(out)
	if !ok || url != "https://github.com/okd-project/okd/issues/9" {
		t.Errorf("expected issue URL, got %q ok=%v", url, ok)
	}
}

func TestURLFromText_NotFound(t *testing.T) {
	if url, ok := URLFromText("no links in this output"); ok {
		t.Errorf("expected not found, got %q", url)
	}
}

func TestRepoFromRemote(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"git@github.com:okd-project/okd.git", "okd-project/okd"},
		{"https://github.com/okd-project/okd.git", "okd-project/okd"},
		{"https://github.com/okd-project/okd", "okd-project/okd"},
	}
	for _, tt := range tests {
		got, ok := RepoFromRemote(tt.remote)
		if !ok || got != tt.want {
			t.Errorf("%q: expected %q, got %q ok=%v", tt.remote, tt.want, got, ok)
		}
	}
}

func TestRepoFromRemote_NotFound(t *testing.T) {
	if repo, ok := RepoFromRemote("https://gitlab.com/group/project.git"); ok {
		t.Errorf("expected not found, got %q", repo)
	}
}
