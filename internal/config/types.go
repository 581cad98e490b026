// Package config loads the harness configuration. Every value here is
// threaded explicitly into the components that need it; nothing is read
// from package-level state after loading.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// HarnessConfig is the top-level configuration structure parsed from YAML.
type HarnessConfig struct {
	Harness Harness `yaml:"harness"`
}

// Harness defines one verification run: target repository, workflow under
// test, tracker backend, and all wait/retry budgets.
type Harness struct {
	// Repo is the "owner/repo" slug. Empty means auto-detect from the
	// git origin remote, then from gh.
	Repo string `yaml:"repo"`

	// Workflow is the display name of the triage workflow under test.
	Workflow string `yaml:"workflow"`

	// Tracker selects the gateway backend: "cli" (gh) or "api" (REST).
	Tracker string `yaml:"tracker"`

	// RunLimit is how many recent workflow runs to fetch per poll.
	RunLimit int `yaml:"run_limit"`

	// SettleWait is the flat delay after creating an issue, giving the
	// workflow trigger time to fire.
	SettleWait Duration `yaml:"settle_wait"`

	// LabelWait and CommentWait are flat propagation delays before
	// reading labels and comments.
	LabelWait   Duration `yaml:"label_wait"`
	CommentWait Duration `yaml:"comment_wait"`

	// RunRetries/RunBaseWait bound the workflow-completion poll.
	RunRetries  int      `yaml:"run_retries"`
	RunBaseWait Duration `yaml:"run_base_wait"`

	// CommentRetries/CommentBaseWait bound the assessment-comment poll.
	CommentRetries  int      `yaml:"comment_retries"`
	CommentBaseWait Duration `yaml:"comment_base_wait"`

	// ScenariosFile overrides the embedded scenario catalog.
	ScenariosFile string `yaml:"scenarios_file"`

	// HistoryDB is an optional sqlite path for recording harness events.
	// Empty disables history entirely; a default run persists nothing.
	HistoryDB string `yaml:"history_db"`
}
