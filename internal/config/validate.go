package config

import (
	"fmt"
	"strings"
)

var validTrackers = map[string]bool{
	"cli": true,
	"api": true,
}

// Validate checks the configuration for values the harness cannot run with.
func (cfg *HarnessConfig) Validate() error {
	h := cfg.Harness

	if !validTrackers[h.Tracker] {
		return fmt.Errorf("invalid tracker %q: must be cli or api", h.Tracker)
	}
	if h.Repo != "" && !strings.Contains(h.Repo, "/") {
		return fmt.Errorf("invalid repo %q: expected owner/repo", h.Repo)
	}
	if h.Workflow == "" {
		return fmt.Errorf("workflow name must not be empty")
	}
	if h.RunLimit <= 0 {
		return fmt.Errorf("run_limit must be positive, got %d", h.RunLimit)
	}
	if h.RunRetries < 0 || h.CommentRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	if h.RunBaseWait < 0 || h.CommentBaseWait < 0 || h.SettleWait < 0 || h.LabelWait < 0 || h.CommentWait < 0 {
		return fmt.Errorf("wait durations must not be negative")
	}
	return nil
}
