package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the waits and budgets the triage workflow is tuned for.
const (
	DefaultWorkflow        = "Triage New Issue"
	DefaultTracker         = "cli"
	DefaultRunLimit        = 20
	DefaultSettleWait      = 10 * time.Second
	DefaultLabelWait       = 2 * time.Second
	DefaultCommentWait     = 2 * time.Second
	DefaultRunRetries      = 3
	DefaultRunBaseWait     = 10 * time.Second
	DefaultCommentRetries  = 3
	DefaultCommentBaseWait = 3 * time.Second
)

// Load reads and parses a harness configuration from the given YAML file
// path, then applies defaults for anything unset.
func Load(path string) (*HarnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg HarnessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches standard locations and loads the first config found.
// Search order: ./triagecheck.yaml, ~/.triagecheck/config.yaml. When none
// exists, a config of pure defaults is returned.
func LoadDefault() (*HarnessConfig, error) {
	candidates := []string{"triagecheck.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".triagecheck", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &HarnessConfig{}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills unset fields. Zero retry/wait values mean "default",
// not "none" — the harness never polls unbounded either way.
func applyDefaults(cfg *HarnessConfig) {
	h := &cfg.Harness

	if h.Workflow == "" {
		h.Workflow = DefaultWorkflow
	}
	if h.Tracker == "" {
		h.Tracker = DefaultTracker
	}
	if h.RunLimit == 0 {
		h.RunLimit = DefaultRunLimit
	}
	if h.SettleWait == 0 {
		h.SettleWait = Duration(DefaultSettleWait)
	}
	if h.LabelWait == 0 {
		h.LabelWait = Duration(DefaultLabelWait)
	}
	if h.CommentWait == 0 {
		h.CommentWait = Duration(DefaultCommentWait)
	}
	if h.RunRetries == 0 {
		h.RunRetries = DefaultRunRetries
	}
	if h.RunBaseWait == 0 {
		h.RunBaseWait = Duration(DefaultRunBaseWait)
	}
	if h.CommentRetries == 0 {
		h.CommentRetries = DefaultCommentRetries
	}
	if h.CommentBaseWait == 0 {
		h.CommentBaseWait = Duration(DefaultCommentBaseWait)
	}
}
