package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/kenjpais/okd/internal/config"
	"github.com/kenjpais/okd/internal/db"
	"github.com/kenjpais/okd/internal/github"
	"github.com/kenjpais/okd/internal/harness"
	"github.com/kenjpais/okd/internal/scenario"
)

// loadConfig loads the configuration from --config or the default search
// path and validates it.
func loadConfig() (*config.HarnessConfig, error) {
	var (
		cfg *config.HarnessConfig
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newTracker builds the gateway selected by the config: "cli" shells out to
// gh, "api" talks to the REST API with GITHUB_TOKEN.
func newTracker(ctx context.Context, cfg *config.Harness) (harness.Tracker, error) {
	switch cfg.Tracker {
	case "cli":
		return github.NewClient(&github.ExecRunner{}), nil
	case "api":
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("tracker %q requires GITHUB_TOKEN to be set", cfg.Tracker)
		}
		return github.NewAPIClient(ctx, token), nil
	default:
		return nil, fmt.Errorf("unknown tracker %q", cfg.Tracker)
	}
}

// resolveRepo picks the target repository: --repo flag, then config, then
// auto-detection via the git origin remote and gh.
func resolveRepo(ctx context.Context, cfg *config.Harness, tracker harness.Tracker) (string, error) {
	if flagRepo != "" {
		return flagRepo, nil
	}
	if cfg.Repo != "" {
		return cfg.Repo, nil
	}
	if detector, ok := tracker.(interface {
		DetectRepo(ctx context.Context) (string, error)
	}); ok {
		return detector.DetectRepo(ctx)
	}
	return "", fmt.Errorf("no repository configured: set --repo or harness.repo")
}

// loadScenarios reads the catalog: --scenarios flag, then the config's
// scenarios_file, then the embedded defaults.
func loadScenarios(cfg *config.Harness) ([]scenario.Scenario, error) {
	if flagScenarios != "" {
		return scenario.Load(flagScenarios)
	}
	if cfg.ScenariosFile != "" {
		return scenario.Load(cfg.ScenariosFile)
	}
	return scenario.Default()
}

// openHistory opens the history database when one is configured. The
// returned cleanup is safe to call either way.
func openHistory(cfg *config.Harness) (*db.DB, func(), error) {
	if cfg.HistoryDB == "" {
		return nil, func() {}, nil
	}
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, func() { database.Close() }, nil
}
