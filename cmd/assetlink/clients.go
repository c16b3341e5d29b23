package main

import (
	"github.com/missionrelease/assetlink/internal/assets"
	"github.com/missionrelease/assetlink/internal/atlassian"
	"github.com/missionrelease/assetlink/internal/config"
	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/linker"
)

// loadConfig loads and validates configuration, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}
	if cfg.File != "" {
		debug.Logf("config: using %s\n", cfg.File)
	}
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}
	return cfg
}

// newClients builds the Jira and Assets clients. Each gets its own site
// client so each holds its own in-flight slot.
func newClients(cfg *config.Config) (*jira.Client, *assets.Client) {
	jc := jira.NewClient(atlassian.NewClient(cfg.Jira.Site, cfg.Jira.Email, cfg.Jira.APIToken, "jira", cfg.HTTP.Timeout))
	ac := assets.NewClient(atlassian.NewClient(cfg.Jira.Site, cfg.Jira.Email, cfg.Jira.APIToken, "assets", cfg.HTTP.Timeout), cfg.Assets.WorkspaceID)
	return jc, ac
}

// newEngine wires the linker to the clients and the progress output.
func newEngine(jc *jira.Client, ac *assets.Client, dryRun bool) *linker.Engine {
	engine := linker.NewEngine(jc, ac, jc.Site())
	engine.DryRun = dryRun
	engine.OnMessage = progress
	engine.OnWarning = warning
	return engine
}
