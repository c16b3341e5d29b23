// Package config loads assetlink settings from a YAML file and the
// environment using viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. ASSETLINK_JIRA_SITE.
	EnvPrefix = "ASSETLINK"
	// FileName is the config file searched for when no path is given.
	FileName = "assetlink.yaml"

	DefaultPageSize = 50
	MaxPageSize     = 100
	DefaultTimeout  = 30 * time.Second
)

// Config is the effective configuration of one invocation.
type Config struct {
	Jira   JiraConfig   `mapstructure:"jira" yaml:"jira" json:"jira"`
	Assets AssetsConfig `mapstructure:"assets" yaml:"assets" json:"assets"`
	Filter FilterConfig `mapstructure:"filter" yaml:"filter" json:"filter"`
	Sync   SyncConfig   `mapstructure:"sync" yaml:"sync" json:"sync"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http" json:"http"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// JiraConfig holds the site and credentials.
type JiraConfig struct {
	Site     string `mapstructure:"site" yaml:"site" json:"site"`
	Email    string `mapstructure:"email" yaml:"email" json:"email"`
	APIToken string `mapstructure:"api_token" yaml:"api_token" json:"api_token"`
}

// AssetsConfig selects the Assets workspace.
type AssetsConfig struct {
	WorkspaceID string `mapstructure:"workspace_id" yaml:"workspace_id" json:"workspace_id"`
}

// FilterConfig selects the issues scanned by sync.
type FilterConfig struct {
	Project       string   `mapstructure:"project" yaml:"project" json:"project"`
	IssueTypes    []string `mapstructure:"issue_types" yaml:"issue_types" json:"issue_types"`
	ExcludeStatus string   `mapstructure:"exclude_status" yaml:"exclude_status" json:"exclude_status"`
	PageSize      int      `mapstructure:"page_size" yaml:"page_size" json:"page_size"`
}

// SyncConfig tunes the sync loop.
type SyncConfig struct {
	Pace time.Duration `mapstructure:"pace" yaml:"pace" json:"pace"`
}

// HTTPConfig tunes the API clients.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// legacyEnv maps keys to the environment names the older link script read.
var legacyEnv = map[string]string{
	"jira.site":           "JIRA_SITE",
	"jira.email":          "JIRA_EMAIL",
	"jira.api_token":      "JIRA_API_TOKEN",
	"assets.workspace_id": "ASSETS_WORKSPACE_ID",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Filter: FilterConfig{PageSize: DefaultPageSize},
		HTTP:   HTTPConfig{Timeout: DefaultTimeout},
	}
}

// Load reads configuration. An explicit path must exist; otherwise
// assetlink.yaml is looked up in the working directory and then in
// $HOME/.config/assetlink, and a missing file is not an error.
// ASSETLINK_* variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "assetlink"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, envName(key), legacy); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.normalize()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("jira.site", "")
	v.SetDefault("jira.email", "")
	v.SetDefault("jira.api_token", "")
	v.SetDefault("assets.workspace_id", "")
	v.SetDefault("filter.project", "")
	v.SetDefault("filter.issue_types", []string{})
	v.SetDefault("filter.exclude_status", "")
	v.SetDefault("filter.page_size", d.Filter.PageSize)
	v.SetDefault("sync.pace", time.Duration(0))
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

func (c *Config) normalize() {
	c.Jira.Site = strings.TrimSuffix(strings.TrimSpace(c.Jira.Site), "/")
	if c.Filter.PageSize <= 0 {
		c.Filter.PageSize = DefaultPageSize
	}
	if c.Filter.PageSize > MaxPageSize {
		c.Filter.PageSize = MaxPageSize
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	var types []string
	for _, t := range c.Filter.IssueTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	c.Filter.IssueTypes = types
}

// envName returns the ASSETLINK_* variable for key.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate reports every missing setting needed to talk to Jira and Assets.
func (c *Config) Validate() error {
	var errs []error
	require := func(key, value string) {
		if value != "" {
			return
		}
		hint := fmt.Sprintf("Set %s in %s", key, FileName)
		hint += fmt.Sprintf("\nOr: export %s=VALUE", envName(key))
		errs = append(errs, fmt.Errorf("%s not configured\n%s", key, hint))
	}
	require("jira.site", c.Jira.Site)
	require("jira.api_token", c.Jira.APIToken)
	require("assets.workspace_id", c.Assets.WorkspaceID)

	if c.Jira.Site != "" && !strings.HasPrefix(c.Jira.Site, "https://") && !strings.HasPrefix(c.Jira.Site, "http://") {
		errs = append(errs, fmt.Errorf("jira.site %q must be an http(s) URL", c.Jira.Site))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.Filter.IssueTypes = append([]string(nil), c.Filter.IssueTypes...)
	if out.Jira.APIToken != "" {
		out.Jira.APIToken = "********"
	}
	return &out
}
