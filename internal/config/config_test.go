package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable Load reads and points HOME at an empty dir.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"jira.site", "jira.email", "jira.api_token", "assets.workspace_id",
		"filter.project", "filter.issue_types", "filter.exclude_status", "filter.page_size",
		"sync.pace", "http.timeout",
	} {
		t.Setenv(envName(key), "")
	}
	for _, legacy := range legacyEnv {
		t.Setenv(legacy, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.Filter.PageSize)
	assert.Equal(t, DefaultTimeout, cfg.HTTP.Timeout)
	assert.Zero(t, cfg.Sync.Pace)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, `
jira:
  site: https://company.atlassian.net/
  email: bot@company.com
  api_token: secret
assets:
  workspace_id: ws-123
filter:
  project: PREC
  issue_types: [Mission Release, " Task "]
  exclude_status: Done
  page_size: 500
sync:
  pace: 250ms
http:
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "https://company.atlassian.net", cfg.Jira.Site)
	assert.Equal(t, "bot@company.com", cfg.Jira.Email)
	assert.Equal(t, "secret", cfg.Jira.APIToken)
	assert.Equal(t, "ws-123", cfg.Assets.WorkspaceID)
	assert.Equal(t, "PREC", cfg.Filter.Project)
	assert.Equal(t, []string{"Mission Release", "Task"}, cfg.Filter.IssueTypes)
	assert.Equal(t, "Done", cfg.Filter.ExcludeStatus)
	assert.Equal(t, MaxPageSize, cfg.Filter.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Pace)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "jira:\n  site: https://file.atlassian.net\nfilter:\n  project: FILE\n")
	t.Setenv("ASSETLINK_JIRA_SITE", "https://env.atlassian.net")
	t.Setenv("ASSETLINK_FILTER_PROJECT", "ENV")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.atlassian.net", cfg.Jira.Site)
	assert.Equal(t, "ENV", cfg.Filter.Project)
}

func TestLoadLegacyEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JIRA_SITE", "https://legacy.atlassian.net")
	t.Setenv("JIRA_EMAIL", "me@legacy.com")
	t.Setenv("JIRA_API_TOKEN", "tok")
	t.Setenv("ASSETS_WORKSPACE_ID", "ws-legacy")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://legacy.atlassian.net", cfg.Jira.Site)
	assert.Equal(t, "me@legacy.com", cfg.Jira.Email)
	assert.Equal(t, "tok", cfg.Jira.APIToken)
	assert.Equal(t, "ws-legacy", cfg.Assets.WorkspaceID)

	// The prefixed name wins over the legacy one.
	t.Setenv("ASSETLINK_JIRA_API_TOKEN", "new")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Jira.APIToken)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "jira.site not configured")
	assert.Contains(t, msg, "export ASSETLINK_JIRA_API_TOKEN=VALUE")
	assert.Contains(t, msg, "assets.workspace_id not configured")

	cfg := Default()
	cfg.Jira.Site = "company.atlassian.net"
	cfg.Jira.APIToken = "tok"
	cfg.Assets.WorkspaceID = "ws"
	assert.ErrorContains(t, cfg.Validate(), "must be an http(s) URL")
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Jira.APIToken = "secret"
	cfg.Filter.IssueTypes = []string{"Task"}

	red := cfg.Redacted()
	assert.Equal(t, "********", red.Jira.APIToken)
	assert.Equal(t, "secret", cfg.Jira.APIToken)

	red.Filter.IssueTypes[0] = "Bug"
	assert.Equal(t, "Task", cfg.Filter.IssueTypes[0])
}

func TestTemplateLoadsBack(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteTemplateFile(path, false))

	err := WriteTemplateFile(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, WriteTemplateFile(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.Filter.PageSize)
	assert.Equal(t, DefaultTimeout, cfg.HTTP.Timeout)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, Default()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# assetlink configuration."))
	assert.Contains(t, out, "api_token: \"\"")
	assert.Contains(t, out, "page_size: 50")
	assert.Contains(t, out, "timeout: 30s")
}
