package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const templateHeader = `# assetlink configuration.
# Every key can be overridden by an ASSETLINK_* environment variable,
# e.g. ASSETLINK_JIRA_API_TOKEN. JIRA_SITE, JIRA_EMAIL, JIRA_API_TOKEN and
# ASSETS_WORKSPACE_ID are also read.
`

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTemplate writes a commented config file holding cfg to w.
func WriteTemplate(w io.Writer, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, templateHeader); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteTemplateFile creates path with a template of the defaults. An
// existing file is only replaced when force is set.
func WriteTemplateFile(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTemplate(f, Default()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
