package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// parseYAML decodes YAML over the defaults so omitted keys keep their
// default values.
func parseYAML(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(content)) == 0 {
		return &cfg, nil
	}
	cfg.SectionOrder = nil
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	restoreOrder(&cfg)
	return &cfg, nil
}

// parseTOML decodes TOML over the defaults and rejects unknown keys.
func parseTOML(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.SectionOrder = nil
	md, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown TOML keys: %v", undecoded)
	}
	restoreOrder(&cfg)
	return &cfg, nil
}

// restoreOrder puts the default section order back when the file omits it.
func restoreOrder(cfg *Config) {
	if len(cfg.SectionOrder) == 0 {
		cfg.SectionOrder = append([]Section(nil), AllSections...)
	}
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg as YAML to path atomically, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
