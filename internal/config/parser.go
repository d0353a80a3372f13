// Package config provides configuration parsing for monwidget.
// This file implements the unified parser that auto-detects the configuration format.

package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format names a supported configuration syntax.
type Format string

const (
	// FormatYAML is the primary on-disk format.
	FormatYAML Format = "yaml"
	// FormatTOML is accepted for users who prefer it.
	FormatTOML Format = "toml"
	// FormatLua evaluates a widget.config table.
	FormatLua Format = "lua"
)

// Parser provides a unified interface for parsing widget configuration files.
// It picks YAML, TOML or Lua from the file extension, falling back to content
// sniffing for files without one.
type Parser struct {
	luaParser *LuaConfigParser
}

// NewParser creates a new Parser that can handle every supported format.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{luaParser: luaParser}, nil
}

// ParseFile reads and parses a configuration file.
// The result is not normalized; Load does that.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	format, ok := formatFromExtension(path)
	if !ok {
		format = DetectFormat(content)
	}
	return p.ParseFormat(content, format)
}

// Parse parses configuration content, auto-detecting the format.
func (p *Parser) Parse(content []byte) (*Config, error) {
	return p.ParseFormat(content, DetectFormat(content))
}

// ParseFormat parses content in an explicit format, then expands environment
// references and normalizes the result.
func (p *Parser) ParseFormat(content []byte, format Format) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch format {
	case FormatYAML:
		cfg, err = parseYAML(content)
	case FormatTOML:
		cfg, err = parseTOML(content)
	case FormatLua:
		cfg, err = p.luaParser.Parse(content)
	default:
		return nil, fmt.Errorf("unknown format: %s (expected 'yaml', 'toml' or 'lua')", format)
	}
	if err != nil {
		return nil, err
	}

	ExpandEnvConfig(cfg)
	return cfg, nil
}

// ParseFromFS reads and parses a configuration file from an embedded filesystem.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	format, ok := formatFromExtension(path)
	if !ok {
		format = DetectFormat(content)
	}
	return p.ParseFormat(content, format)
}

// ParseReader parses configuration from an io.Reader in the given format.
func (p *Parser) ParseReader(r io.Reader, format Format) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return p.ParseFormat(content, format)
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}

// luaConfigPattern matches "widget.config" followed by optional whitespace and "="
// at the start of a line (not inside a comment).
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*widget\.config\s*=`)

// tomlTablePattern matches a TOML [table] header line.
var tomlTablePattern = regexp.MustCompile(`(?m)^\s*\[[A-Za-z0-9_.]+\]\s*$`)

// tomlAssignPattern matches a top-level key = value line, which YAML never uses.
var tomlAssignPattern = regexp.MustCompile(`(?m)^\s*[A-Za-z0-9_]+\s*=\s*\S`)

// DetectFormat guesses the syntax of configuration content.
func DetectFormat(content []byte) Format {
	switch {
	case luaConfigPattern.Match(content):
		return FormatLua
	case tomlTablePattern.Match(content), tomlAssignPattern.Match(content):
		return FormatTOML
	default:
		return FormatYAML
	}
}

func formatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".lua":
		return FormatLua, true
	default:
		return "", false
	}
}

// Load parses the file at path and normalizes the result. A missing file
// yields DefaultConfig with no error, so first runs work without setup.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	p, err := NewParser()
	if err != nil {
		return Config{}, err
	}
	defer p.Close()

	cfg, err := p.ParseFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Normalize()
	return *cfg, nil
}
