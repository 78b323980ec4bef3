// Package config loads the ocaast configuration file. The file is HCL:
//
//	log_level  = "debug"
//	log_format = "console"
//	database   = "~/.local/share/ocaast/docs.db"
//	indent     = 2
//
//	mcp {
//	  name = "ocaast"
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the decoded configuration. Zero fields are filled from Default.
type Config struct {
	LogLevel  string     `hcl:"log_level,optional"`
	LogFormat string     `hcl:"log_format,optional"`
	Database  string     `hcl:"database,optional"`
	Indent    int        `hcl:"indent,optional"`
	MCP       *MCPConfig `hcl:"mcp,block"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Name    string `hcl:"name,optional"`
	Version string `hcl:"version,optional"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Database:  "ocaast.db",
		Indent:    2,
		MCP:       &MCPConfig{Name: "ocaast", Version: "0.1.0"},
	}
}

// Load reads the HCL file at path. A missing file yields the defaults; an
// empty path also yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(filepath.Base(path), src)
}

// Parse decodes HCL source. filename is used in diagnostics and must end in
// .hcl (or .json for the JSON variant of HCL).
func Parse(filename string, src []byte) (Config, error) {
	var c Config
	if err := hclsimple.Decode(filename, src, nil, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.fill()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) fill() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Indent == 0 {
		c.Indent = d.Indent
	}
	if c.MCP == nil {
		c.MCP = d.MCP
	}
	if c.MCP.Name == "" {
		c.MCP.Name = d.MCP.Name
	}
	if c.MCP.Version == "" {
		c.MCP.Version = d.MCP.Version
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: %q is not console or json", c.LogFormat)
	}
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("indent: %d out of range 0..8", c.Indent)
	}
	return nil
}

// IndentString returns the JSON indent unit.
func (c Config) IndentString() string {
	return strings.Repeat(" ", c.Indent)
}

// NewLogger builds a zap logger writing to stderr.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
