package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
)

// Environment variable names.
const (
	EnvMaxFileBytes       = "SLIDESMITH_MAX_FILE_BYTES"
	EnvSpacesPerLevel     = "SLIDESMITH_SPACES_PER_LEVEL"
	EnvTabWidth           = "SLIDESMITH_TAB_WIDTH"
	EnvIndentUnitPt       = "SLIDESMITH_INDENT_UNIT_PT"
	EnvTableStartFont     = "SLIDESMITH_TABLE_START_FONT"
	EnvTableMinFont       = "SLIDESMITH_TABLE_MIN_FONT"
	EnvTableSafetyMargin  = "SLIDESMITH_TABLE_SAFETY_MARGIN"
	EnvTableSideMarginEMU = "SLIDESMITH_TABLE_SIDE_MARGIN_EMU"
	EnvCacheTTL           = "SLIDESMITH_CACHE_TTL"
	EnvLogLevel           = "SLIDESMITH_LOG_LEVEL"
	EnvLogFormat          = "SLIDESMITH_LOG_FORMAT"
	EnvLayoutsFile        = "SLIDESMITH_LAYOUTS_FILE"
)

// Version is the release reported by the server and the CLI.
const Version = "0.1.0"

const (
	// DefaultMaxFileBytes is the default maximum accepted file size (50 MiB).
	DefaultMaxFileBytes int64 = 50 << 20

	// DefaultCacheTTL is how long a compiled deck plan stays cached.
	DefaultCacheTTL = 10 * time.Minute
)

// Config holds runtime configuration sourced from environment variables.
type Config struct {
	MaxFileSizeBytes int64

	SpacesPerLevel int
	TabWidth       int
	IndentUnitPt   float64

	TableStartFont     int
	TableMinFont       int
	TableSafetyMargin  float64
	TableSideMarginEMU geometry.EMU

	CacheTTL time.Duration

	LogLevel  string
	LogFormat string

	// LayoutsFile is an optional JSON layouts file; empty means built-in
	// defaults.
	LayoutsFile string
}

// MaxFileSizeMB returns the configured limit in whole megabytes.
func (c *Config) MaxFileSizeMB() int64 {
	return c.MaxFileSizeBytes >> 20
}

// RichTextOptions returns compiler options for this configuration.
func (c *Config) RichTextOptions() richtext.Options {
	opts := richtext.DefaultOptions()
	opts.SpacesPerLevel = c.SpacesPerLevel
	opts.TabWidth = c.TabWidth
	opts.IndentUnitPt = c.IndentUnitPt
	return opts
}

// TableFitOptions returns table estimator options for this configuration.
func (c *Config) TableFitOptions() geometry.TableFitOptions {
	opts := geometry.DefaultTableFitOptions()
	opts.StartFont = c.TableStartFont
	opts.MinFont = c.TableMinFont
	return opts
}

// Load reads Config from environment variables, falling back to defaults for
// missing or invalid values.
func Load() *Config {
	cfg := &Config{
		MaxFileSizeBytes:   DefaultMaxFileBytes,
		SpacesPerLevel:     richtext.DefaultSpacesPerLevel,
		TabWidth:           richtext.DefaultTabWidth,
		IndentUnitPt:       richtext.DefaultIndentUnitPt,
		TableStartFont:     geometry.DefaultStartFont,
		TableMinFont:       geometry.DefaultMinFont,
		TableSafetyMargin:  geometry.DefaultSafetyMargin,
		TableSideMarginEMU: geometry.DefaultSideMargin,
		CacheTTL:           DefaultCacheTTL,
		LogLevel:           "info",
		LogFormat:          "text",
	}
	if v := os.Getenv(EnvMaxFileBytes); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxFileSizeBytes = n
		}
	}
	cfg.SpacesPerLevel = positiveInt(EnvSpacesPerLevel, cfg.SpacesPerLevel)
	cfg.TabWidth = positiveInt(EnvTabWidth, cfg.TabWidth)
	if v := os.Getenv(EnvIndentUnitPt); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.IndentUnitPt = f
		}
	}

	start := positiveInt(EnvTableStartFont, cfg.TableStartFont)
	minFont := positiveInt(EnvTableMinFont, cfg.TableMinFont)
	if minFont <= start {
		cfg.TableStartFont, cfg.TableMinFont = start, minFont
	}
	if v := os.Getenv(EnvTableSafetyMargin); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f < 1 {
			cfg.TableSafetyMargin = f
		}
	}
	if v := os.Getenv(EnvTableSideMarginEMU); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.TableSideMarginEMU = geometry.EMU(n)
		}
	}

	if v := os.Getenv(EnvCacheTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))); v == "json" || v == "text" {
		cfg.LogFormat = v
	}
	cfg.LayoutsFile = strings.TrimSpace(os.Getenv(EnvLayoutsFile))
	return cfg
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
