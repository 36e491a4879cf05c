package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "")
	t.Setenv(EnvSpacesPerLevel, "")
	t.Setenv(EnvCacheTTL, "")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
	if cfg.SpacesPerLevel != 2 || cfg.TabWidth != 2 || cfg.IndentUnitPt != 18 {
		t.Errorf("indentation = %d/%d/%g, want 2/2/18", cfg.SpacesPerLevel, cfg.TabWidth, cfg.IndentUnitPt)
	}
	if cfg.TableStartFont != 12 || cfg.TableMinFont != 8 || cfg.TableSafetyMargin != 0.05 {
		t.Errorf("table = %d/%d/%g", cfg.TableStartFont, cfg.TableMinFont, cfg.TableSafetyMargin)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
}

func TestLoad_MaxFileBytesFromEnv(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "1048576") // 1 MiB

	cfg := Load()

	if cfg.MaxFileSizeBytes != 1_048_576 {
		t.Errorf("MaxFileSizeBytes = %d, want 1048576", cfg.MaxFileSizeBytes)
	}
}

func TestLoad_InvalidMaxFileBytesIgnored(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "not-a-number")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want default %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
}

func TestLoad_ZeroMaxFileBytesIgnored(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "0")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want default %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
}

func TestLoad_IndentationFromEnv(t *testing.T) {
	t.Setenv(EnvSpacesPerLevel, "4")
	t.Setenv(EnvTabWidth, "8")
	t.Setenv(EnvIndentUnitPt, "12.5")

	opts := Load().RichTextOptions()

	if opts.SpacesPerLevel != 4 || opts.TabWidth != 8 || opts.IndentUnitPt != 12.5 {
		t.Errorf("options = %+v", opts)
	}
	if !opts.StripCitations || !opts.Normalize {
		t.Errorf("cleanup defaults lost: %+v", opts)
	}
}

func TestLoad_InvalidIndentationIgnored(t *testing.T) {
	t.Setenv(EnvSpacesPerLevel, "0")
	t.Setenv(EnvTabWidth, "-3")
	t.Setenv(EnvIndentUnitPt, "-1")

	cfg := Load()

	if cfg.SpacesPerLevel != 2 || cfg.TabWidth != 2 || cfg.IndentUnitPt != 18 {
		t.Errorf("indentation = %d/%d/%g, want defaults", cfg.SpacesPerLevel, cfg.TabWidth, cfg.IndentUnitPt)
	}
}

func TestLoad_TableFontsFromEnv(t *testing.T) {
	t.Setenv(EnvTableStartFont, "14")
	t.Setenv(EnvTableMinFont, "6")
	t.Setenv(EnvTableSafetyMargin, "0.1")
	t.Setenv(EnvTableSideMarginEMU, "0")

	cfg := Load()
	opts := cfg.TableFitOptions()

	if opts.StartFont != 14 || opts.MinFont != 6 {
		t.Errorf("fonts = %d/%d", opts.StartFont, opts.MinFont)
	}
	if cfg.TableSafetyMargin != 0.1 || cfg.TableSideMarginEMU != 0 {
		t.Errorf("margins = %g/%v", cfg.TableSafetyMargin, cfg.TableSideMarginEMU)
	}
}

func TestLoad_InvertedTableFontsIgnored(t *testing.T) {
	t.Setenv(EnvTableStartFont, "8")
	t.Setenv(EnvTableMinFont, "10")
	t.Setenv(EnvTableSafetyMargin, "1.5")

	cfg := Load()

	if cfg.TableStartFont != 12 || cfg.TableMinFont != 8 {
		t.Errorf("fonts = %d/%d, want defaults", cfg.TableStartFont, cfg.TableMinFont)
	}
	if cfg.TableSafetyMargin != 0.05 {
		t.Errorf("safety margin = %g, want default", cfg.TableSafetyMargin)
	}
}

func TestLoad_CacheAndLogging(t *testing.T) {
	t.Setenv(EnvCacheTTL, "90s")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "xml")
	t.Setenv(EnvLayoutsFile, " /etc/layouts.json ")

	cfg := Load()

	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text for unknown format", cfg.LogFormat)
	}
	if cfg.LayoutsFile != "/etc/layouts.json" {
		t.Errorf("LayoutsFile = %q", cfg.LayoutsFile)
	}
}

func TestMaxFileSizeMB(t *testing.T) {
	cfg := &Config{MaxFileSizeBytes: 10 << 20} // 10 MiB
	if got := cfg.MaxFileSizeMB(); got != 10 {
		t.Errorf("MaxFileSizeMB() = %d, want 10", got)
	}
}
