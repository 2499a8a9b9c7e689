// =============================================================================
// Vehicle Listing Importer - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved by
// viper in this order (highest first):
//   1. Command-line flags bound by the cmd package
//   2. Environment variables prefixed with LISTER_ (csv.delimiter is
//      LISTER_CSV_DELIMITER)
//   3. The config file (config.yaml)
//   4. The defaults registered in SetDefaults
//
// Mapping files and synonym overlays are data, not configuration, and are
// read by the mapping and synonyms packages.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by viper.
const EnvPrefix = "LISTER"

// Output formats understood by the export package.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// OutputFormats lists the accepted output_format values.
var OutputFormats = []string{FormatXML, FormatJSON, FormatYAML, FormatXLSX}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where exported listings and run summaries are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// OutputFormat is one of xml, json, yaml, xlsx.
	// Default: "xml"
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// OutputNameFormat names export files. Placeholders:
	//   {uuid}      - the import ID
	//   {timestamp} - current time (YYYYMMDD_HHMMSS)
	//   {source}    - input file name without extension
	// The extension of the output format is appended when missing.
	// Default: "{source}_{timestamp}"
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// WriteSummary writes a YAML run summary next to each export.
	// Default: true
	WriteSummary bool `mapstructure:"write_summary" yaml:"write_summary"`

	// ArchiveDir receives input files after a successful import. Empty
	// leaves inputs in place.
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`

	// ArchiveByDate files archived inputs under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `mapstructure:"archive_by_date" yaml:"archive_by_date"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat is "console" for humans or "json" for machines.
	// Default: "console"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// =========================================================================
	// MAPPING SETTINGS
	// =========================================================================

	// SampleSize is how many values per column are inspected when looking
	// for combined make/model columns.
	// Default: 10
	SampleSize int `mapstructure:"sample_size" yaml:"sample_size"`

	// SynonymsFile is an optional YAML file of extra column synonyms merged
	// into the built-in dictionary at startup.
	SynonymsFile string `mapstructure:"synonyms_file" yaml:"synonyms_file"`

	// AllowMissingRequired lets an import proceed when required fields are
	// unmapped. The run summary still lists them.
	// Default: false
	AllowMissingRequired bool `mapstructure:"allow_missing_required" yaml:"allow_missing_required"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	CSV  CSVSettings  `mapstructure:"csv" yaml:"csv"`
	XLSX XLSXSettings `mapstructure:"xlsx" yaml:"xlsx"`
}

// =============================================================================
// INPUT SETTINGS STRUCTURES
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter separates fields. Accepts a single character or one of the
	// names "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// HeaderRows is the number of header rows. Multi-row headers are merged
	// column by column with a space.
	// Default: 1
	HeaderRows int `mapstructure:"header_rows" yaml:"header_rows"`

	// DataStartRow is the 1-indexed row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `mapstructure:"data_start_row" yaml:"data_start_row"`
}

// XLSXSettings contains settings for reading workbooks.
type XLSXSettings struct {
	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string `mapstructure:"sheet" yaml:"sheet"`

	// HeaderRow is the 1-indexed row holding column names.
	// Default: 1
	HeaderRow int `mapstructure:"header_row" yaml:"header_row"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// SetDefaults registers every setting with its default so that viper's
// AutomaticEnv can resolve it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "./output")
	v.SetDefault("output_format", FormatXML)
	v.SetDefault("output_name_format", "{source}_{timestamp}")
	v.SetDefault("write_summary", true)
	v.SetDefault("archive_dir", "")
	v.SetDefault("archive_by_date", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("sample_size", 10)
	v.SetDefault("synonyms_file", "")
	v.SetDefault("allow_missing_required", false)
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.header_rows", 1)
	v.SetDefault("csv.data_start_row", 0)
	v.SetDefault("xlsx.sheet", "")
	v.SetDefault("xlsx.header_row", 1)
}

// NewViper returns a viper instance with defaults and environment binding.
// When configPath is empty, config.yaml is searched for in the working
// directory and a missing file is not an error.
func NewViper(configPath string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadConfigFile reads the config file configured on v. A missing file is
// only an error when it was named explicitly.
func ReadConfigFile(v *viper.Viper, explicit bool) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load decodes the settings held by v into a validated MainConfig.
func Load(v *viper.Viper) (*MainConfig, error) {
	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadMainConfig reads configPath (optional) plus the environment.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	v := NewViper(configPath)
	if err := ReadConfigFile(v, configPath != ""); err != nil {
		return nil, err
	}
	return Load(v)
}

// Default returns the configuration used when nothing is set.
func Default() *MainConfig {
	cfg := &MainConfig{WriteSummary: true}
	applyMainConfigDefaults(cfg)
	return cfg
}

// applyMainConfigDefaults sets default values for any unset options. Viper
// defaults cover the normal path; this covers zero values written to the
// config file and structs built in code.
func applyMainConfigDefaults(cfg *MainConfig) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = FormatXML
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{source}_{timestamp}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 10
	}

	// CSV settings defaults.
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.HeaderRows <= 0 {
		cfg.CSV.HeaderRows = 1
	}
	if cfg.CSV.DataStartRow <= 0 {
		cfg.CSV.DataStartRow = cfg.CSV.HeaderRows + 1
	}

	// XLSX settings defaults.
	if cfg.XLSX.HeaderRow <= 0 {
		cfg.XLSX.HeaderRow = 1
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(cfg *MainConfig) error {
	if !IsOutputFormat(cfg.OutputFormat) {
		return fmt.Errorf("output_format %q is not one of %s", cfg.OutputFormat, strings.Join(OutputFormats, ", "))
	}

	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format %q must be console or json", cfg.LogFormat)
	}

	if _, err := cfg.CSV.Comma(); err != nil {
		return err
	}

	if cfg.CSV.DataStartRow <= cfg.CSV.HeaderRows {
		return fmt.Errorf("csv.data_start_row (%d) must come after the header rows (%d)", cfg.CSV.DataStartRow, cfg.CSV.HeaderRows)
	}

	return nil
}

// IsOutputFormat reports whether format is a supported output format.
func IsOutputFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Comma resolves the delimiter to the rune used by encoding/csv.
func (s CSVSettings) Comma() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "", ",", "comma":
		return ',', nil
	case "\\t", "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return 0, fmt.Errorf("csv.delimiter %q must be a single character", s.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("csv.delimiter %q is not allowed", s.Delimiter)
	}
	return r, nil
}
