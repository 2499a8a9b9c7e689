// =============================================================================
// Vehicle Listing Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (lister)
//   ├── importCmd  (lister import)
//   ├── detectCmd  (lister detect)
//   ├── previewCmd (lister preview)
//   └── versionCmd (lister version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level, ...)
//   2. Loading .env and the configuration through viper
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/logging"
	"github.com/ginjaninja78/vehicle-listing-importer/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

var (
	// cfgFile is the path to the configuration file. Empty searches for
	// config.yaml in the working directory.
	cfgFile string

	// verbose forces debug logging.
	verbose bool

	// noColor disables colored output.
	noColor bool

	// appConfig and logger are set by initConfig before any command runs.
	appConfig *config.MainConfig
	logger    zerolog.Logger
)

// flagKeys binds command-line flags to configuration keys. Only flags the
// running command defines are bound.
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"log-format":    "log_format",
	"output":        "output_dir",
	"format":        "output_format",
	"synonyms":      "synonyms_file",
	"sample-size":   "sample_size",
	"archive":       "archive_dir",
	"allow-missing": "allow_missing_required",
	"csv-delimiter": "csv.delimiter",
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "lister",
	Short: "Vehicle Listing Importer - turn dealer stock sheets into grouped listings",
	Long: `Vehicle Listing Importer reads dealer inventory exports (CSV or Excel),
maps their columns onto a standard vehicle schema, splits combined
"make model variant" text, normalizes years and mileage, and groups
identical vehicles into listings.

Key Features:
  - Column auto-detection from a synonym dictionary
  - Detection and splitting of combined make/model columns
  - Grouping by make, model, year and color
  - Export to XML, JSON, YAML or XLSX with a run summary

Example Usage:
  lister detect stock.xlsx                  # Show the detected column mapping
  lister import stock.csv                   # Import one file
  lister import ./incoming --format json    # Import every file in a directory
  lister preview stock.csv --filter make=Kia`,

	SilenceUsage:      true,
	PersistentPreRunE: initConfig,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Path to the configuration file (default is ./config.yaml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console or json")
	flags.String("synonyms", "", "YAML file of extra column synonyms")
}

// initConfig loads .env, the config file, environment and flags, then sets
// up logging.
func initConfig(cmd *cobra.Command, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := config.NewViper(cfgFile)
	if err := config.ReadConfigFile(v, cfgFile != ""); err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	appConfig = cfg

	if noColor {
		color.NoColor = true
	}

	logger = logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	if used := v.ConfigFileUsed(); used != "" && utils.FileExists(used) {
		logger.Debug().Str("path", used).Msg("using config file")
	}

	return nil
}
