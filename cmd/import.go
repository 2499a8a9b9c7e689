// =============================================================================
// Vehicle Listing Importer - Import Command
// =============================================================================
//
// This file defines the 'import' command, the main command of the CLI. It
// runs every input file through the import pipeline and writes the grouped
// listings.
//
// COMMAND USAGE:
//   lister import <file|directory|glob>... [flags]
//
// PROCESSING PIPELINE:
//   1. Expand the arguments into input files
//   2. For each file (concurrently, up to --workers at a time):
//      a. Parse the file
//      b. Detect or load the column mapping
//      c. Transform, validate and group the rows
//      d. Write the export, the run summary and the issue log
//      e. Archive the input file
//   3. Print a summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/importer"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/validation"
	"github.com/ginjaninja78/vehicle-listing-importer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// importFlags holds the flags shared by import and preview.
type importFlags struct {
	mappingFile string
	saveMapping string
	sheet       string
	filters     []string
	exclude     []string
	noSuggest   bool
	dryRun      bool
	workers     int
}

var importOpts importFlags

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import <file|directory|glob>...",
	Short: "Import dealer files and write grouped listings",
	Long: `The import command reads each input file, maps its columns onto the
vehicle schema, and writes the grouped listings in the configured output
format.

Files are imported concurrently. A failure in one file does not stop the
others.

On success:
  - The export is written to the output directory
  - A run summary (.summary.yaml) and, when there are issues, an issue log
    (.issues.log) are written next to it
  - The input is moved to the archive directory, if one is configured

On a missing required field the file is skipped unless --allow-missing is
given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(NewUI(cmd.OutOrStdout()), args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	flags := importCmd.Flags()
	addPipelineFlags(flags, &importOpts)
	flags.StringVar(&importOpts.saveMapping, "save-mapping", "", "Write the column mapping used to this file (single input only)")
	flags.BoolVar(&importOpts.dryRun, "dry-run", false, "Run the pipeline without writing or archiving anything")
	flags.IntVar(&importOpts.workers, "workers", 4, "Number of files imported at once")
	flags.StringP("output", "o", "", "Output directory")
	flags.StringP("format", "f", "", "Output format: xml, json, yaml, xlsx")
	flags.String("archive", "", "Move imported files to this directory")
}

// addPipelineFlags registers the flags that shape a single import.
func addPipelineFlags(flags *pflag.FlagSet, opts *importFlags) {
	flags.StringVarP(&opts.mappingFile, "mapping", "m", "", "Column mapping file (default: auto-detect)")
	flags.StringVar(&opts.sheet, "sheet", "", "Worksheet to read from workbook input")
	flags.StringArrayVar(&opts.filters, "filter", nil, "Keep listings where field=value (repeatable)")
	flags.StringArrayVar(&opts.exclude, "exclude", nil, "Drop a listing by ID (repeatable)")
	flags.BoolVar(&opts.noSuggest, "no-suggest", false, "Do not map detected combined make/model columns")
	flags.Bool("allow-missing", false, "Import even when required fields are unmapped")
	flags.Int("sample-size", 0, "Values per column inspected for combined make/model text")
	flags.String("csv-delimiter", "", "CSV delimiter (a character, or tab, pipe, semicolon)")
}

// pipelineOptions turns flags into importer options.
func pipelineOptions(opts importFlags, registry *schema.Registry) (importer.Options, error) {
	criteria, invalid := listing.ParseCriteria(opts.filters, registry)
	if len(invalid) > 0 {
		return importer.Options{}, fmt.Errorf("invalid --filter %q: expected field=value with a schema field", invalid[0])
	}

	return importer.Options{
		MappingFile:      opts.mappingFile,
		SaveMapping:      opts.saveMapping,
		Sheet:            opts.sheet,
		ApplySuggestions: !opts.noSuggest,
		Criteria:         criteria,
		Exclude:          opts.exclude,
		DryRun:           opts.dryRun,
	}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

type fileResult struct {
	path   string
	result *importer.Result
	err    error
}

func runImport(ui *UI, args []string) error {
	startTime := time.Now()

	files, err := utils.DiscoverInputFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ui.Warning("No input files found.")
		return nil
	}
	if importOpts.saveMapping != "" && len(files) > 1 {
		return errors.New("--save-mapping needs a single input file")
	}

	im, err := importer.New(appConfig, logger)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(importOpts, im.Registry())
	if err != nil {
		return err
	}

	logger.Info().Int("files", len(files)).Str("format", appConfig.OutputFormat).Msg("starting import")

	// =========================================================================
	// PROCESS FILES CONCURRENTLY
	// =========================================================================

	workers := importOpts.workers
	if workers < 1 {
		workers = 1
	}

	progress := NewProgress(len(files))
	results := make([]fileResult, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := im.Run(path, opts)
			results[i] = fileResult{path: path, result: result, err: err}
			progress.Done()
		}(i, file)
	}
	wg.Wait()
	progress.Finish()

	// =========================================================================
	// PRINT RESULTS
	// =========================================================================

	var successCount, errorCount int
	for _, r := range results {
		if r.err != nil {
			errorCount++
			printFailure(ui, im.Registry(), r)
			continue
		}
		successCount++
		printSuccess(ui, im.Registry(), r.result, opts.DryRun)
	}

	ui.Header("Import Complete")
	ui.Line("Total files:     %d", len(files))
	ui.Line("Successful:      %d", successCount)
	ui.Line("Errors:          %d", errorCount)
	ui.Line("Time elapsed:    %s", time.Since(startTime).Round(time.Millisecond))

	if errorCount > 0 {
		return fmt.Errorf("%d of %d files failed", errorCount, len(files))
	}
	return nil
}

func printSuccess(ui *UI, registry *schema.Registry, r *importer.Result, dryRun bool) {
	name := filepath.Base(r.SourceFile)
	if dryRun {
		ui.Success("%s: %d listings, %d vehicles (dry run)", name, r.Stats.TotalListings, r.Stats.TotalVehicles)
	} else {
		ui.Success("%s -> %s (%d listings, %d vehicles)", name, r.OutputFile, r.Stats.TotalListings, r.Stats.TotalVehicles)
	}

	for _, s := range r.Suggestions {
		if s.Applied {
			ui.Info("  %q read as combined make/model text (%.0f%% of samples)", s.Column, s.Detection.Confidence*100)
		}
	}
	if len(r.Missing) > 0 {
		ui.Warning("  imported without required fields: %s", fieldList(registry, r.Missing))
	}
	if n := countSeverity(r.Issues, validation.SeverityWarning); n > 0 {
		if r.IssuesFile != "" {
			ui.Warning("  %d warnings, see %s", n, r.IssuesFile)
		} else {
			ui.Warning("  %d warnings", n)
		}
	}
	if r.ArchivedTo != "" {
		ui.Faint("  archived to %s", r.ArchivedTo)
	}
}

func printFailure(ui *UI, registry *schema.Registry, r fileResult) {
	name := filepath.Base(r.path)
	if errors.Is(r.err, importer.ErrIncompleteMapping) && r.result != nil {
		ui.Error("%s: required fields are not mapped: %s", name, fieldList(registry, r.result.Missing))
		ui.Faint("  map them with --mapping, or pass --allow-missing")
		return
	}
	ui.Error("%s: %v", name, r.err)
}

// fieldList joins the labels of keys, falling back to the raw key.
func fieldList(registry *schema.Registry, keys []schema.FieldKey) string {
	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = string(key)
		if f, ok := registry.Field(key); ok {
			labels[i] = f.Label
		}
	}
	return strings.Join(labels, ", ")
}

func countSeverity(issues []*validation.ValidationError, severity string) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}
