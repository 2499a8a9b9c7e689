// =============================================================================
// Vehicle Listing Importer - Detect Command
// =============================================================================
//
// This file defines the 'detect' command. It shows how the importer would
// read a file without importing it: the column mapping, any columns that
// look like combined make/model text, and the required fields still missing.
//
// COMMAND USAGE:
//   lister detect <file> [flags]
//
// A reviewed mapping can be written with --save-mapping and passed back to
// 'lister import --mapping'.
//
// =============================================================================

package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/importer"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/mapping"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/validation"
)

var (
	detectMapping     string
	detectSaveMapping string
	detectSheet       string
	detectApply       bool
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Show the detected column mapping for a file",
	Long: `Detect parses a dealer file and prints the column mapping the importer
would use, the columns that look like combined make/model text, and the
required fields that are still unmapped.

Use --apply to map the suggested combined columns, and --save-mapping to
write the result for later imports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect(NewUI(cmd.OutOrStdout()), args[0])
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	flags := detectCmd.Flags()
	flags.StringVarP(&detectMapping, "mapping", "m", "", "Start from this mapping file instead of auto-detection")
	flags.StringVar(&detectSaveMapping, "save-mapping", "", "Write the mapping to this file")
	flags.StringVar(&detectSheet, "sheet", "", "Worksheet to read from workbook input")
	flags.BoolVar(&detectApply, "apply", false, "Map suggested combined columns")
	flags.Int("sample-size", 0, "Values per column inspected for combined make/model text")
	flags.String("csv-delimiter", "", "CSV delimiter (a character, or tab, pipe, semicolon)")
}

func runDetect(ui *UI, path string) error {
	im, err := importer.New(appConfig, logger)
	if err != nil {
		return err
	}
	registry := im.Registry()

	analysis, err := im.Analyze(path, importer.Options{
		MappingFile:      detectMapping,
		Sheet:            detectSheet,
		ApplySuggestions: detectApply,
	})
	if err != nil {
		return err
	}
	table := analysis.Table

	// =========================================================================
	// COLUMN MAPPING
	// =========================================================================

	title := filepath.Base(path)
	if table.Sheet != "" {
		title += " [" + table.Sheet + "]"
	}
	ui.Header("%s: %d columns, %d rows", title, len(table.Headers), len(table.Rows))

	for _, column := range table.Headers {
		target, ok := analysis.Mapping.Target(column)
		if !ok {
			ui.Faint("  %-28s (not mapped)", column)
			continue
		}
		ui.Line("  %-28s -> %s", column, targetLabel(registry, target))
	}

	// =========================================================================
	// COMBINED COLUMNS
	// =========================================================================

	if len(analysis.Suggestions) > 0 {
		ui.Header("Combined make/model columns")
		for _, s := range analysis.Suggestions {
			combined, _ := registry.CombinedField(s.Target)
			ui.Info("%q: %.0f%% of samples name a known make (%s)",
				s.Column, s.Detection.Confidence*100, strings.Join(s.Detection.DetectedMakes, ", "))
			ui.Faint("    samples: %s", strings.Join(s.Samples, " | "))
			if s.Applied {
				ui.Line("    mapped to %s", combined.Label)
			} else {
				ui.Line("    suggested: %s (%s)", combined.Label, combined.Description)
			}
		}
	}

	// =========================================================================
	// MAPPING CHECKS
	// =========================================================================

	ui.Header("Checks")
	if len(analysis.Missing) == 0 {
		ui.Success("All required fields are mapped")
	} else {
		ui.Error("Required fields not mapped: %s", fieldList(registry, analysis.Missing))
	}
	for _, issue := range analysis.MappingIssues.Errors {
		if issue.Rule == validation.RuleRequiredField {
			continue
		}
		ui.Warning("%s", issue.Message)
	}

	if detectSaveMapping != "" {
		if err := mapping.Save(detectSaveMapping, analysis.Mapping); err != nil {
			return err
		}
		ui.Success("Mapping written to %s", detectSaveMapping)
	}

	if len(analysis.Missing) > 0 {
		return errors.New("mapping is incomplete")
	}
	return nil
}

// targetLabel returns the display label of a mapping target.
func targetLabel(registry *schema.Registry, target schema.Target) string {
	switch t := target.(type) {
	case schema.FieldKey:
		if f, ok := registry.Field(t); ok {
			return f.Label
		}
	case schema.CombinedKey:
		if c, ok := registry.CombinedField(t); ok {
			return c.Label + " (combined)"
		}
	}
	return target.TargetKey()
}
