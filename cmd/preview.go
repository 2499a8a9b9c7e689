// =============================================================================
// Vehicle Listing Importer - Preview Command
// =============================================================================
//
// This file defines the 'preview' command. It runs the import pipeline on a
// single file without writing anything and prints the listings it would
// produce, together with the values available for filtering.
//
// COMMAND USAGE:
//   lister preview <file> [--filter field=value]... [--limit N]
//
// =============================================================================

package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/importer"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
)

var (
	previewOpts  importFlags
	previewLimit int
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the listings a file would produce",
	Long: `Preview imports a file in dry-run mode and prints the resulting listings,
the summary statistics, and the distinct values available to --filter.
Nothing is written or archived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(NewUI(cmd.OutOrStdout()), args[0])
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	flags := previewCmd.Flags()
	addPipelineFlags(flags, &previewOpts)
	flags.IntVarP(&previewLimit, "limit", "n", 10, "Number of listings to print (0 prints all)")
}

func runPreview(ui *UI, path string) error {
	im, err := importer.New(appConfig, logger)
	if err != nil {
		return err
	}
	registry := im.Registry()

	previewOpts.dryRun = true
	opts, err := pipelineOptions(previewOpts, registry)
	if err != nil {
		return err
	}

	result, err := im.Run(path, opts)
	if err != nil {
		if errors.Is(err, importer.ErrIncompleteMapping) && result != nil {
			printFailure(ui, registry, fileResult{path: path, result: result, err: err})
			return errors.New("mapping is incomplete")
		}
		return err
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	ui.Header("Summary")
	ui.Line("Rows:                %d", result.Report.Rows)
	ui.Line("Listings:            %d", result.Stats.TotalListings)
	ui.Line("Vehicles:            %d", result.Stats.TotalVehicles)
	ui.Line("Vehicles/listing:    %.2f", result.Stats.AvgVehiclesPerListing)
	ui.Line("Makes:               %d", result.Stats.UniqueMakes)
	if result.Report.CombinedValues > 0 {
		ui.Line("Split combined text: %d", result.Report.CombinedValues)
	}
	if result.Report.MileageScaled > 0 {
		ui.Line("Mileage scaled:      %d", result.Report.MileageScaled)
	}

	// =========================================================================
	// FILTER OPTIONS
	// =========================================================================

	ui.Header("Filter values")
	options := listing.FilterOptions(result.Listings)
	for _, key := range listing.OptionKeys {
		values := options[key]
		if len(values) == 0 {
			continue
		}
		ui.Line("  %-10s %s", key, strings.Join(values, ", "))
	}

	// =========================================================================
	// LISTINGS
	// =========================================================================

	ui.Header("Listings")
	shown := result.Listings
	if previewLimit > 0 && len(shown) > previewLimit {
		shown = shown[:previewLimit]
	}
	for i := range shown {
		printListing(ui, registry, &shown[i])
	}
	if hidden := len(result.Listings) - len(shown); hidden > 0 {
		ui.Faint("... %d more (use --limit 0 to show all)", hidden)
	}

	if n := len(result.Issues); n > 0 {
		ui.Warning("%d validation issues; run import to write the issue log", n)
	}
	return nil
}

// printListing prints one listing as "id  xN" followed by its listing-level
// fields.
func printListing(ui *UI, registry *schema.Registry, l *listing.Listing) {
	ui.Success("%s  x%d", l.ID, l.Count)
	for _, key := range registry.KeysIn(schema.GroupListing) {
		if v := l.Fields.Get(key); !v.IsEmpty() {
			label := string(key)
			if f, ok := registry.Field(key); ok {
				label = f.Label
			}
			ui.Faint("    %s: %s", label, v)
		}
	}
}
