// =============================================================================
// Vehicle Listing Importer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the lister CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   lister import   - Import dealer files and write grouped listings
//   lister detect   - Show the detected column mapping for a file
//   lister preview  - Show the listings a file would produce
//   lister version  - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (schema, mapping, splitting,
//                      normalization, grouping, export)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/vehicle-listing-importer/cmd"
)

func main() {
	cmd.Execute()
}
