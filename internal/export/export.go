// Package export writes grouped listings to XML, JSON, YAML or XLSX.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
)

// ErrUnknownFormat is returned for an output format with no writer.
var ErrUnknownFormat = errors.New("unknown output format")

// Document is everything written for one import.
type Document struct {
	ImportID    string            `json:"import_id" yaml:"import_id"`
	Source      string            `json:"source" yaml:"source"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Stats       listing.Summary   `json:"stats" yaml:"stats"`
	Listings    []listing.Listing `json:"listings" yaml:"listings"`
}

// NewDocument builds a Document and computes its stats.
func NewDocument(importID, source string, listings []listing.Listing) *Document {
	return &Document{
		ImportID:    importID,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Stats:       listing.Stats(listings),
		Listings:    listings,
	}
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	return "." + strings.ToLower(format)
}

// Write encodes doc in format to w. Field order follows registry.
func Write(w io.Writer, format string, doc *Document, registry *schema.Registry) error {
	switch strings.ToLower(format) {
	case config.FormatXML:
		data, err := GenerateXML(doc, registry, DefaultXMLOptions())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case config.FormatJSON:
		return WriteJSON(w, doc)
	case config.FormatYAML:
		return WriteYAML(w, doc)
	case config.FormatXLSX:
		return WriteXLSX(w, doc, registry)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes doc into path, creating parent directories. The file
// is written in full or not at all.
func WriteFile(path, format string, doc *Document, registry *schema.Registry) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, doc, registry); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// orderedKeys returns grouping, listing and vehicle keys in declared order.
func orderedKeys(registry *schema.Registry) (grouping, listingKeys, vehicleKeys []schema.FieldKey) {
	return registry.KeysIn(schema.GroupGrouping),
		registry.KeysIn(schema.GroupListing),
		registry.KeysIn(schema.GroupVehicle)
}
