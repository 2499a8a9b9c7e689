// =============================================================================
// Vehicle Listing Importer - Import Pipeline
// =============================================================================
//
// This module runs one dealer file through the whole pipeline.
//
// IMPORT PIPELINE:
//   1. Parse the input file (CSV or workbook) into a raw table
//   2. Load the column mapping from a file, or auto-detect it from headers
//   3. Look for combined make/model columns and suggest combined targets
//   4. Validate the mapping (missing required fields gate the import)
//   5. Transform rows into normalized vehicle records
//   6. Validate the records (warnings only)
//   7. Group records into listings and apply filters
//   8. Write the export and the run summary
//   9. Archive the input file
//
// CONCURRENCY:
//   An Importer may run several files at once. The synonym dictionary is the
//   only shared mutable state and guards itself; everything else is per call.
//
// =============================================================================

package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/config"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/csvparser"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/export"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/mapping"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/smartsplit"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/synonyms"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/validation"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/xlsxparser"
	"github.com/ginjaninja78/vehicle-listing-importer/pkg/utils"
)

var (
	// ErrUnsupportedInput is returned for input files that are neither CSV
	// nor a workbook.
	ErrUnsupportedInput = errors.New("unsupported input file type")

	// ErrIncompleteMapping is returned when required fields are unmapped and
	// the import was not allowed to proceed without them.
	ErrIncompleteMapping = errors.New("required fields are not mapped")
)

// SuggestedTarget is the combined target proposed for columns that look like
// combined make/model text.
const SuggestedTarget = schema.CombinedMakeModelVariant

// =============================================================================
// OPTIONS AND RESULTS
// =============================================================================

// Options tune a single import. Zero values fall back to the configuration.
type Options struct {
	// MappingFile is a saved column mapping. Empty means auto-detect.
	MappingFile string

	// SaveMapping writes the mapping that was used to this path.
	SaveMapping string

	// Sheet overrides xlsx.sheet for workbook input.
	Sheet string

	// OutputFormat overrides output_format.
	OutputFormat string

	// ApplySuggestions maps unmapped columns that look combined to
	// SuggestedTarget.
	ApplySuggestions bool

	// AllowMissingRequired lets the import proceed with required fields
	// unmapped. ORed with the configuration setting.
	AllowMissingRequired bool

	// Criteria keeps only listings that match every non-empty entry.
	Criteria listing.Criteria

	// Exclude drops listings by ID after filtering.
	Exclude []string

	// DryRun runs the pipeline without writing or archiving anything.
	DryRun bool
}

// Suggestion proposes a combined target for a column.
type Suggestion struct {
	Column    string
	Target    schema.CombinedKey
	Detection smartsplit.Detection
	Samples   []string

	// Applied is true when the suggestion was written into the mapping.
	Applied bool
}

// Analysis is the mapping stage of an import.
type Analysis struct {
	Table         *types.Table
	Mapping       *mapping.ColumnMapping
	Suggestions   []Suggestion
	Missing       []schema.FieldKey
	MappingIssues *validation.ValidationResult
}

// Result represents the outcome of importing a single file.
type Result struct {
	ImportID    string
	SourceFile  string
	Sheet       string
	Mapping     *mapping.ColumnMapping
	Suggestions []Suggestion
	Missing     []schema.FieldKey

	// Report counts what the normalizers did.
	Report vehicle.Report

	Listings []listing.Listing
	Stats    listing.Summary

	// Issues holds mapping issues followed by record issues.
	Issues []*validation.ValidationError

	OutputFile  string
	SummaryFile string
	IssuesFile  string
	ArchivedTo  string

	ProcessingTime time.Duration
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer runs dealer files through the import pipeline.
type Importer struct {
	cfg         *config.MainConfig
	registry    *schema.Registry
	dictionary  *synonyms.Dictionary
	matcher     *mapping.Matcher
	transformer *vehicle.Transformer
	validator   *validation.Validator
	grouper     *listing.Grouper
	files       *utils.FileManager
	logger      zerolog.Logger
}

// New creates an Importer. The synonyms file named in cfg, if any, is merged
// into the built-in dictionary.
func New(cfg *config.MainConfig, logger zerolog.Logger) (*Importer, error) {
	registry := schema.Default()
	dictionary := synonyms.Default()

	if cfg.SynonymsFile != "" {
		added, unknown, err := dictionary.LoadOverlay(cfg.SynonymsFile)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("file", cfg.SynonymsFile).Int("added", added).Msg("loaded synonyms")
		if len(unknown) > 0 {
			logger.Warn().Strs("fields", unknown).Msg("synonyms file names unknown fields")
		}
	}

	files := utils.NewFileManager(cfg.OutputDir, cfg.ArchiveDir)
	files.UseTimestampSubdirs = cfg.ArchiveByDate

	return &Importer{
		cfg:         cfg,
		registry:    registry,
		dictionary:  dictionary,
		matcher:     mapping.NewMatcher(registry, dictionary),
		transformer: vehicle.NewTransformer(),
		validator:   validation.NewValidator(registry),
		grouper:     listing.NewGrouper(registry),
		files:       files,
		logger:      logger,
	}, nil
}

// Registry returns the schema registry used by the importer.
func (im *Importer) Registry() *schema.Registry {
	return im.registry
}

// =============================================================================
// MAPPING STAGE
// =============================================================================

// Analyze parses path and works out its column mapping without importing.
func (im *Importer) Analyze(path string, opts Options) (*Analysis, error) {
	table, err := im.readTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	return im.analyzeTable(table, opts)
}

func (im *Importer) analyzeTable(table *types.Table, opts Options) (*Analysis, error) {
	var (
		m   *mapping.ColumnMapping
		err error
	)
	if opts.MappingFile != "" {
		m, err = mapping.Load(opts.MappingFile, im.registry)
		if err != nil {
			return nil, err
		}
	} else {
		m = im.matcher.AutoDetect(table.Headers)
	}

	analysis := &Analysis{Table: table, Mapping: m}

	for _, column := range smartsplit.AnalyzeColumns(table.Rows, table.Headers, im.cfg.SampleSize) {
		// Make columns always contain makes; combined columns are settled.
		current, mapped := m.Target(column.Column)
		if _, combined := current.(schema.CombinedKey); mapped && (combined || current == schema.Target(schema.Make)) {
			continue
		}

		s := Suggestion{
			Column:    column.Column,
			Target:    SuggestedTarget,
			Detection: column.Detection,
			Samples:   column.Samples,
		}
		if opts.ApplySuggestions && !mapped && opts.MappingFile == "" {
			m.Set(column.Column, SuggestedTarget)
			s.Applied = true
		}
		analysis.Suggestions = append(analysis.Suggestions, s)
	}

	analysis.Missing = mapping.MissingRequired(m, im.registry)
	analysis.MappingIssues = im.validator.ValidateMapping(m, table.Headers)
	return analysis, nil
}

// readTable parses path according to its extension.
func (im *Importer) readTable(path, sheet string) (*types.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return csvparser.Parse(path, im.cfg.CSV)
	case ".xlsx", ".xlsm":
		settings := im.cfg.XLSX
		if sheet != "" {
			settings.Sheet = sheet
		}
		return xlsxparser.Parse(path, settings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, ext)
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run imports one file. When the mapping gate fails the partial Result is
// returned together with ErrIncompleteMapping so callers can show the
// missing fields.
func (im *Importer) Run(path string, opts Options) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		ImportID:   uuid.New().String(),
		SourceFile: path,
	}
	log := im.logger.With().Str("import_id", result.ImportID).Str("file", filepath.Base(path)).Logger()

	format := im.cfg.OutputFormat
	if opts.OutputFormat != "" {
		format = strings.ToLower(opts.OutputFormat)
	}
	if !config.IsOutputFormat(format) {
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	table, err := im.readTable(path, opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	result.Sheet = table.Sheet
	log.Debug().Int("columns", len(table.Headers)).Int("rows", len(table.Rows)).Msg("parsed input")

	// =========================================================================
	// STEP 2: MAPPING
	// =========================================================================

	analysis, err := im.analyzeTable(table, opts)
	if err != nil {
		return nil, err
	}
	result.Mapping = analysis.Mapping
	result.Suggestions = analysis.Suggestions
	result.Missing = analysis.Missing
	result.Issues = append(result.Issues, analysis.MappingIssues.Errors...)

	for _, s := range analysis.Suggestions {
		log.Debug().Str("column", s.Column).Float64("confidence", s.Detection.Confidence).
			Bool("applied", s.Applied).Msg("combined column detected")
	}
	log.Debug().Int("mapped", analysis.Mapping.Len()).Msg("column mapping ready")

	if opts.SaveMapping != "" && !opts.DryRun {
		if err := mapping.Save(opts.SaveMapping, analysis.Mapping); err != nil {
			return nil, err
		}
		log.Info().Str("path", opts.SaveMapping).Msg("saved column mapping")
	}

	// Only unmapped required fields gate the import; mapping warnings are
	// reported but never block it.
	if len(analysis.Missing) > 0 && !opts.AllowMissingRequired && !im.cfg.AllowMissingRequired {
		result.ProcessingTime = time.Since(startTime)
		return result, fmt.Errorf("%w: %s", ErrIncompleteMapping, joinKeys(analysis.Missing))
	}

	// =========================================================================
	// STEP 3: TRANSFORM AND VALIDATE
	// =========================================================================

	records, report := im.transformer.TransformWithReport(table.Rows, analysis.Mapping)
	result.Report = report
	log.Debug().Int("records", len(records)).Int("unresolved_makes", report.UnresolvedMakes).
		Int("mileage_unparsed", report.MileageUnparsed).Msg("transformed rows")

	recordIssues := im.validator.ValidateRecords(records)
	result.Issues = append(result.Issues, recordIssues.Errors...)
	if recordIssues.WarningCount > 0 {
		log.Warn().Int("warnings", recordIssues.WarningCount).Msg("records have validation warnings")
	}

	// =========================================================================
	// STEP 4: GROUP
	// =========================================================================

	listings := im.grouper.Group(records)
	if len(opts.Criteria) > 0 {
		listings = listing.Filter(listings, opts.Criteria)
	}
	if len(opts.Exclude) > 0 {
		listings = listing.Remove(listings, opts.Exclude...)
	}
	result.Listings = listings
	result.Stats = listing.Stats(listings)

	if opts.DryRun {
		result.ProcessingTime = time.Since(startTime)
		log.Info().Int("listings", result.Stats.TotalListings).Int("vehicles", result.Stats.TotalVehicles).Msg("dry run complete")
		return result, nil
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	if err := im.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	doc := export.NewDocument(result.ImportID, filepath.Base(path), listings)
	fileName := utils.GenerateOutputFileName(im.cfg.OutputNameFormat, export.Extension(format), map[string]string{
		"source": utils.SourceName(path),
		"uuid":   result.ImportID,
	})
	// Same-named inputs imported together must not share an output path.
	result.OutputFile, err = im.files.ReserveOutputFile(fileName)
	if err != nil {
		return nil, err
	}

	if err := export.WriteFile(result.OutputFile, format, doc, im.registry); err != nil {
		_ = os.Remove(result.OutputFile)
		return nil, err
	}
	log.Info().Str("output", result.OutputFile).Int("listings", result.Stats.TotalListings).
		Int("vehicles", result.Stats.TotalVehicles).Msg("wrote listings")

	// =========================================================================
	// STEP 6: ARCHIVE, SUMMARY AND ISSUE LOG
	// =========================================================================

	archived, err := im.files.ArchiveInputFile(path)
	if err != nil {
		// The export is already written; a failed archive is not fatal.
		log.Warn().Err(err).Msg("failed to archive input file")
	} else if archived != path {
		result.ArchivedTo = archived
	}

	result.ProcessingTime = time.Since(startTime)

	if im.cfg.WriteSummary {
		result.SummaryFile = utils.SummaryPath(result.OutputFile)
		if err := utils.WriteSummary(im.runSummary(result, format, startTime), result.SummaryFile); err != nil {
			log.Warn().Err(err).Msg("failed to write run summary")
			result.SummaryFile = ""
		}
	}

	if len(result.Issues) > 0 {
		result.IssuesFile = utils.IssuesPath(result.OutputFile)
		if err := validation.WriteErrorLog(result.Issues, result.IssuesFile); err != nil {
			log.Warn().Err(err).Msg("failed to write issue log")
			result.IssuesFile = ""
		}
	}

	return result, nil
}

func (im *Importer) runSummary(result *Result, format string, startTime time.Time) *utils.RunSummary {
	columns := make(map[string]string, result.Mapping.Len())
	result.Mapping.Each(func(column string, target schema.Target) {
		columns[column] = target.TargetKey()
	})

	return &utils.RunSummary{
		ImportID:     result.ImportID,
		Source:       result.SourceFile,
		Sheet:        result.Sheet,
		OutputFile:   result.OutputFile,
		OutputFormat: format,
		ArchivedTo:   result.ArchivedTo,
		StartTime:    startTime,
		EndTime:      startTime.Add(result.ProcessingTime),
		Rows:         result.Report.Rows,
		Mapping:      columns,
		Stats:        result.Stats,
		Issues:       result.Issues,
	}
}

func joinKeys(keys []schema.FieldKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
