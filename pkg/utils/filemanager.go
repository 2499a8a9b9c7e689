// =============================================================================
// Vehicle Listing Importer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the importer, including:
//   - Input discovery (CSV and workbook files, globs)
//   - Input archival after a successful import
//   - Output file naming
//   - Run summary files
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive directory after a successful import
//   - Failed files remain in their original location
//   - Optional date-based subdirectories (archive/2024/01/15/stock.csv)
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/validation"
)

// InputExtensions are the file extensions the importer can read.
var InputExtensions = []string{".csv", ".xlsx", ".xlsm"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the importer.
type FileManager struct {
	// OutputDir is the directory where exports and summaries are written.
	OutputDir string

	// ArchiveDir is the directory for archived input files. Empty disables
	// archival.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
	}
}

// EnsureDirectories creates the output and archive directories if they
// don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles expands command-line arguments into input files.
//
// PARAMETERS:
//   - args: File paths, directories or glob patterns. A directory yields
//     every supported file directly inside it.
//
// RETURNS:
//   - The matched files, deduplicated, in argument order.
//   - An error if a pattern is malformed or an argument matches nothing.
func DiscoverInputFiles(args []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil {
			if !info.IsDir() {
				add(arg)
				continue
			}
			files, err := scanDirectory(arg)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no input files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				add(m)
			}
		}
	}

	return result, nil
}

// scanDirectory lists the supported input files directly inside dir.
func scanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsInputFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// IsInputFile reports whether path has a supported input extension.
func IsInputFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file, or filePath unchanged when archival is
//     disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {source}    - Input file name without extension
//   - extension: Appended when the result does not already end with it.
//   - params: Additional placeholder values, keyed without braces.
//
// EXAMPLE:
//
//	format:    "{source}_{timestamp}"
//	extension: ".xml"
//	params:    {"source": "stock"}
//	output:    "stock_20240115_143022.xml"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}

	return result
}

// maxNameAttempts bounds the numbered suffixes tried by ReserveOutputFile.
const maxNameAttempts = 1000

// ReserveOutputFile creates an empty file named name in the output
// directory and returns its path. When the name is taken it tries
// name_1.ext, name_2.ext and so on. Creation is exclusive, so concurrent
// callers never receive the same path.
//
// RETURNS:
//   - The path of the reserved file.
//   - An error if no free name is found or the file cannot be created.
func (fm *FileManager) ReserveOutputFile(name string) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(fm.OutputDir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f.Close()
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
	}

	return "", fmt.Errorf("no free output file name for %s after %d attempts", name, maxNameAttempts)
}

// SourceName returns the base name of path without its extension.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary describes one import run.
type RunSummary struct {
	ImportID     string                        `yaml:"import_id"`
	Source       string                        `yaml:"source"`
	Sheet        string                        `yaml:"sheet,omitempty"`
	OutputFile   string                        `yaml:"output_file,omitempty"`
	OutputFormat string                        `yaml:"output_format"`
	ArchivedTo   string                        `yaml:"archived_to,omitempty"`
	StartTime    time.Time                     `yaml:"start_time"`
	EndTime      time.Time                     `yaml:"end_time"`
	Duration     string                        `yaml:"duration"`
	Rows         int                           `yaml:"rows"`
	Mapping      map[string]string             `yaml:"mapping"`
	Stats        listing.Summary               `yaml:"stats"`
	Issues       []*validation.ValidationError `yaml:"issues,omitempty"`
}

// WriteSummary writes summary as YAML to path.
//
// RETURNS:
//   - An error if encoding or writing fails.
func WriteSummary(summary *RunSummary, path string) error {
	if summary.Duration == "" && !summary.EndTime.IsZero() {
		summary.Duration = summary.EndTime.Sub(summary.StartTime).String()
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// SummaryPath returns the summary file path for an output file:
// stock_20240115.xml -> stock_20240115.summary.yaml.
func SummaryPath(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".summary.yaml"
}

// IssuesPath returns the issue log path for an output file:
// stock_20240115.xml -> stock_20240115.issues.log.
func IssuesPath(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".issues.log"
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
