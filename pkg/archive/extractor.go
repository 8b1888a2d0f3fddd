// Package archive extracts student-submitted zip and rar archives into
// throwaway working directories for rubric evaluation.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nwaples/rardecode/v2"
	"github.com/rs/zerolog"
)

const (
	defaultMaxEntrySize = 10 << 20  // 10 MiB per file
	defaultMaxTotalSize = 100 << 20 // 100 MiB per archive
	defaultMaxEntries   = 2000
)

// Format is the detected archive container format.
type Format string

const (
	FormatZip     Format = "zip"
	FormatRAR     Format = "rar"
	FormatPDF     Format = "pdf"
	FormatUnknown Format = "unknown"
)

var (
	// ErrArchiveNotFound indicates the archive file is missing on disk.
	ErrArchiveNotFound = errors.New("archive file not found")
	// ErrUnsupportedFormat indicates the file is not a zip or rar archive.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrArchiveTooLarge indicates the archive exceeds the extraction limits.
	ErrArchiveTooLarge = errors.New("archive exceeds extraction limits")
)

// Extraction describes an archive unpacked into a working directory.
type Extraction struct {
	Root  string
	Files []string
	Size  int64
}

// Extractor unpacks archives under a configured working root.
type Extractor struct {
	workRoot     string
	maxEntrySize int64
	maxTotalSize int64
	maxEntries   int
	logger       zerolog.Logger
	now          func() time.Time
}

// NewExtractor creates an extractor rooted at workRoot. An empty workRoot
// falls back to the system temp directory.
func NewExtractor(workRoot string, logger zerolog.Logger) *Extractor {
	if workRoot == "" {
		workRoot = os.TempDir()
	}

	return &Extractor{
		workRoot:     workRoot,
		maxEntrySize: defaultMaxEntrySize,
		maxTotalSize: defaultMaxTotalSize,
		maxEntries:   defaultMaxEntries,
		logger:       logger.With().Str("component", "archive_extractor").Logger(),
		now:          time.Now,
	}
}

// DetectFormat sniffs the file's content type, falling back to the file
// extension when the content is ambiguous.
func DetectFormat(path string) Format {
	if kind, err := mimetype.DetectFile(path); err == nil {
		switch {
		case kind.Is("application/zip"):
			return FormatZip
		case kind.Is("application/x-rar-compressed"), kind.Is("application/x-rar"):
			return FormatRAR
		case kind.Is("application/pdf"):
			return FormatPDF
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatZip
	case ".rar":
		return FormatRAR
	case ".pdf":
		return FormatPDF
	}

	return FormatUnknown
}

// Extract unpacks the archive into a fresh working directory and returns the
// extraction together with a release func that removes the directory. The
// release func is non-nil even on error, so callers can defer it
// unconditionally.
func (e *Extractor) Extract(path string, studentID uint) (Extraction, func(), error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Extraction{}, func() {}, ErrArchiveNotFound
		}
		return Extraction{}, func() {}, err
	}

	dest := filepath.Join(e.workRoot, fmt.Sprintf("%d-%d", studentID, e.now().Unix()))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return Extraction{}, func() {}, fmt.Errorf("create extraction dir: %w", err)
	}

	release := func() {
		if err := os.RemoveAll(dest); err != nil {
			e.logger.Warn().Err(err).Str("dir", dest).Msg("failed to remove extraction dir")
		}
	}

	var (
		extraction Extraction
		err        error
	)

	switch DetectFormat(path) {
	case FormatZip:
		extraction, err = e.extractZip(path, dest)
	case FormatRAR:
		extraction, err = e.extractRAR(path, dest)
	default:
		err = ErrUnsupportedFormat
	}

	if err != nil {
		release()
		return Extraction{}, func() {}, err
	}

	extraction.Root = dest

	return extraction, release, nil
}

func (e *Extractor) extractZip(path, dest string) (Extraction, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("open zip: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var extraction Extraction
	for _, entry := range reader.File {
		if len(extraction.Files) >= e.maxEntries {
			return Extraction{}, ErrArchiveTooLarge
		}

		target, ok := e.safeTarget(dest, entry.Name)
		if !ok {
			e.logger.Warn().Str("entry", entry.Name).Msg("skipping unsafe zip entry")
			continue
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return Extraction{}, err
			}
			continue
		}
		if entry.Mode()&os.ModeSymlink != 0 {
			e.logger.Warn().Str("entry", entry.Name).Msg("skipping symlink zip entry")
			continue
		}
		if int64(entry.UncompressedSize64) > e.maxEntrySize {
			return Extraction{}, ErrArchiveTooLarge
		}

		src, err := entry.Open()
		if err != nil {
			return Extraction{}, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}

		written, err := e.writeEntry(target, src, extraction.Size)
		_ = src.Close()
		if err != nil {
			return Extraction{}, err
		}

		extraction.Size += written
		extraction.Files = append(extraction.Files, filepath.ToSlash(entry.Name))
	}

	return extraction, nil
}

func (e *Extractor) extractRAR(path, dest string) (Extraction, error) {
	reader, err := rardecode.OpenReader(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("open rar: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var extraction Extraction
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Extraction{}, fmt.Errorf("read rar entry: %w", err)
		}

		if len(extraction.Files) >= e.maxEntries {
			return Extraction{}, ErrArchiveTooLarge
		}

		target, ok := e.safeTarget(dest, header.Name)
		if !ok {
			e.logger.Warn().Str("entry", header.Name).Msg("skipping unsafe rar entry")
			continue
		}

		if header.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return Extraction{}, err
			}
			continue
		}
		if header.UnPackedSize > e.maxEntrySize {
			return Extraction{}, ErrArchiveTooLarge
		}

		written, err := e.writeEntry(target, reader, extraction.Size)
		if err != nil {
			return Extraction{}, err
		}

		extraction.Size += written
		extraction.Files = append(extraction.Files, filepath.ToSlash(header.Name))
	}

	return extraction, nil
}

// safeTarget resolves an entry name inside dest, rejecting absolute paths
// and traversal outside the extraction root.
func (e *Extractor) safeTarget(dest, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", false
	}

	target := filepath.Join(dest, cleaned)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", false
	}

	return target, true
}

func (e *Extractor) writeEntry(target string, src io.Reader, written int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	remaining := e.maxTotalSize - written
	if remaining <= 0 {
		return 0, ErrArchiveTooLarge
	}

	n, err := io.Copy(out, io.LimitReader(src, remaining+1))
	if err != nil {
		return n, err
	}
	if n > remaining || n > e.maxEntrySize {
		return n, ErrArchiveTooLarge
	}

	return n, nil
}
