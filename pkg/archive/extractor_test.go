package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "submission.zip")
	file, err := os.Create(path)
	require.NoError(t, err)

	writer := zip.NewWriter(file)
	for name, content := range entries {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	return path
}

func TestExtractorUnpacksZip(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, map[string]string{
		"src/index.js": "console.log('hi')",
		"README.md":    "# project",
	})

	extractor := NewExtractor(dir, zerolog.Nop())
	extraction, release, err := extractor.Extract(path, 42)
	defer release()

	require.NoError(t, err)
	require.Len(t, extraction.Files, 2)
	require.FileExists(t, filepath.Join(extraction.Root, "src", "index.js"))
	require.FileExists(t, filepath.Join(extraction.Root, "README.md"))
}

func TestExtractorSkipsTraversalEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, map[string]string{
		"../escape.txt": "nope",
		"safe.txt":      "ok",
	})

	extractor := NewExtractor(dir, zerolog.Nop())
	extraction, release, err := extractor.Extract(path, 42)
	defer release()

	require.NoError(t, err)
	require.Equal(t, []string{"safe.txt"}, extraction.Files)
	require.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExtractorReleaseRemovesWorkDir(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, map[string]string{"main.go": "package main"})

	extractor := NewExtractor(dir, zerolog.Nop())
	extraction, release, err := extractor.Extract(path, 7)
	require.NoError(t, err)
	require.DirExists(t, extraction.Root)

	release()
	require.NoDirExists(t, extraction.Root)
}

func TestExtractorMissingArchive(t *testing.T) {
	extractor := NewExtractor(t.TempDir(), zerolog.Nop())

	_, release, err := extractor.Extract(filepath.Join(t.TempDir(), "absent.zip"), 1)
	release()

	require.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestExtractorRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	extractor := NewExtractor(dir, zerolog.Nop())
	_, release, err := extractor.Extract(path, 1)
	release()

	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetectFormatByExtension(t *testing.T) {
	require.Equal(t, FormatZip, DetectFormat("sub.zip"))
	require.Equal(t, FormatRAR, DetectFormat("sub.rar"))
	require.Equal(t, FormatPDF, DetectFormat("report.pdf"))
	require.Equal(t, FormatUnknown, DetectFormat("script.sh"))
}
