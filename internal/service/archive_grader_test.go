package service

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/pkg/archive"
)

func newGrader(t *testing.T) ArchiveGrader {
	t.Helper()
	return NewArchiveGrader(archive.NewExtractor(t.TempDir(), zerolog.Nop()), zerolog.Nop())
}

func writeZipFile(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "project.zip")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	writer := zip.NewWriter(out)
	for name, content := range entries {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return path
}

func sourceLines(n int, comments int) string {
	var b strings.Builder
	for i := 0; i < comments; i++ {
		b.WriteString("// explains the next block\n")
	}
	for i := 0; i < n; i++ {
		b.WriteString("console.log('line');\n")
	}
	return b.String()
}

func TestArchiveGraderScoresCompleteProject(t *testing.T) {
	grader := newGrader(t)
	readme := "Install with npm install. Usage: npm start. API: GET /health.\n" +
		strings.Repeat("More detail about the project. ", 8)
	path := writeZipFile(t, t.TempDir(), map[string]string{
		"package.json":      `{"name":"demo","scripts":{"test":"jest"},"dependencies":{"express":"^4.18.2"}}`,
		"README.md":         readme,
		".gitignore":        "node_modules\n",
		"src/index.js":      sourceLines(35, 5),
		"src/util.js":       sourceLines(20, 2),
		"tests/app.test.js": sourceLines(5, 1),
	})

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)

	require.Equal(t, 5.0, result.Rubric.Structure)
	require.Equal(t, 5.0, result.Rubric.CodeQuality)
	require.Equal(t, 15.0, result.Rubric.Functionality)
	require.Equal(t, 5.0, result.Rubric.Documentation)
	require.Equal(t, 30.0, result.Score)
	require.Contains(t, result.Feedback, "Project structure: 5/5")
	require.Contains(t, result.Feedback, "Functionality: 15/15")
}

func TestArchiveGraderScoresMinimalProject(t *testing.T) {
	grader := newGrader(t)
	path := writeZipFile(t, t.TempDir(), map[string]string{
		"main.py": "# entry\nx = 1\nprint(x)\n",
	})

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Rubric.Structure)
	require.Equal(t, 4.0, result.Rubric.CodeQuality)
	require.Equal(t, 5.0, result.Rubric.Functionality)
	require.Equal(t, 0.0, result.Rubric.Documentation)
	require.Equal(t, 9.0, result.Score)
}

func TestArchiveGraderScoresBareArchiveZero(t *testing.T) {
	grader := newGrader(t)
	path := writeZipFile(t, t.TempDir(), map[string]string{
		"notes.txt": "remember to finish the project",
	})

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Score)
	require.Contains(t, result.Feedback, "Project structure: 0/5")
}

func TestArchiveGraderIgnoresBundledDependencies(t *testing.T) {
	grader := newGrader(t)
	path := writeZipFile(t, t.TempDir(), map[string]string{
		"main.js":                            sourceLines(10, 1),
		"node_modules/express/lib/router.js": sourceLines(100, 0),
		"node_modules/express/package.json":  `{"dependencies":{"accepts":"~1.3.8"}}`,
	})

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)

	// The bundled manifest and source earn nothing: no structure credit,
	// no multi-file bonus, no dependency points.
	require.Equal(t, 0.0, result.Rubric.Structure)
	require.Equal(t, 4.0, result.Rubric.CodeQuality)
	require.Equal(t, 5.0, result.Rubric.Functionality)
	require.Equal(t, 9.0, result.Score)
}

func TestArchiveGraderFlagsUnparsableSource(t *testing.T) {
	grader := newGrader(t)
	path := writeZipFile(t, t.TempDir(), map[string]string{
		"main.js": "function broken( {\n",
	})

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Rubric.CodeQuality)
}

func TestArchiveGraderCorruptArchiveScoresZero(t *testing.T) {
	grader := newGrader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0o600))

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Score)
	require.Contains(t, result.Feedback, "could not be extracted")
}

func TestArchiveGraderPDFGetsTokenCredit(t *testing.T) {
	grader := newGrader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o600))

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)
	require.Equal(t, 5.0, result.Score)
	require.Equal(t, 5.0, result.Rubric.Documentation)
	require.Equal(t, 0.0, result.Rubric.Functionality)
}

func TestArchiveGraderUnknownFormatScoresZero(t *testing.T) {
	grader := newGrader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "submission.xyz")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	result, err := grader.Grade(path, 7)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Score)
	require.Contains(t, result.Feedback, "Unsupported file format")
}

func TestArchiveGraderMissingFile(t *testing.T) {
	grader := newGrader(t)

	_, err := grader.Grade(filepath.Join(t.TempDir(), "gone.zip"), 7)
	require.True(t, errors.Is(err, ErrArchiveFileMissing))
}
