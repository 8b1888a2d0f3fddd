package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/pkg/archive"
)

// ErrArchiveFileMissing indicates the stored archive is gone from disk.
var ErrArchiveFileMissing = errors.New("archive file missing")

// rubricMaxScore is the total an auto-graded archive can earn.
const rubricMaxScore = 30

var sourceExtensions = map[string]struct{}{
	".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {},
	".py": {}, ".go": {}, ".java": {}, ".c": {}, ".cpp": {}, ".h": {},
	".html": {}, ".htm": {}, ".css": {}, ".php": {}, ".rb": {}, ".rs": {},
}

var frameworkDependencies = []string{
	"express", "react", "next", "vue", "angular", "svelte",
	"fiber", "gin", "echo", "flask", "django", "fastapi", "rails", "spring",
}

// RubricResult is the outcome of auto-grading one archive.
type RubricResult struct {
	Rubric   models.RubricBreakdown
	Score    float64
	Feedback string
}

// ArchiveGrader evaluates a submitted archive against the fixed rubric:
// structure 5, code quality 5, functionality 15, documentation 5, capped
// at 30. Malformed archives degrade to a zero score instead of failing;
// only a missing file is an error.
type ArchiveGrader interface {
	Grade(path string, studentID uint) (RubricResult, error)
}

type archiveGrader struct {
	extractor *archive.Extractor
	logger    zerolog.Logger
}

// NewArchiveGrader constructs an ArchiveGrader backed by the extractor.
func NewArchiveGrader(extractor *archive.Extractor, logger zerolog.Logger) ArchiveGrader {
	return &archiveGrader{
		extractor: extractor,
		logger:    logger.With().Str("component", "archive_grader").Logger(),
	}
}

func (g *archiveGrader) Grade(path string, studentID uint) (RubricResult, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return RubricResult{}, ErrArchiveFileMissing
		}
		return RubricResult{}, err
	}

	switch archive.DetectFormat(path) {
	case archive.FormatZip, archive.FormatRAR:
		return g.gradeExtractable(path, studentID), nil
	case archive.FormatPDF:
		// A PDF is a report, not a project: fixed token credit.
		return RubricResult{
			Rubric:   models.RubricBreakdown{Documentation: 5},
			Score:    5,
			Feedback: "PDF report received. Submit a zip or rar archive of the project for full grading.",
		}, nil
	default:
		return RubricResult{
			Feedback: "Unsupported file format. Submit a zip or rar archive of the project.",
		}, nil
	}
}

func (g *archiveGrader) gradeExtractable(path string, studentID uint) RubricResult {
	extraction, release, err := g.extractor.Extract(path, studentID)
	defer release()
	if err != nil {
		g.logger.Warn().Err(err).Str("path", path).Msg("archive extraction failed, grading as zero")
		return RubricResult{
			Feedback: "Archive could not be extracted. Check that the file is a valid zip or rar.",
		}
	}

	stats := collectProjectStats(extraction)
	structure := scoreStructure(stats)
	quality := scoreCodeQuality(stats)
	functionality := scoreFunctionality(stats)
	documentation := scoreDocumentation(stats)

	total := structure + quality + functionality + documentation
	if total > rubricMaxScore {
		total = rubricMaxScore
	}

	rubric := models.RubricBreakdown{
		Structure:     float64(structure),
		CodeQuality:   float64(quality),
		Functionality: float64(functionality),
		Documentation: float64(documentation),
	}

	feedback := strings.Join([]string{
		fmt.Sprintf("Project structure: %d/5", structure),
		fmt.Sprintf("Code quality: %d/5", quality),
		fmt.Sprintf("Functionality: %d/15", functionality),
		fmt.Sprintf("Documentation: %d/5", documentation),
	}, "\n")

	return RubricResult{Rubric: rubric, Score: float64(total), Feedback: feedback}
}

type projectStats struct {
	sourceFiles     int
	commentLines    int
	unbalancedFiles int
	hasEntryPoint   bool
	hasSourceDir    bool
	hasTestDir      bool
	hasIgnoreFile   bool
	hasReadme       bool
	readmeLength    int
	readmeLower     string
	manifest        manifestInfo
}

type manifestInfo struct {
	present       bool
	hasTestScript bool
	hasDeps       bool
	hasFramework  bool
}

func collectProjectStats(extraction archive.Extraction) projectStats {
	var stats projectStats

	for _, name := range extraction.Files {
		lower := strings.ToLower(name)

		// Bundled dependency trees and VCS metadata say nothing about the
		// student's own work.
		if strings.Contains(lower, "node_modules/") || strings.Contains(lower, ".git/") || strings.HasSuffix(lower, ".exe") {
			continue
		}

		for _, dir := range strings.Split(filepath.Dir(lower), "/") {
			switch dir {
			case "src", "lib", "app":
				stats.hasSourceDir = true
			case "test", "tests", "__tests__", "spec":
				stats.hasTestDir = true
			}
		}

		base := filepath.Base(lower)
		switch base {
		case ".gitignore", ".dockerignore":
			stats.hasIgnoreFile = true
			continue
		case "package.json", "go.mod", "requirements.txt":
			inspectManifest(&stats.manifest, base, readEntry(extraction, name))
			continue
		}
		if strings.HasPrefix(base, "readme") {
			stats.hasReadme = true
			content := strings.TrimSpace(readEntry(extraction, name))
			stats.readmeLength = len(content)
			stats.readmeLower = strings.ToLower(content)
			continue
		}

		ext := filepath.Ext(lower)
		if _, ok := sourceExtensions[ext]; !ok {
			continue
		}

		stats.sourceFiles++
		switch base {
		case "main.go", "main.py", "main.js", "main.c", "main.cpp", "index.js", "index.html", "index.php", "app.js", "app.py":
			stats.hasEntryPoint = true
		}

		content := readEntry(extraction, name)
		if !delimitersBalanced(content) {
			stats.unbalancedFiles++
		}
		for _, line := range strings.Split(content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "<!--") {
				stats.commentLines++
			}
		}
	}

	return stats
}

func readEntry(extraction archive.Extraction, name string) string {
	content, err := os.ReadFile(filepath.Join(extraction.Root, filepath.FromSlash(name)))
	if err != nil {
		return ""
	}
	return string(content)
}

func inspectManifest(info *manifestInfo, base, content string) {
	info.present = true

	switch base {
	case "package.json":
		var manifest struct {
			Scripts         map[string]string `json:"scripts"`
			Dependencies    map[string]string `json:"dependencies"`
			DevDependencies map[string]string `json:"devDependencies"`
		}
		if err := json.Unmarshal([]byte(content), &manifest); err != nil {
			return
		}
		if _, ok := manifest.Scripts["test"]; ok {
			info.hasTestScript = true
		}
		for name := range manifest.Dependencies {
			info.hasDeps = true
			if isFrameworkDependency(name) {
				info.hasFramework = true
			}
		}
		if len(manifest.DevDependencies) > 0 {
			info.hasDeps = true
		}
	case "go.mod":
		if strings.Contains(content, "require") {
			info.hasDeps = true
		}
		if isFrameworkDependency(content) {
			info.hasFramework = true
		}
	case "requirements.txt":
		for _, line := range strings.Split(content, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			info.hasDeps = true
			if isFrameworkDependency(trimmed) {
				info.hasFramework = true
			}
		}
	}
}

func isFrameworkDependency(name string) bool {
	lower := strings.ToLower(name)
	for _, framework := range frameworkDependencies {
		if strings.Contains(lower, framework) {
			return true
		}
	}
	return false
}

// delimitersBalanced is a cheap loadability probe: a file whose braces,
// brackets, or parens do not pair up will not parse in any of the graded
// languages.
func delimitersBalanced(content string) bool {
	var braces, brackets, parens int
	for _, r := range content {
		switch r {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		case '(':
			parens++
		case ')':
			parens--
		}
	}
	return braces == 0 && brackets == 0 && parens == 0
}

func scoreStructure(stats projectStats) int {
	score := 0
	if stats.manifest.present {
		score++
	}
	if stats.hasReadme {
		score++
	}
	if stats.hasSourceDir {
		score++
	}
	if stats.hasTestDir {
		score++
	}
	if stats.hasIgnoreFile {
		score++
	}
	return score
}

func scoreCodeQuality(stats projectStats) int {
	score := 0
	if stats.sourceFiles > 0 {
		score++
	}
	if stats.commentLines > 0 {
		score++
	}
	if stats.sourceFiles > 0 && stats.unbalancedFiles == 0 {
		score += 2
	}
	if stats.sourceFiles > 1 {
		score++
	}
	return score
}

func scoreFunctionality(stats projectStats) int {
	score := 0
	if stats.manifest.hasTestScript {
		score += 5
	}
	if stats.hasEntryPoint {
		score += 5
	}
	if stats.manifest.hasDeps {
		score += 3
	}
	if stats.manifest.hasFramework {
		score += 2
	}
	return score
}

func scoreDocumentation(stats projectStats) int {
	if !stats.hasReadme {
		return 0
	}
	score := 0
	switch {
	case stats.readmeLength >= 200:
		score += 2
	case stats.readmeLength >= 50:
		score++
	}
	for _, keyword := range []string{"install", "usage", "api"} {
		if strings.Contains(stats.readmeLower, keyword) {
			score++
		}
	}
	return score
}
