package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"codemod/internal/errors"
)

// LineCounts breaks a file's lines down by role.
type LineCounts struct {
	Total   int `json:"total"`
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`
}

// FileMetricsReport summarizes one file.
type FileMetricsReport struct {
	File       string     `json:"file"`
	Language   string     `json:"language"`
	Lines      LineCounts `json:"lines"`
	Characters int        `json:"characters"`
	Bytes      int64      `json:"bytes"`
}

// LanguageForFile guesses a language from a file extension.
func LanguageForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".js", ".mjs", ".cjs", ".jsx":
		return "javascript"
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".py", ".pyw":
		return "python"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".kt", ".kts":
		return "kotlin"
	case ".rb":
		return "ruby"
	case ".sh", ".bash":
		return "shell"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".sql":
		return "sql"
	case ".css":
		return "css"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".yml", ".yaml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	default:
		return "unknown"
	}
}

// commentMarkers returns the line-comment prefix for a language and whether
// the language has /* */ block comments.
func commentMarkers(lang string) (string, bool) {
	switch lang {
	case "go", "javascript", "typescript", "tsx", "rust", "java", "kotlin", "c", "cpp":
		return "//", true
	case "python", "ruby", "shell", "yaml", "toml":
		return "#", false
	case "sql":
		return "--", false
	case "css":
		return "", true
	default:
		return "", false
	}
}

// FileMetrics reads one file and reports line, character, and size metrics.
// Files over the policy size cap are refused.
func (a *Analyzer) FileMetrics(file string) (*FileMetricsReport, error) {
	path := a.resolve(file)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file", file)
		}
		return nil, errors.NewIOFailureError("stat file", err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidInputError("file", "metrics need a file, not a directory").
			WithDetails(map[string]interface{}{"path": file})
	}
	if a.policy.TooLarge(info.Size()) {
		return nil, errors.NewInvalidInputError("file", "exceeds the scan size limit").
			WithDetails(map[string]interface{}{
				"sizeBytes":    info.Size(),
				"maxSizeBytes": a.policy.MaxFileSizeBytes,
			})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOFailureError("read file", err)
	}

	lang := LanguageForFile(path)
	report := &FileMetricsReport{
		File:       file,
		Language:   lang,
		Characters: utf8.RuneCount(data),
		Bytes:      int64(len(data)),
	}

	report.Lines = countLines(string(data), lang)

	a.logger.Debug("computed file metrics",
		"file", file,
		"language", lang,
		"lines", report.Lines.Total)

	return report, nil
}

// countLines classifies each line as code, comment, or blank. Only
// whole-line comments count as comments; trailing comments on code lines
// count as code.
func countLines(content, lang string) LineCounts {
	var counts LineCounts
	if content == "" {
		return counts
	}

	marker, hasBlock := commentMarkers(lang)

	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	inBlock := false
	for _, line := range lines {
		counts.Total++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			counts.Blank++
		case inBlock:
			counts.Comment++
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
		case marker != "" && strings.HasPrefix(trimmed, marker):
			counts.Comment++
		case hasBlock && strings.HasPrefix(trimmed, "/*"):
			counts.Comment++
			if !strings.Contains(trimmed[2:], "*/") {
				inBlock = true
			}
		default:
			counts.Code++
		}
	}

	return counts
}
