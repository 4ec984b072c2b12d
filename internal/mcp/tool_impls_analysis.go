package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codemod/internal/envelope"
	"codemod/internal/patterns"
)

func (s *Server) toolAnalyzeStructure(params map[string]interface{}) (*envelope.Response, error) {
	started := time.Now()
	report, err := s.analyzer.Structure(context.Background(),
		stringParam(params, "path"),
		intParam(params, "maxDepth", 0))
	if err != nil {
		return nil, err
	}

	shown := len(report.Files) + len(report.Directories)
	return envelope.New().
		Data(report).
		WithConfidence(1.0).
		WithProvenance("analyzer", time.Since(started)).
		WithTruncation(report.Truncated, shown, report.Summary.TotalFiles+report.Summary.TotalDirs,
			"entry limit reached; narrow the path or lower maxDepth").
		Build(), nil
}

func (s *Server) toolDetectTechnologies(params map[string]interface{}) (*envelope.Response, error) {
	started := time.Now()
	report, err := s.analyzer.DetectTechnologies(context.Background(), stringParam(params, "path"))
	if err != nil {
		return nil, err
	}

	// Manifest hits are definitive; an extension census alone is a guess.
	// Census entries carry evidence like "*.go files".
	score := 1.0
	var reasons []string
	manifests := 0
	for _, tech := range report.Technologies {
		if !strings.HasSuffix(tech.Evidence, " files") {
			manifests++
		}
	}
	if manifests == 0 && len(report.Technologies) > 0 {
		score = 0.75
		reasons = []string{"no manifests found; detection rests on file extensions alone"}
	}

	return envelope.New().
		Data(report).
		WithConfidence(score, reasons...).
		WithProvenance("analyzer", time.Since(started)).
		Build(), nil
}

func (s *Server) toolGetFileMetrics(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report, err := s.analyzer.FileMetrics(file)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(report).
		WithConfidence(1.0).
		WithProvenance("analyzer", time.Since(started)).
		Build(), nil
}

func (s *Server) toolFindPatterns(params map[string]interface{}) (*envelope.Response, error) {
	query, err := requiredString(params, "query")
	if err != nil {
		return nil, err
	}
	opts := patterns.Options{
		Query:         query,
		Kinds:         stringSliceParam(params, "kinds"),
		Path:          stringParam(params, "path"),
		MaxResults:    intParam(params, "limit", 0),
		CaseSensitive: boolParam(params, "caseSensitive"),
	}

	started := time.Now()
	result, err := s.searcher.Search(context.Background(), opts)
	if err != nil {
		return nil, err
	}

	score, reasons := searchConfidence(result)
	builder := envelope.New().
		Data(result).
		WithConfidence(score, reasons...).
		WithProvenance("patterns", time.Since(started))
	if result.Truncated {
		builder.WarningWithCode("TRUNCATED", "match limit reached before the search finished; narrow the path or raise limit")
	}
	return builder.Build(), nil
}

// searchConfidence grades how the matches were found. Occurrence matches
// and AST-resolved declarations are exact; declarations resolved by line
// scan may include look-alikes.
func searchConfidence(result *patterns.Result) (float64, []string) {
	heuristic := 0
	for _, m := range result.Matches {
		if m.MatchedBy == patterns.MatchedByScan && m.Kind != patterns.KindOccurrence {
			heuristic++
		}
	}
	if heuristic == 0 {
		return 1.0, nil
	}
	return 0.75, []string{fmt.Sprintf("%d of %d declarations resolved by line scan rather than syntax tree", heuristic, len(result.Matches))}
}
