// Package mcp implements a Model Context Protocol server over stdio that
// exposes the change engine, workspace analyzers, and pattern search as
// tools. One server instance serves one workspace. Protocol frames own
// stdout; every log line goes to the injected logger.
package mcp

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codemod/internal/analyzer"
	"codemod/internal/changes"
	"codemod/internal/config"
	"codemod/internal/journal"
	"codemod/internal/paths"
	"codemod/internal/patterns"
)

// Server handles MCP communication over stdin/stdout.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string

	workspace string
	cfg       *config.Config

	stager   *changes.Stager
	applier  *changes.Applier
	journal  *journal.Store
	analyzer *analyzer.Analyzer
	searcher *patterns.Searcher

	tools map[string]ToolHandler
}

// NewServer wires the change engine and analysis components for a single
// workspace root. store may be nil, in which case journaling is skipped.
func NewServer(version, workspace string, cfg *config.Config, store *journal.Store, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	stager := changes.NewStager(changes.StagerOptions{
		BackupsEnabled: cfg.Backup.Enabled,
		BackupDir:      cfg.Backup.Dir,
	}, logger)
	policy := loadScanPolicy(workspace, cfg, logger)

	s := &Server{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		logger:    logger,
		version:   version,
		workspace: workspace,
		cfg:       cfg,
		stager:    stager,
		applier:   changes.NewApplier(stager, logger),
		journal:   store,
		analyzer:  analyzer.New(workspace, policy, logger),
		searcher:  patterns.NewSearcher(workspace, policy, logger),
		tools:     make(map[string]ToolHandler),
	}
	s.RegisterTools()
	return s
}

// loadScanPolicy reads the workspace scan policy. A broken policy file is
// reported and replaced by the defaults rather than aborting startup. When
// no policy file exists, the configured size cap still applies.
func loadScanPolicy(workspace string, cfg *config.Config, logger *slog.Logger) *analyzer.Policy {
	policyPath := cfg.Scan.PolicyPath
	if policyPath != "" && !filepath.IsAbs(policyPath) {
		policyPath = paths.JoinWorkspacePath(workspace, policyPath)
	}

	policy, err := analyzer.LoadPolicy(policyPath)
	if err != nil {
		logger.Warn("scan policy rejected, falling back to defaults",
			"path", policyPath,
			"error", err)
		policy = analyzer.DefaultPolicy()
	}
	if _, statErr := os.Stat(policyPath); statErr != nil && cfg.Scan.MaxFileSizeBytes > 0 {
		policy.MaxFileSizeBytes = int64(cfg.Scan.MaxFileSizeBytes)
	}
	return policy
}

// Start runs the server loop, reading messages from stdin and writing
// responses to stdout. It returns nil when the client closes the stream
// and an error when the transport itself fails. Unparseable frames are
// logged and skipped.
func (s *Server) Start() error {
	s.logger.Info("mcp server started",
		"version", s.version,
		"workspace", s.workspace,
		"journal", s.journal != nil)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			if errors.Is(err, errMalformedFrame) {
				s.logger.Error("dropping unparseable message", "error", err)
				continue
			}
			s.logger.Error("transport failure", "error", err)
			return err
		}

		response := s.handleMessage(msg)
		if response == nil {
			continue
		}
		if err := s.writeMessage(response); err != nil {
			s.logger.Error("failed to write response",
				"id", response.Id,
				"error", err)
		}
	}
}
