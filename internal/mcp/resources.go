package mcp

import (
	"encoding/json"

	"codemod/internal/changes"
	cmerrors "codemod/internal/errors"
	"codemod/internal/journal"
)

// recentJournalLimit bounds the codemod://journal/recent payload.
const recentJournalLimit = 20

// Resource describes one readable resource for resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

func (s *Server) handleListResources(params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"resources": []Resource{
			{
				URI:         "codemod://status",
				Name:        "Workspace status",
				Description: "Pending and applied change counts plus journal totals",
				MimeType:    "application/json",
			},
			{
				URI:         "codemod://changes/pending",
				Name:        "Pending changes",
				Description: "Every staged change, grouped by file",
				MimeType:    "application/json",
			},
			{
				URI:         "codemod://journal/recent",
				Name:        "Recent journal events",
				Description: "The most recent entries of the persistent change journal",
				MimeType:    "application/json",
			},
		},
	}, nil
}

func (s *Server) handleReadResource(params map[string]interface{}) (interface{}, error) {
	uri, ok := params["uri"].(string)
	if !ok || uri == "" {
		return nil, cmerrors.NewInvalidInputError("uri", "required string parameter")
	}

	var payload interface{}
	switch uri {
	case "codemod://status":
		payload = s.statusSnapshot()
	case "codemod://changes/pending":
		payload = s.pendingSnapshot()
	case "codemod://journal/recent":
		recent, err := s.recentJournal()
		if err != nil {
			return nil, err
		}
		payload = recent
	default:
		return nil, cmerrors.NewNotFoundError("resource", uri)
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return nil, cmerrors.NewInternalError("marshal resource", err)
	}
	return map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      uri,
				"mimeType": "application/json",
				"text":     string(text),
			},
		},
	}, nil
}

type pendingFileChanges struct {
	File    string            `json:"file"`
	Changes []changes.Summary `json:"changes"`
}

type pendingChangesPayload struct {
	TotalPending int                  `json:"totalPending"`
	Files        []pendingFileChanges `json:"files"`
}

func (s *Server) pendingSnapshot() *pendingChangesPayload {
	files := s.stager.PendingFiles()
	out := make([]pendingFileChanges, 0, len(files))
	for _, file := range files {
		report := s.applier.Status(file)
		out = append(out, pendingFileChanges{
			File:    s.displayPath(file),
			Changes: report.Pending,
		})
	}
	return &pendingChangesPayload{
		TotalPending: s.stager.PendingCount(),
		Files:        out,
	}
}

type recentJournalPayload struct {
	Enabled    bool            `json:"enabled"`
	Events     []journal.Event `json:"events"`
	TotalCount int             `json:"totalCount"`
}

func (s *Server) recentJournal() (*recentJournalPayload, error) {
	if s.journal == nil {
		return &recentJournalPayload{Enabled: false, Events: []journal.Event{}}, nil
	}
	resp, err := s.journal.List(journal.ListOptions{Limit: recentJournalLimit})
	if err != nil {
		return nil, err
	}
	return &recentJournalPayload{
		Enabled:    true,
		Events:     resp.Events,
		TotalCount: resp.TotalCount,
	}, nil
}
