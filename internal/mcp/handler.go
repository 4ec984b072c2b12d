package mcp

import (
	"encoding/json"
	"fmt"

	"codemod/internal/envelope"
	cmerrors "codemod/internal/errors"
)

// handleMessage routes one incoming message and returns the response to
// write, or nil when the message needs no reply.
func (s *Server) handleMessage(msg *Message) *Message {
	if msg.IsResponse() {
		s.logger.Debug("ignoring client response", "id", msg.Id)
		return nil
	}
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}
	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}
	return NewErrorMessage(msg.Id, InvalidRequest, "message is neither request nor notification", nil)
}

func (s *Server) handleRequest(msg *Message) *Message {
	s.logger.Debug("handling request", "method", msg.Method, "id", msg.Id)

	params, hasParams := msg.Params.(map[string]interface{})
	if !hasParams {
		params = make(map[string]interface{})
	}

	var result interface{}
	var err error
	switch msg.Method {
	case "initialize":
		result, err = s.handleInitialize(params)
	case "tools/list":
		result, err = s.handleListTools(params)
	case "tools/call":
		if !hasParams {
			return NewErrorMessage(msg.Id, InvalidParams, "tools/call requires a params object", nil)
		}
		result, err = s.handleCallTool(params)
	case "resources/list":
		result, err = s.handleListResources(params)
	case "resources/read":
		if !hasParams {
			return NewErrorMessage(msg.Id, InvalidParams, "resources/read requires a params object", nil)
		}
		result, err = s.handleReadResource(params)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("method not found: %s", msg.Method), nil)
	}

	if err != nil {
		return NewErrorMessage(msg.Id, rpcCode(err), err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

func (s *Server) handleNotification(msg *Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("client initialized")
	default:
		s.logger.Debug("ignoring notification", "method", msg.Method)
	}
}

// rpcCode maps a handler failure onto a JSON-RPC error code. Unknown
// tools, unknown resources, and malformed arguments are the caller's
// mistake; everything else is ours.
func rpcCode(err error) int {
	switch cmerrors.CodeOf(err) {
	case cmerrors.NotFound, cmerrors.InvalidInput:
		return InvalidParams
	default:
		return InternalError
	}
}

func (s *Server) handleListTools(params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"tools": GetToolDefinitions(),
	}, nil
}

// handleCallTool dispatches a tools/call request. A fault inside the tool
// handler is not a protocol error: it comes back as an error envelope in a
// normal result so the caller sees the structured code and suggested fixes.
// Only an unknown tool name or an unmarshalable result fails the request.
func (s *Server) handleCallTool(params map[string]interface{}) (interface{}, error) {
	toolName, ok := params["name"].(string)
	if !ok || toolName == "" {
		return nil, cmerrors.NewInvalidInputError("name", "required string parameter")
	}
	arguments, ok := params["arguments"].(map[string]interface{})
	if !ok {
		arguments = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return nil, cmerrors.NewNotFoundError("tool", toolName)
	}

	s.logger.Info("calling tool", "tool", toolName)

	resp, err := handler(arguments)
	if err != nil {
		s.logger.Warn("tool failed",
			"tool", toolName,
			"code", cmerrors.CodeOf(err),
			"error", err)
		resp = envelope.New().Data(cmerrors.From(err)).Error(err).Build()
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, cmerrors.NewInternalError("marshal tool response", err)
	}
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(payload),
			},
		},
	}, nil
}
