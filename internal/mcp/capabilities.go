package mcp

// protocolVersion is the MCP revision this server implements.
const protocolVersion = "2024-11-05"

// InitializeResult is the payload answered to the initialize request.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities describes what this server supports.
type Capabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
}

// ToolsCapability describes tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ResourcesCapability describes resource support.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// ServerInfo identifies the server implementation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// handleInitialize answers the MCP handshake. The tool catalog is fixed
// for the life of the process, so listChanged stays false.
func (s *Server) handleInitialize(params map[string]interface{}) (interface{}, error) {
	if clientInfo, ok := params["clientInfo"].(map[string]interface{}); ok {
		s.logger.Info("initialize requested",
			"client", clientInfo["name"],
			"clientVersion", clientInfo["version"])
	}

	return InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: Capabilities{
			Tools:     &ToolsCapability{ListChanged: false},
			Resources: &ResourcesCapability{Subscribe: false, ListChanged: false},
		},
		ServerInfo: ServerInfo{
			Name:    "codemod",
			Version: s.version,
		},
	}, nil
}
