package mcp

// Message is a single JSON-RPC 2.0 message as exchanged over the MCP
// transport. Requests carry Method and Id, notifications carry Method
// only, and responses carry Id plus Result or Error.
type Message struct {
	Jsonrpc string      `json:"jsonrpc"`
	Id      interface{} `json:"id,omitempty"`
	Method  string      `json:"method,omitempty"`
	Params  interface{} `json:"params,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error object carried by failed responses.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

// Standard JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// NewErrorMessage creates an error response for the given request id.
func NewErrorMessage(id interface{}, code int, message string, data interface{}) *Message {
	return &Message{
		Jsonrpc: "2.0",
		Id:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// NewResultMessage creates a successful response for the given request id.
func NewResultMessage(id interface{}, result interface{}) *Message {
	return &Message{
		Jsonrpc: "2.0",
		Id:      id,
		Result:  result,
	}
}

// IsRequest reports whether the message is a request (method and id).
func (m *Message) IsRequest() bool {
	return m.Method != "" && m.Id != nil
}

// IsNotification reports whether the message is a notification (method, no id).
func (m *Message) IsNotification() bool {
	return m.Method != "" && m.Id == nil
}

// IsResponse reports whether the message is a response (id plus result or error).
func (m *Message) IsResponse() bool {
	return m.Id != nil && (m.Result != nil || m.Error != nil)
}
