package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxMessageSize bounds a single protocol frame.
const MaxMessageSize = 1024 * 1024

// errMalformedFrame marks a line that scanned fine but failed to parse as
// JSON-RPC. The stream itself is still healthy after one of these.
var errMalformedFrame = errors.New("malformed frame")

// readMessage reads one newline-delimited JSON-RPC message from stdin.
// It returns io.EOF when the client closes the stream.
func (s *Server) readMessage() (*Message, error) {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.stdin)
		s.scanner.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read message: %w", err)
		}
		return nil, io.EOF
	}

	var msg Message
	if err := json.Unmarshal(s.scanner.Bytes(), &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedFrame, err)
	}
	return &msg, nil
}

// writeMessage writes one JSON-RPC message to stdout, one message per line.
func (s *Server) writeMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if _, err := fmt.Fprintf(s.stdout, "%s\n", data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// SetStdin replaces the input stream and resets the scanner. Used by tests.
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout replaces the output stream. Used by tests.
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
