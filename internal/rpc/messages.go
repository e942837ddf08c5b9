package rpc

import "encoding/json"

// Version is the JSON-RPC protocol version spoken on the socket.
const Version = "2.0"

// Standard JSON-RPC 2.0 error codes plus the server-defined range used for
// pipeline failures.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeAuthError       = -32000 // invalid or unknown access key
	CodeQuotaExceeded   = -32001
	CodeAudioError      = -32002 // malformed, oversized or unsupported audio
	CodeProviderFailure = -32003
)

// Request is one incoming JSON-RPC call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one outgoing JSON-RPC result or error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewResult builds a success response bound to the request ID.
func NewResult(id json.RawMessage, result interface{}) Response {
	return Response{JSONRPC: Version, ID: id, Result: result}
}

// NewError builds an error response bound to the request ID.
func NewError(id json.RawMessage, code int, message string, data interface{}) Response {
	return Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
}
