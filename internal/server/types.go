package server

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// RequestError represents a request parsing error with HTTP status.
type RequestError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e RequestError) Error() string {
	return e.Message
}
