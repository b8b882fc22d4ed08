package errs

import "time"

// ErrorMessage is the JSON body written for client errors.
//
//	{"timestamp":"...","status":400,"error":"...","path":"/api/tutorials"}
type ErrorMessage struct {
	Timestamp time.Time    `json:"timestamp"`
	Status    int          `json:"status"`
	Error     string       `json:"error"`
	Path      string       `json:"path"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// NewErrorMessage builds an ErrorMessage stamped with the current time.
func NewErrorMessage(status int, message, path string) ErrorMessage {
	return ErrorMessage{
		Timestamp: time.Now(),
		Status:    status,
		Error:     message,
		Path:      path,
	}
}
