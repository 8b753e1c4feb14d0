package notify

import (
	"fmt"
	"time"
)

// ErrorData carries the structured fields extracted from a failed remote
// call.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Body    string `json:"body"`
}

// RemoteError is the canonical normalized form of a remote-call failure. The
// same value is returned to the operation caller and emitted as the error
// notification payload, so both observers see identical data.
type RemoteError struct {
	Date time.Time `json:"date"`
	Data ErrorData `json:"data"`
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Data.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Data.Name, e.Data.Status, e.Data.Message)
	}
	return fmt.Sprintf("%s: %s", e.Data.Name, e.Data.Message)
}
