package remote

// APIError is the failure shape the remote collection API exposes: a name,
// a human-readable message, the HTTP status, and the raw response body.
// Mutation operations normalize it into the canonical lifecycle error.
type APIError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Body    string `json:"body"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Name
}
