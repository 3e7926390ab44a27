package models

// ErrorResponse is the uniform error body returned by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse is a simple confirmation body
type MessageResponse struct {
	Message string `json:"message"`
}

// DeletedResponse reports how many rows a bulk delete removed
type DeletedResponse struct {
	Deleted int `json:"deleted"`
}
