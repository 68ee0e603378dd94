package dto

// ErrorResponse is the body of every non-2xx reply. Error is a stable code,
// Message is for humans.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
