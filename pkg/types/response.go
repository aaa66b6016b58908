package types

// SuccessEnvelope is embedded by every successful response body.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK returns an envelope flagged successful.
func OK(message string) SuccessEnvelope {
	return SuccessEnvelope{Success: true, Message: message}
}

// FieldError is one failed field of a rejected payload.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}
