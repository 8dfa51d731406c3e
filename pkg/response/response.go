package response

// Body is the envelope for messages and errors. Stack is only filled outside production.
type Body struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Message returns a body carrying only a human readable message
func Message(msg string) Body {
	return Body{Message: msg}
}

// Error returns an error body, attaching stack when it is non-empty
func Error(msg, stack string) Body {
	return Body{Message: msg, Stack: stack}
}
