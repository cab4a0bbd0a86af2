package response

// Body is the JSON envelope shared by every endpoint: a success flag plus
// either data or a message describing the failure.
type Body struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) Body {
	return Body{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, data any) Body {
	return Body{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
	}
}
