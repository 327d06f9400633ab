package models

type MessageBody struct {
	Message string `json:"message"`
}

type ErrorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Helper for plain success responses
func MessageResponse(message string) MessageBody {
	return MessageBody{Message: message}
}

// Helper for error responses
func ErrorResponse(detail string) ErrorBody {
	return ErrorBody{Detail: detail}
}

func ValidationErrorResponse(fields map[string]string) ErrorBody {
	return ErrorBody{
		Detail: "Validation failed",
		Errors: fields,
	}
}
