package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidOptions   = "invalid_options"

	// Resource errors
	ErrCodeNotFound        = "not_found"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeImageNotFound   = "image_not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeSessionBusy     = "session_busy"

	// Quiz errors
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeTimeExpired       = "time_expired"
	ErrCodeUnknownSubject    = "unknown_subject"
	ErrCodeChoiceOutOfRange  = "choice_out_of_range"
	ErrCodeNoQuestions       = "no_questions"
	ErrCodeUnanswerable      = "unanswerable"
	ErrCodeMalformedQuestion = "malformed_question"
	ErrCodeUnknownAction     = "unknown_action"

	// Question bank errors
	ErrCodeBankReloadFailed = "bank_reload_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
