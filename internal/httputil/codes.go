package httputil

// Machine-readable error codes returned alongside error messages so clients
// do not have to match on human-readable text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeEmailAlreadyExists = "email_already_exists"
	CodeMissingFields      = "missing_fields"
	CodePasswordTooShort   = "password_too_short"

	CodeUserNotFound           = "user_not_found"
	CodeAccountNotActive       = "account_not_active"
	CodeInvalidActivationToken = "invalid_activation_token"
	CodeInvalidResetToken      = "invalid_reset_token"

	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeInvalidTokenUserID = "invalid_token_user_id"

	CodeBookmarkNotFound = "bookmark_not_found"

	CodeTooManyRequests = "too_many_requests"
	CodeCooldownActive  = "cooldown_active"
	CodeInternalError   = "internal_error"
)
