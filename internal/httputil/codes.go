package httputil

import "errors"

var errTrailingData = errors.New("request body must contain a single JSON object")

// Machine-readable error codes returned alongside the human message.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	CodeMissingAuth       = "MISSING_AUTH"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeInvalidToken      = "INVALID_TOKEN"

	CodeContentRequired = "CONTENT_REQUIRED"
	CodeNoUpdateFields  = "NO_UPDATE_FIELDS"
	CodeNotFound        = "NOT_FOUND"

	CodeTimeout       = "TIMEOUT"
	CodeInternalError = "INTERNAL_ERROR"
)
