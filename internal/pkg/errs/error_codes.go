/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Upload Business Logic Errors
const (
	// ErrFileSizeTooLarge indicates that the uploaded file exceeded the size limit.
	ErrFileSizeTooLarge = 2201

	// ErrFileTypeInvalid indicates that the uploaded file name or MIME type is not an accepted image format.
	ErrFileTypeInvalid = 2202
)

// 3xxx: Account, Session, and Security Errors
const (
	// ErrUnauthorized indicates that the request requires a valid authenticated identity.
	ErrUnauthorized = 3001

	// ErrForbidden indicates that the authenticated identity lacks the required role.
	ErrForbidden = 3002

	// ErrInvalidUsername indicates that the supplied username does not meet format requirements.
	ErrInvalidUsername = 3101

	// ErrInvalidPassword indicates that the supplied password does not meet length requirements.
	ErrInvalidPassword = 3102

	// ErrUserAlreadyExists indicates that the username or email is already registered.
	ErrUserAlreadyExists = 3103

	// ErrInvalidCredentials indicates a failed username/password verification.
	ErrInvalidCredentials = 3104

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3105

	// ErrInvalidRole indicates that an unknown role name was supplied.
	ErrInvalidRole = 3106
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure while talking to the object storage backend.
	ErrFileStorageFailed = 5001
)
