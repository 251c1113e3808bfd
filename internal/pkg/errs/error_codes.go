/*
Package errs provides the application's error taxonomy.

The code constants identify specific business or system failures both inside
the server and on the wire toward clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging Errors
const (
	// ErrMessageContentTooLong indicates the message content exceeded the length limit.
	ErrMessageContentTooLong = 2001

	// ErrMessageTypeUnknown indicates the client sent an unsupported frame type.
	ErrMessageTypeUnknown = 2002
)

// 3xxx: Account, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity on a protected surface.
	ErrUnauthorized = 3001

	// ErrAlreadyLoggedIn indicates an auth operation from an already-authenticated session.
	ErrAlreadyLoggedIn = 3002

	// ErrInvalidUsername indicates the username failed validation.
	ErrInvalidUsername = 3003

	// ErrInvalidPassword indicates the password failed validation.
	ErrInvalidPassword = 3004

	// ErrUserAlreadyExists indicates the registration username is taken.
	ErrUserAlreadyExists = 3005

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3006

	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = 3007

	// ErrOldPasswordInvalid indicates a password change with a wrong current password.
	ErrOldPasswordInvalid = 3008
)

// 4xxx: Storage Errors
const (
	// ErrFileSizeTooLarge indicates the declared upload exceeds the size limit.
	ErrFileSizeTooLarge = 4001

	// ErrFileTypeInvalid indicates a disallowed or mismatched file type.
	ErrFileTypeInvalid = 4002

	// ErrFileStorageFailed indicates an object-storage operation failed.
	ErrFileStorageFailed = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
