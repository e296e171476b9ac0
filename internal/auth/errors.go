package auth

import "errors"

// ErrorKind classifies why a bearer credential was rejected.
type ErrorKind int

const (
	MissingToken ErrorKind = iota + 1
	MalformedHeader
	InvalidToken
	ExpiredToken
	UnknownUser
)

// String returns a stable identifier suitable for logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case MissingToken:
		return "missing_token"
	case MalformedHeader:
		return "malformed_header"
	case InvalidToken:
		return "invalid_token"
	case ExpiredToken:
		return "expired_token"
	case UnknownUser:
		return "unknown_user"
	default:
		return "unknown"
	}
}

// Message is the client-facing explanation returned with a 401.
func (k ErrorKind) Message() string {
	switch k {
	case MissingToken:
		return "Missing Authorization header"
	case MalformedHeader:
		return "Invalid Authorization format"
	case InvalidToken:
		return "Invalid token"
	case ExpiredToken:
		return "Token expired"
	case UnknownUser:
		return "User not found"
	default:
		return "Unauthorized"
	}
}

// AuthError reports a rejected credential. Two AuthErrors match under errors.Is
// when their kinds are equal, so the Err* values below work as sentinels.
type AuthError struct {
	Kind ErrorKind
}

func (e *AuthError) Error() string {
	return "auth: " + e.Kind.String()
}

// Is reports whether target is an AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	var other *AuthError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrMissingToken    error = &AuthError{Kind: MissingToken}
	ErrMalformedHeader error = &AuthError{Kind: MalformedHeader}
	ErrInvalidToken    error = &AuthError{Kind: InvalidToken}
	ErrExpiredToken    error = &AuthError{Kind: ExpiredToken}
	ErrUnknownUser     error = &AuthError{Kind: UnknownUser}

	// ErrSessionNotFound is returned by a SessionStore for an unknown token.
	ErrSessionNotFound = errors.New("session not found")
)
