package errors

import (
	"errors"
	"fmt"
)

// Common error types for the RockQuest client
var (
	// Session errors
	ErrAuth            = errors.New("authentication failed")
	ErrNotSignedIn     = errors.New("not signed in")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrInvalidIdentity = errors.New("invalid identity")

	// Transport errors
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("request timed out")
	ErrHTTP    = errors.New("http error")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidBody    = errors.New("invalid request body")
	ErrDecodeResponse = errors.New("failed to decode response")

	// Storage errors
	ErrBucketNotFound = errors.New("bucket not found")
	ErrUploadFailed   = errors.New("upload failed")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single import
func New(text string) error {
	return errors.New(text)
}
