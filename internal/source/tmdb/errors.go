package tmdb

import (
	"errors"
	"fmt"
	"strings"
)

const sourceName = "tmdb"

// Error codes carried by SourceError.
const (
	CodeAuthFailed  = "AUTH_FAILED"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "UNAVAILABLE"
	CodeNotFound    = "NOT_FOUND"
	CodeUnknown     = "UNKNOWN"
)

// SourceError represents an error from the metadata source
type SourceError struct {
	Source     string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
	Err        error
}

func (e *SourceError) Error() string {
	return e.Message
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NOT_FOUND SourceError.
func IsNotFound(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Code == CodeNotFound
}

func notFound(format string, args ...any) error {
	return &SourceError{
		Source:  sourceName,
		Code:    CodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// mapError maps TMDB client errors to source errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized"):
		return &SourceError{
			Source:  sourceName,
			Code:    CodeAuthFailed,
			Message: "TMDB authentication failed: " + err.Error(),
			Err:     err,
		}
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return &SourceError{
			Source:     sourceName,
			Code:       CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
			Err:        err,
		}
	case strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable"):
		return &SourceError{
			Source:     sourceName,
			Code:       CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
			Err:        err,
		}
	case strings.Contains(errStr, "404") || strings.Contains(errStr, "not found"):
		return &SourceError{
			Source:  sourceName,
			Code:    CodeNotFound,
			Message: "TMDB resource not found: " + err.Error(),
			Err:     err,
		}
	}

	return &SourceError{
		Source:  sourceName,
		Code:    CodeUnknown,
		Message: "TMDB error: " + err.Error(),
		Err:     err,
	}
}
