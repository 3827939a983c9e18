package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrRateLimited = errors.New("chat sender is rate limited")

type RateLimitError struct {
	Scope             string
	RetryAfterSeconds int
	RetryAfterDur     time.Duration
}

// NewRateLimitError rounds retryAfter up to whole seconds, never below one.
func NewRateLimitError(scope string, retryAfter time.Duration) *RateLimitError {
	if retryAfter < time.Millisecond {
		retryAfter = time.Millisecond
	}
	seconds := int(retryAfter / time.Second)
	if retryAfter%time.Second != 0 {
		seconds++
	}
	return &RateLimitError{Scope: strings.TrimSpace(scope), RetryAfterSeconds: max(seconds, 1), RetryAfterDur: retryAfter}
}

func (e *RateLimitError) Error() string {
	if e == nil {
		return ErrRateLimited.Error()
	}
	scope := e.Scope
	if scope == "" {
		scope = "sender"
	}
	return fmt.Sprintf("chat %s is rate limited; retry in %ds", scope, e.RetryAfterSeconds)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

func (e *RateLimitError) RetryAfter() time.Duration {
	if e == nil {
		return 0
	}
	return e.RetryAfterDur
}
