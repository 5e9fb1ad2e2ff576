package gcal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrTimeout means the backend did not answer within the deadline.
	ErrTimeout = errors.New("calendar backend timed out")
	// ErrUnavailable covers network failures, auth failures, throttling,
	// server errors and malformed responses.
	ErrUnavailable = errors.New("calendar backend unavailable")
	// ErrRejected means the backend refused the request itself.
	ErrRejected = errors.New("calendar backend rejected the request")
	// ErrEventNotFound means the event does not exist or was deleted.
	ErrEventNotFound = errors.New("google calendar event not found")
)

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// classify maps a Google API client error onto one of the package sentinels,
// keeping the original error in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, sentinelFor(err), err)
}

func sentinelFor(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return ErrUnavailable
	}

	switch {
	case gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone:
		return ErrEventNotFound
	case gErr.Code == http.StatusUnauthorized,
		gErr.Code == http.StatusForbidden,
		gErr.Code == http.StatusTooManyRequests,
		gErr.Code == http.StatusRequestTimeout,
		gErr.Code >= http.StatusInternalServerError:
		return ErrUnavailable
	case gErr.Code >= http.StatusBadRequest:
		return ErrRejected
	default:
		return ErrUnavailable
	}
}
