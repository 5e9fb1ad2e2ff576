package mocks

import (
	"context"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/stretchr/testify/mock"
)

// MockBookingNotifier is a mock implementation of booking.Notifier
type MockBookingNotifier struct {
	mock.Mock
}

func (m *MockBookingNotifier) NotifyBooked(ctx context.Context, result *booking.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockRecorder is a mock implementation of booking.Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAttempt(ctx context.Context, attempt booking.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockRecorder) MarkCancelled(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
