package mocks

import (
	"context"

	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/stretchr/testify/mock"
)

// MockAssistant is a mock implementation of dialogue.Assistant
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Reply(ctx context.Context, utterance string, history []dialogue.Turn) (string, error) {
	args := m.Called(ctx, utterance, history)
	return args.String(0), args.Error(1)
}
