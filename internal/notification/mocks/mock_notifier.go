package mocks

import (
	"context"

	"guideapi/internal/notification"

	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, targetUserID string, event notification.Event, message, link string) error {
	args := m.Called(ctx, targetUserID, event, message, link)
	return args.Error(0)
}
