package mocks

import (
	"context"

	"guideapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockHistoryLedger struct {
	mock.Mock
}

func (m *MockHistoryLedger) Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HistoryEntry), args.Error(1)
}

func (m *MockHistoryLedger) ListByDocument(ctx context.Context, tenantID, guideID string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, tenantID, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

func (m *MockHistoryLedger) FindVersion(ctx context.Context, tenantID, guideID string, version int) (*model.HistoryEntry, error) {
	args := m.Called(ctx, tenantID, guideID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HistoryEntry), args.Error(1)
}
