package mocks

import (
	"context"

	"guideapi/internal/model"
	"guideapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Create(ctx context.Context, actor model.Actor, title, content string) (*model.Guide, error) {
	args := m.Called(ctx, actor, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Edit(ctx context.Context, actor model.Actor, guideID, content string, baseVersion int) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID, content, baseVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Submit(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Approve(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Reject(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Rollback(ctx context.Context, actor model.Actor, guideID string, targetVersion, baseVersion int) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID, targetVersion, baseVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) Remove(ctx context.Context, actor model.Actor, guideID string) error {
	args := m.Called(ctx, actor, guideID)
	return args.Error(0)
}

func (m *MockWorkflowService) Get(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	args := m.Called(ctx, actor, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockWorkflowService) List(ctx context.Context, actor model.Actor, limit, offset int) (*service.GuideListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GuideListResult), args.Error(1)
}

func (m *MockWorkflowService) GetHistory(ctx context.Context, actor model.Actor, guideID string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, actor, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

func (m *MockWorkflowService) ExportHistory(ctx context.Context, actor model.Actor, guideID string) (string, error) {
	args := m.Called(ctx, actor, guideID)
	return args.String(0), args.Error(1)
}
