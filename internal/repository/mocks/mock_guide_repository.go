package mocks

import (
	"context"
	"time"

	"guideapi/internal/model"
	"guideapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockGuideRepository struct {
	mock.Mock
}

func (m *MockGuideRepository) Create(ctx context.Context, g *model.Guide) (*model.Guide, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockGuideRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockGuideRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guide), args.Error(1)
}

func (m *MockGuideRepository) Update(ctx context.Context, g *model.Guide, expectedVersion int) error {
	args := m.Called(ctx, g, expectedVersion)
	return args.Error(0)
}

func (m *MockGuideRepository) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	args := m.Called(ctx, tenantID, id, at)
	return args.Error(0)
}

func (m *MockGuideRepository) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Guide], error) {
	args := m.Called(ctx, tenantID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Guide]), args.Error(1)
}
