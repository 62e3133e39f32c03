package mocks

import (
	"context"

	"atlasdocs/internal/audit"
	"atlasdocs/internal/model"
	"atlasdocs/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, rc audit.RequestContext, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, rc, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, rc audit.RequestContext, secret string, id int64, patch model.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, rc, secret, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, rc audit.RequestContext, secret string, id int64) error {
	args := m.Called(ctx, rc, secret, id)
	return args.Error(0)
}

// MockClientRecorder stands in for the audit logger on the client ingestion route.
type MockClientRecorder struct {
	mock.Mock
}

func (m *MockClientRecorder) RecordClient(ctx context.Context, rc audit.RequestContext, ce audit.ClientEvent) error {
	args := m.Called(ctx, rc, ce)
	return args.Error(0)
}
