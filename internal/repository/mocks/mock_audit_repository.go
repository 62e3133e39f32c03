package mocks

import (
	"context"

	"atlasdocs/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, ev *model.AuditEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// Actions returns the action of every Insert call in order.
func (m *MockAuditRepository) Actions() []string {
	var out []string
	for _, c := range m.Calls {
		if c.Method != "Insert" {
			continue
		}
		out = append(out, c.Arguments.Get(1).(*model.AuditEvent).Action)
	}
	return out
}
