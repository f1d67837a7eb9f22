package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserRoleRepository struct {
	mock.Mock
}

func (m *UserRoleRepository) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)

	return args.String(0), args.Error(1)
}
