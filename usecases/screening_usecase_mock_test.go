package usecases

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/marble-screening/models"
)

type screeningAuditLoggerMock struct {
	mock.Mock
}

func (m *screeningAuditLoggerMock) LogScreening(ctx context.Context, record models.ScreeningAuditRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}
