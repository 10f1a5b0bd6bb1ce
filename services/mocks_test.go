package services

import (
	"context"

	"chamado-service/models"

	"github.com/stretchr/testify/mock"
)

type MockTicketProvider struct{ mock.Mock }

func (m *MockTicketProvider) CreateTicket(ctx context.Context, payload models.TicketPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockTicketProvider) FetchEmployee(ctx context.Context, email string) (*models.Employee, error) {
	args := m.Called(ctx, email)
	if emp := args.Get(0); emp != nil {
		return emp.(*models.Employee), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTicketLogRepository struct{ mock.Mock }

func (m *MockTicketLogRepository) Create(ctx context.Context, entry *models.TicketLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTicketLogRepository) FindByUser(ctx context.Context, usuario string, page, limit int) ([]models.TicketLog, int64, error) {
	args := m.Called(ctx, usuario, page, limit)
	entries, _ := args.Get(0).([]models.TicketLog)
	return entries, args.Get(1).(int64), args.Error(2)
}

type MockArchiver struct{ mock.Mock }

func (m *MockArchiver) Archive(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, topicArn string, message []byte) error {
	args := m.Called(ctx, topicArn, message)
	return args.Error(0)
}
