package services

import (
	"context"
	"time"

	"chamado-service/apperrors"
	"chamado-service/models"
	"chamado-service/providers"

	"go.uber.org/zap"
)

// MsgEmployeeUnavailable is shown when the employee API cannot be reached.
const MsgEmployeeUnavailable = "Erro ao carregar dados do funcionário. Tente novamente mais tarde."

const formDateLayout = "02/01/2006 15:04"

// EmployeeService builds the read-only part of the ticket form.
type EmployeeService interface {
	Form(ctx context.Context, user models.User) (*models.EmployeeForm, *apperrors.Error)
}

type employeeServiceImpl struct {
	provider providers.TicketProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(provider providers.TicketProvider, logger *zap.Logger) EmployeeService {
	return &employeeServiceImpl{provider: provider, logger: logger, now: time.Now}
}

func (s *employeeServiceImpl) Form(ctx context.Context, user models.User) (*models.EmployeeForm, *apperrors.Error) {
	emp, err := s.provider.FetchEmployee(ctx, user.Email)
	if err != nil {
		s.logger.Error("employee lookup failed", zap.String("email", user.Email), zap.Error(err))
		return nil, apperrors.BadGateway(MsgEmployeeUnavailable, err)
	}

	elaborador := emp.Nome
	if elaborador == "" {
		elaborador = user.Name
	}
	email := emp.Email
	if email == "" {
		email = user.Email
	}
	return &models.EmployeeForm{
		Elaborador:      elaborador,
		Solicitante:     elaborador,
		DataAbertura:    s.now().Format(formDateLayout),
		TelefoneContato: emp.Telefone,
		Cargo:           emp.Funcao,
		Secao:           emp.Secao,
		Empresa:         emp.Empresa,
		CentroCusto:     emp.CentroCusto,
		Chapa:           emp.Chapa,
		Gerencia:        emp.Gerencia,
		Email:           email,
	}, nil
}
