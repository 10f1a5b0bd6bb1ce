package repository

import (
	"context"

	"chamado-service/models"

	"gorm.io/gorm"
)

// TicketLogRepository records ticket creation attempts.
type TicketLogRepository interface {
	Create(ctx context.Context, entry *models.TicketLog) error
	FindByUser(ctx context.Context, usuario string, page, limit int) ([]models.TicketLog, int64, error)
}

// GormTicketLogRepository implements TicketLogRepository using GORM.
type GormTicketLogRepository struct {
	db *gorm.DB
}

// NewGormTicketLogRepository creates a new GormTicketLogRepository.
func NewGormTicketLogRepository(db *gorm.DB) TicketLogRepository {
	return &GormTicketLogRepository{db: db}
}

func (r *GormTicketLogRepository) Create(ctx context.Context, entry *models.TicketLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByUser returns one page of the user's attempts, newest first, and the
// total count.
func (r *GormTicketLogRepository) FindByUser(ctx context.Context, usuario string, page, limit int) ([]models.TicketLog, int64, error) {
	var entries []models.TicketLog
	var total int64

	q := r.db.WithContext(ctx).Model(&models.TicketLog{}).Where("usuario = ?", usuario)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
