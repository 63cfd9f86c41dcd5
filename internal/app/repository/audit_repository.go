package repository

import (
	"context"

	"github.com/sifan077/blt/internal/app/model"
	"gorm.io/gorm"
)

// AuditRepository defines the data access contract for audit rows.
type AuditRepository interface {
	Create(ctx context.Context, audit *model.Audit) error
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository returns a GORM-backed AuditRepository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, audit *model.Audit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}
