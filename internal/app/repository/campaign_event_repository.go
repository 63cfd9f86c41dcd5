package repository

import (
	"context"

	"github.com/sifan077/blt/internal/app/model"
	"gorm.io/gorm"
)

// CampaignEventRepository defines the data access contract for campaign events.
type CampaignEventRepository interface {
	// CreateWithAttributes inserts the event, then its attributes pointing at
	// the generated event id, in one transaction.
	CreateWithAttributes(ctx context.Context, event *model.CampaignEvent, attrs []model.CampaignEventAttribute) error
}

type campaignEventRepository struct {
	db *gorm.DB
}

// NewCampaignEventRepository returns a GORM-backed CampaignEventRepository.
func NewCampaignEventRepository(db *gorm.DB) CampaignEventRepository {
	return &campaignEventRepository{db: db}
}

func (r *campaignEventRepository) CreateWithAttributes(ctx context.Context, event *model.CampaignEvent, attrs []model.CampaignEventAttribute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("UniversalClient", "Attributes").Create(event).Error; err != nil {
			return err
		}
		if len(attrs) == 0 {
			return nil
		}

		for i := range attrs {
			attrs[i].CampaignEventID = event.ID
		}
		if err := tx.Create(&attrs).Error; err != nil {
			return err
		}
		event.Attributes = attrs
		return nil
	})
}
