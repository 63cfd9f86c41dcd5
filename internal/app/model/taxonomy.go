package model

import "time"

// The campaign taxonomy is maintained outside the ingestion path. The models
// exist so migrations create the foreign-key targets.

type Brand struct {
	ID        int64     `gorm:"column:brand_id;primaryKey"`
	Name      string    `gorm:"column:brand;size:100;not null"`
	CreatedAt time.Time `gorm:"column:date_created;autoCreateTime"`
}

func (Brand) TableName() string { return "brand" }

type Campaign struct {
	ID        int64     `gorm:"column:campaign_id;primaryKey"`
	BrandID   int64     `gorm:"not null;index"`
	Name      string    `gorm:"column:campaign;size:100;not null"`
	CreatedAt time.Time `gorm:"column:date_created;autoCreateTime"`
}

func (Campaign) TableName() string { return "campaign" }

type Action struct {
	ID          int64     `gorm:"column:action_id;primaryKey"`
	Name        string    `gorm:"column:action;size:100;not null"`
	Description string    `gorm:"size:250"`
	CreatedAt   time.Time `gorm:"column:date_created;autoCreateTime"`
}

func (Action) TableName() string { return "action" }

type Attribute struct {
	ID          int64     `gorm:"column:attribute_id;primaryKey"`
	Name        string    `gorm:"column:attribute;size:100;not null"`
	Description string    `gorm:"size:250"`
	CreatedAt   time.Time `gorm:"column:date_created;autoCreateTime"`
}

func (Attribute) TableName() string { return "attribute" }

type CampaignAction struct {
	ID          int64     `gorm:"column:campaign_action_id;primaryKey"`
	CampaignID  int64     `gorm:"not null;index"`
	ActionID    int64     `gorm:"not null;index"`
	FunnelDepth *int      `gorm:"column:funnel_depth"`
	CreatedAt   time.Time `gorm:"column:date_created;autoCreateTime"`
}

func (CampaignAction) TableName() string { return "campaign_action" }

type CampaignActionAttribute struct {
	ID               int64 `gorm:"column:campaign_action_attribute_id;primaryKey"`
	CampaignActionID int64 `gorm:"not null;index"`
	AttributeID      int64 `gorm:"not null;index"`
}

func (CampaignActionAttribute) TableName() string { return "campaign_action_attribute" }

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&Brand{},
		&Campaign{},
		&Action{},
		&Attribute{},
		&CampaignAction{},
		&CampaignActionAttribute{},
		&UniversalClient{},
		&CampaignEvent{},
		&CampaignEventAttribute{},
		&Audit{},
	}
}
