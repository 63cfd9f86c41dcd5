package model

import "time"

// UniversalClient is the durable identity anchor for a visitor. ExternalID
// holds the value stored in the Beacon cookie and is unique among live rows.
type UniversalClient struct {
	ID         int64     `db:"universal_client_id" gorm:"column:universal_client_id;primaryKey"`
	ExternalID string    `db:"external_id" gorm:"size:40;not null;uniqueIndex:idx_universal_client_external_id,where:is_deleted = false"`
	CreatedAt  time.Time `db:"date_created" gorm:"column:date_created;autoCreateTime"`
	IsDeleted  bool      `db:"is_deleted" gorm:"not null;default:false"`
}

func (UniversalClient) TableName() string { return "universal_client" }
