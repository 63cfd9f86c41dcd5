package model

import "time"

// Audit persists one serialized Trace per ingestion attempt.
type Audit struct {
	ID        int64     `db:"id" gorm:"primaryKey"`
	CreatedAt time.Time `db:"date_created" gorm:"column:date_created;autoCreateTime;index"`
	Marker    string    `db:"marker" gorm:"size:250"`
	Details   string    `db:"details" gorm:"type:text"`
}

func (Audit) TableName() string { return "audit" }
