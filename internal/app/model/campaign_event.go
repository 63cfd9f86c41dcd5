package model

import "time"

// CampaignEvent is one recorded beacon firing.
type CampaignEvent struct {
	ID                int64     `db:"campaign_event_id" gorm:"column:campaign_event_id;primaryKey"`
	UniversalClientID int64     `db:"universal_client_id" gorm:"not null;index"`
	CampaignActionID  int64     `db:"campaign_action_id" gorm:"not null;index"`
	PageToken         string    `db:"page_token" gorm:"size:1000;not null"`
	WebSessionID      string    `db:"web_session_id" gorm:"size:100"`
	UserAgent         string    `db:"user_agent" gorm:"size:1000"`
	RemoteAddress     string    `db:"remote_address" gorm:"size:100"`
	BrowserFootprint  string    `db:"browser_footprint" gorm:"size:4000"`
	ServerTimestamp   time.Time `db:"server_timestamp" gorm:"column:server_timestamp;index"`
	CreatedAt         time.Time `db:"date_created" gorm:"column:date_created;autoCreateTime"`

	UniversalClient *UniversalClient         `db:"-" json:"-" gorm:"foreignKey:UniversalClientID;references:ID;constraint:OnDelete:RESTRICT"`
	Attributes      []CampaignEventAttribute `db:"-" gorm:"foreignKey:CampaignEventID"`
}

func (CampaignEvent) TableName() string { return "campaign_event" }

// CampaignEventAttribute annotates a CampaignEvent. CampaignActionAttributeID
// is set when the key is a numeric attribute definition id; AttributeKey
// always carries the key as supplied.
type CampaignEventAttribute struct {
	ID                        int64  `db:"campaign_event_attribute_id" gorm:"column:campaign_event_attribute_id;primaryKey"`
	CampaignEventID           int64  `db:"campaign_event_id" gorm:"not null;index"`
	CampaignActionAttributeID *int64 `db:"campaign_action_attribute_id" gorm:"index"`
	AttributeKey              string `db:"attribute_key" gorm:"size:250;not null"`
	AttributeValue            string `db:"attribute_value" gorm:"size:1000"`
}

func (CampaignEventAttribute) TableName() string { return "campaign_event_attribute" }
