package model

import "time"

// TaskKind names the background work carried by a Task.
type TaskKind string

const (
	TaskKindEvent TaskKind = "event"
	TaskKindAudit TaskKind = "audit"
)

const (
	TaskStreamName      = "BLT_TASKS"
	TaskStreamSubjects  = "blt.tasks.>"
	TaskSubjectPrefix   = "blt.tasks."
	TaskConsumerName    = "blt-task-worker"
	TaskStreamMaxBytes  = 1024 * 1024 * 256 // 256MB
	TaskStreamMaxMsgAge = 72 * time.Hour
)

// Subject returns the JetStream subject a task of this kind is published on.
func (k TaskKind) Subject() string {
	return TaskSubjectPrefix + string(k)
}

// Task is a self-contained descriptor of deferred work. It only carries
// primitive values so it survives serialization across process restarts.
type Task struct {
	Kind  TaskKind   `json:"kind"`
	Event *EventTask `json:"event,omitempty"`
	Audit *AuditTask `json:"audit,omitempty"`
}

// EventTask carries everything needed to persist one CampaignEvent.
type EventTask struct {
	BeaconTimestamp   time.Time         `json:"beacon_timestamp"`
	UniversalClientID int64             `json:"universal_client_id"`
	CampaignActionID  int64             `json:"campaign_action_id"`
	AttributeIDs      string            `json:"attribute_ids"`
	AttributeValues   string            `json:"attribute_values"`
	PageToken         string            `json:"page_token"`
	ExtraAttributes   map[string]string `json:"extra_attributes,omitempty"`
	SessionID         string            `json:"session_id"`
	UserAgent         string            `json:"user_agent"`
	IPAddress         string            `json:"ip_address"`
	Fingerprint       string            `json:"fingerprint"`
}

// AuditTask carries one Trace to be persisted as an Audit row.
type AuditTask struct {
	Marker string `json:"marker"`
	Trace  Trace  `json:"trace"`
}

// NewEventTask wraps an EventTask in a Task envelope.
func NewEventTask(e EventTask) Task {
	return Task{Kind: TaskKindEvent, Event: &e}
}

// NewAuditTask wraps an AuditTask in a Task envelope.
func NewAuditTask(marker string, trace Trace) Task {
	return Task{Kind: TaskKindAudit, Audit: &AuditTask{Marker: marker, Trace: trace}}
}
