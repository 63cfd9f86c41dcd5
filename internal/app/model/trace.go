package model

import (
	"fmt"
	"time"
)

// Trace is the diagnostic record kept for every ingestion attempt, whether or
// not the event itself was recorded.
type Trace struct {
	BeaconTimestamp   time.Time         `json:"beacon_timestamp"`
	StashType         string            `json:"stash_type"`
	HTTPMethod        string            `json:"http_method"`
	TraceID           string            `json:"trace_id,omitempty"`
	BeaconID          string            `json:"beacon_id,omitempty"`
	UniversalClientID int64             `json:"universal_client_id"`
	PageToken         string            `json:"page_token"`
	CampaignID        int64             `json:"campaign_id"`
	CampaignActionID  int64             `json:"campaign_action_id"`
	AttributeID       string            `json:"attribute_id"`
	AttrValue         string            `json:"attr_value"`
	ExtraAttributes   map[string]string `json:"extra_attributes,omitempty"`
	SessionID         string            `json:"session_id,omitempty"`
	Referrer          string            `json:"referrer,omitempty"`
	IPAddress         string            `json:"ip_address,omitempty"`
	UserAgent         string            `json:"user_agent,omitempty"`
	Fingerprint       string            `json:"fingerprint,omitempty"`
	RunTimeMillis     int64             `json:"run_time_ms"`
	RunTimeSummary    string            `json:"run_time_summary"`
	Error             string            `json:"error,omitempty"`
}

// SetElapsed records the processing time and its "Elapsed:HH:MM:SS.cc" summary.
func (t *Trace) SetElapsed(d time.Duration) {
	t.RunTimeMillis = d.Milliseconds()

	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60
	centis := int(d/time.Millisecond) % 1000 / 10
	t.RunTimeSummary = fmt.Sprintf("Elapsed:%02d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// Marker derives the audit marker from the sub-second part of the beacon timestamp.
func (t *Trace) Marker() string {
	return fmt.Sprintf("%d", t.BeaconTimestamp.Nanosecond()/int(time.Millisecond))
}
