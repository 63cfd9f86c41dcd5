package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sifan077/blt/internal/app/model"
	apprepository "github.com/sifan077/blt/internal/app/repository"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
	"go.uber.org/zap"
)

// EventRecorder persists a CampaignEvent and its attribute rows.
type EventRecorder struct {
	logger *zap.Logger
	events apprepository.CampaignEventRepository
}

// NewEventRecorder creates an event recorder backed by the given repository.
func NewEventRecorder(logger *zap.Logger, events apprepository.CampaignEventRepository) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{logger: logger, events: events}
}

// Record writes the event and its attributes. A mismatched attribute id/value
// batch is skipped and logged; the event row is still written. Persistence
// failures are logged and returned so the queue can apply its own policy.
func (r *EventRecorder) Record(ctx context.Context, task model.EventTask) error {
	attrs, err := BuildAttributes(task.AttributeIDs, task.AttributeValues, task.ExtraAttributes)
	if errors.Is(err, ErrAttributeCountMismatch) {
		infraPrometheus.AttributeMismatches.Inc()
		r.logger.Warn("skipping attribute batch",
			zap.Error(err),
			zap.String("attribute_ids", task.AttributeIDs),
			zap.String("attribute_values", task.AttributeValues),
			zap.Int64("universal_client_id", task.UniversalClientID),
		)
	}

	event := &model.CampaignEvent{
		UniversalClientID: task.UniversalClientID,
		CampaignActionID:  task.CampaignActionID,
		PageToken:         task.PageToken,
		WebSessionID:      task.SessionID,
		UserAgent:         task.UserAgent,
		RemoteAddress:     task.IPAddress,
		BrowserFootprint:  task.Fingerprint,
		ServerTimestamp:   task.BeaconTimestamp,
	}

	if err := r.events.CreateWithAttributes(ctx, event, attrs); err != nil {
		r.logger.Error("failed to store campaign event",
			zap.Error(err),
			zap.Time("beacon_timestamp", task.BeaconTimestamp),
			zap.Int64("universal_client_id", task.UniversalClientID),
			zap.Int64("campaign_action_id", task.CampaignActionID),
		)
		return fmt.Errorf("store campaign event: %w", err)
	}

	r.logger.Debug("campaign event stored",
		zap.Int64("campaign_event_id", event.ID),
		zap.Int64("universal_client_id", task.UniversalClientID),
		zap.Int("attributes", len(attrs)),
	)
	return nil
}

// BuildAttributes pairs comma-delimited attribute ids with values and appends
// the extra key/value pairs in key order. A single id (no comma) always yields
// one row, even with an empty value. Lists of different lengths yield no
// paired rows and ErrAttributeCountMismatch; extras are still returned.
func BuildAttributes(ids, values string, extra map[string]string) ([]model.CampaignEventAttribute, error) {
	var (
		attrs    []model.CampaignEventAttribute
		mismatch error
	)

	ids = strings.TrimSpace(ids)
	switch {
	case ids == "":
	case !strings.Contains(ids, ","):
		attrs = append(attrs, newAttribute(ids, values))
	default:
		idParts := strings.Split(ids, ",")
		valueParts := strings.Split(values, ",")
		if len(idParts) != len(valueParts) {
			mismatch = fmt.Errorf("%w: %d ids, %d values", ErrAttributeCountMismatch, len(idParts), len(valueParts))
			break
		}
		for i := range idParts {
			attrs = append(attrs, newAttribute(idParts[i], valueParts[i]))
		}
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, newAttribute(k, extra[k]))
	}

	return attrs, mismatch
}

func newAttribute(key, value string) model.CampaignEventAttribute {
	key = strings.TrimSpace(key)
	attr := model.CampaignEventAttribute{
		AttributeKey:   key,
		AttributeValue: value,
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		attr.CampaignActionAttributeID = &id
	}
	return attr
}
