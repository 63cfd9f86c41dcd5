package service

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/sifan077/blt/internal/app/model"
	apprepository "github.com/sifan077/blt/internal/app/repository"
	"go.uber.org/zap"
)

// AuditTrace writes one Audit row per ingestion attempt. It is a best-effort
// sink: failures are logged and never surface to the caller.
type AuditTrace struct {
	logger *zap.Logger
	audits apprepository.AuditRepository
}

// NewAuditTrace creates an audit writer backed by the given repository.
func NewAuditTrace(logger *zap.Logger, audits apprepository.AuditRepository) *AuditTrace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditTrace{logger: logger, audits: audits}
}

// Push serializes the trace as indented JSON and stores it under marker.
// Page tokens and error messages keep their raw text.
func (a *AuditTrace) Push(ctx context.Context, marker string, trace model.Trace) {
	details, err := encodeTrace(trace)
	if err != nil {
		a.logger.Error("failed to encode trace", zap.Error(err), zap.String("marker", marker))
		return
	}

	audit := &model.Audit{
		Marker:  marker,
		Details: details,
	}
	if err := a.audits.Create(ctx, audit); err != nil {
		a.logger.Error("failed to store audit",
			zap.Error(err),
			zap.String("marker", marker),
			zap.Time("beacon_timestamp", trace.BeaconTimestamp),
			zap.Int64("universal_client_id", trace.UniversalClientID),
		)
	}
}

func encodeTrace(trace model.Trace) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trace); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
