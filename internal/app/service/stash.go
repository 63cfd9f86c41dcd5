package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sifan077/blt/internal/app/model"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
	"go.uber.org/zap"
)

// Stash types name the entry point that produced a beacon.
const (
	StashTypePixel   = "pixel"
	StashTypeConsume = "consume"
)

// BeaconInput holds the tracking parameters of one beacon.
type BeaconInput struct {
	StashType   string
	PageToken   string `param:"pageToken" validate:"required"`
	CampaignID  int64  `param:"campaignId" validate:"min=1"`
	ActionID    int64  `param:"actionId" validate:"min=1"`
	AttributeID string `param:"attributeId"`
	AttrValue   string `param:"attrValue"`
	// UID is an external id tracked by the caller; empty means use the cookie.
	UID       string `param:"uid" validate:"max=40"`
	SessionID string `param:"session"`
	Extra     map[string]string
	// DecodeErr is set when the entry point could not parse the request.
	DecodeErr error
}

type stashState string

const (
	stateValidating stashState = "validating"
	stateResolving  stashState = "resolving"
	stateScheduling stashState = "scheduling"
	stateScheduled  stashState = "scheduled"
	stateFailed     stashState = "failed"
)

// IngestorDeps groups dependencies required by the ingestion pipeline.
type IngestorDeps struct {
	Logger    *zap.Logger
	Resolver  *IdentityResolver
	Queue     TaskQueue
	Sightings *FingerprintSightings
	Now       func() time.Time
}

// Ingestor runs the Stash pipeline: validate, resolve identity, schedule the
// event write, and always schedule the audit trace.
type Ingestor struct {
	logger    *zap.Logger
	resolver  *IdentityResolver
	queue     TaskQueue
	sightings *FingerprintSightings
	now       func() time.Time
	validate  *validator.Validate
}

// NewIngestor creates an ingestion pipeline with the provided dependencies.
func NewIngestor(deps IngestorDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" {
			return name
		}
		return f.Name
	})

	return &Ingestor{
		logger:    logger,
		resolver:  deps.Resolver,
		queue:     deps.Queue,
		sightings: deps.Sightings,
		now:       now,
		validate:  v,
	}
}

// Stash processes one ingestion attempt. Only identity resolution runs
// inline; the event and the audit trace are handed to the task queue. The
// returned error is nil on success and never escapes as a transport error.
func (i *Ingestor) Stash(ctx context.Context, in BeaconInput, req RequestInfo, jar CookieJar) (err error) {
	start := time.Now()
	bts := i.now()

	trace := model.Trace{
		BeaconTimestamp:  bts,
		StashType:        in.StashType,
		HTTPMethod:       req.Method,
		TraceID:          req.RequestID,
		Referrer:         req.Referrer,
		PageToken:        in.PageToken,
		CampaignID:       in.CampaignID,
		CampaignActionID: in.ActionID,
		AttributeID:      in.AttributeID,
		AttrValue:        in.AttrValue,
		ExtraAttributes:  in.Extra,
	}
	state := stateValidating

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stash panic: %v", r)
		}
		if err != nil {
			state = stateFailed
			trace.Error = err.Error()
		}

		elapsed := time.Since(start)
		trace.SetElapsed(elapsed)
		i.pushAudit(ctx, trace)

		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		infraPrometheus.BeaconsTotal.WithLabelValues(in.StashType, outcome).Inc()
		infraPrometheus.StashDuration.WithLabelValues(in.StashType).Observe(elapsed.Seconds())

		i.logger.Debug("stash finished",
			zap.String("stash_type", in.StashType),
			zap.String("state", string(state)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}()

	if err := i.validateInput(in); err != nil {
		return err
	}

	state = stateResolving
	beaconID, universalID, err := i.resolve(ctx, in, jar)
	if err != nil {
		return err
	}
	trace.BeaconID = beaconID
	trace.UniversalClientID = universalID

	state = stateScheduling
	ip := ResolveIP(req)
	fingerprint := GenerateFingerprint(req)
	if i.sightings != nil {
		i.sightings.Observe(fingerprint)
	}

	task := model.NewEventTask(model.EventTask{
		BeaconTimestamp:   bts,
		UniversalClientID: universalID,
		CampaignActionID:  in.ActionID,
		AttributeIDs:      in.AttributeID,
		AttributeValues:   in.AttrValue,
		PageToken:         in.PageToken,
		ExtraAttributes:   in.Extra,
		SessionID:         in.SessionID,
		UserAgent:         req.UserAgent,
		IPAddress:         ip,
		Fingerprint:       fingerprint,
	})
	if err := i.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	trace.SessionID = in.SessionID
	trace.UserAgent = req.UserAgent
	trace.IPAddress = ip
	trace.Fingerprint = fingerprint
	state = stateScheduled
	return nil
}

func (i *Ingestor) validateInput(in BeaconInput) error {
	if in.DecodeErr != nil {
		return fmt.Errorf("%w: %v", ErrValidation, in.DecodeErr)
	}

	err := i.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fe.Field()+" is required")
		case "min":
			problems = append(problems, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "max":
			problems = append(problems, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

func (i *Ingestor) resolve(ctx context.Context, in BeaconInput, jar CookieJar) (string, int64, error) {
	if uid := strings.TrimSpace(in.UID); uid != "" {
		id, err := i.resolver.ResolveByExternalID(ctx, jar, uid)
		if err != nil {
			return "", 0, err
		}
		return uid, id, nil
	}
	return i.resolver.ResolveByCookie(ctx, jar)
}

func (i *Ingestor) pushAudit(ctx context.Context, trace model.Trace) {
	if err := i.queue.Enqueue(ctx, model.NewAuditTask(trace.Marker(), trace)); err != nil {
		i.logger.Error("failed to schedule audit",
			zap.Error(err),
			zap.Time("beacon_timestamp", trace.BeaconTimestamp),
			zap.String("stash_type", trace.StashType),
		)
	}
}
