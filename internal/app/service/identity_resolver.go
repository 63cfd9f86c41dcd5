package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	apprepository "github.com/sifan077/blt/internal/app/repository"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
	"go.uber.org/zap"
)

// MaxExternalIDLength matches the width of universal_client.external_id.
const MaxExternalIDLength = 40

// CookieJar is the request-scoped cookie capability the resolver needs.
type CookieJar interface {
	// Get returns the request cookie value, or "" when absent.
	Get(name string) string
	// Set writes the cookie on the response.
	Set(name, value string)
}

// IdentityResolverDeps groups dependencies required by the identity resolver.
type IdentityResolverDeps struct {
	Logger     *zap.Logger
	Clients    apprepository.UniversalClientRepository
	Cache      apprepository.IdentityCache
	CookieName string
	// NewExternalID mints external ids; defaults to random UUIDv4 strings.
	NewExternalID func() string
}

// IdentityResolver maps the Beacon cookie (or a caller-supplied id) to a
// durable UniversalClient identity.
type IdentityResolver struct {
	logger        *zap.Logger
	clients       apprepository.UniversalClientRepository
	cache         apprepository.IdentityCache
	cookieName    string
	newExternalID func() string
}

// NewIdentityResolver creates a resolver with the provided dependencies.
func NewIdentityResolver(deps IdentityResolverDeps) *IdentityResolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cookieName := deps.CookieName
	if cookieName == "" {
		cookieName = "Beacon"
	}
	newID := deps.NewExternalID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &IdentityResolver{
		logger:        logger,
		clients:       deps.Clients,
		cache:         deps.Cache,
		cookieName:    cookieName,
		newExternalID: newID,
	}
}

// CookieName returns the name of the identity cookie.
func (r *IdentityResolver) CookieName() string {
	return r.cookieName
}

// ResolveByCookie returns the external id and universal client id for the
// request. A visitor without a valid cookie gets a fresh external id, a new
// UniversalClient and a cookie. A cookie value unknown to the store is adopted
// as-is and a client is minted for it without rewriting the cookie.
func (r *IdentityResolver) ResolveByCookie(ctx context.Context, jar CookieJar) (string, int64, error) {
	externalID := strings.TrimSpace(jar.Get(r.cookieName))
	if !validExternalID(externalID) {
		externalID = r.newExternalID()
		id, err := r.create(ctx, externalID)
		if err != nil {
			return "", 0, err
		}
		jar.Set(r.cookieName, externalID)
		return externalID, id, nil
	}

	id, err := r.lookupOrCreate(ctx, externalID)
	if err != nil {
		return "", 0, err
	}
	return externalID, id, nil
}

// ResolveByExternalID resolves an identifier tracked by the caller and forces
// the cookie to it so later browser requests land on the same identity.
func (r *IdentityResolver) ResolveByExternalID(ctx context.Context, jar CookieJar, externalID string) (int64, error) {
	externalID = strings.TrimSpace(externalID)
	if !validExternalID(externalID) {
		return 0, fmt.Errorf("%w: external id must be 1-%d characters", ErrValidation, MaxExternalIDLength)
	}

	id, err := r.lookupOrCreate(ctx, externalID)
	if err != nil {
		return 0, err
	}
	jar.Set(r.cookieName, externalID)
	return id, nil
}

func (r *IdentityResolver) lookupOrCreate(ctx context.Context, externalID string) (int64, error) {
	if id, ok := r.cached(ctx, externalID); ok {
		return id, nil
	}

	client, matches, err := r.clients.FindByExternalID(ctx, externalID)
	switch {
	case err == nil:
		if matches > 1 {
			// Undefined under the uniqueness rule; the oldest row wins.
			infraPrometheus.IdentityIntegrityWarnings.Inc()
			r.logger.Warn("multiple universal clients share an external id",
				zap.String("external_id", externalID),
				zap.Int64("selected_id", client.ID),
			)
		}
		r.remember(ctx, externalID, client.ID)
		return client.ID, nil
	case errors.Is(err, apprepository.ErrClientNotFound):
		return r.create(ctx, externalID)
	default:
		return 0, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
	}
}

func (r *IdentityResolver) create(ctx context.Context, externalID string) (int64, error) {
	client, created, err := r.clients.GetOrCreate(ctx, externalID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
	}
	if created {
		infraPrometheus.IdentitiesCreated.Inc()
		r.logger.Debug("universal client created",
			zap.String("external_id", externalID),
			zap.Int64("universal_client_id", client.ID),
		)
	}
	r.remember(ctx, externalID, client.ID)
	return client.ID, nil
}

func (r *IdentityResolver) cached(ctx context.Context, externalID string) (int64, bool) {
	if r.cache == nil {
		return 0, false
	}
	id, ok, err := r.cache.Get(ctx, externalID)
	if err != nil {
		infraPrometheus.IdentityCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("identity cache lookup failed", zap.Error(err))
		return 0, false
	}
	if !ok {
		infraPrometheus.IdentityCacheLookups.WithLabelValues("miss").Inc()
		return 0, false
	}
	infraPrometheus.IdentityCacheLookups.WithLabelValues("hit").Inc()
	return id, true
}

func (r *IdentityResolver) remember(ctx context.Context, externalID string, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, externalID, id); err != nil {
		r.logger.Warn("identity cache write failed", zap.Error(err))
	}
}

func validExternalID(id string) bool {
	return id != "" && len(id) <= MaxExternalIDLength
}
