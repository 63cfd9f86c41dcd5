package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sifan077/blt/internal/app/model"
)

var (
	// ErrClientNotFound signals that no live UniversalClient holds the external id.
	ErrClientNotFound = errors.New("universal client not found")
)

// UniversalClientRepository defines the data access contract for visitor identities.
type UniversalClientRepository interface {
	// FindByExternalID returns the oldest live client for the external id and
	// the number of live matches (capped at 2; anything above 1 is an
	// integrity violation).
	FindByExternalID(ctx context.Context, externalID string) (*model.UniversalClient, int, error)
	// GetOrCreate inserts a client for the external id unless a live one
	// already exists, in which case the existing row is returned.
	GetOrCreate(ctx context.Context, externalID string) (*model.UniversalClient, bool, error)
	// CountDuplicateExternalIDs counts external ids held by more than one live client.
	CountDuplicateExternalIDs(ctx context.Context) (int64, error)
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type universalClientRepository struct {
	db Querier
}

// NewUniversalClientRepository returns a pgx-backed UniversalClientRepository.
func NewUniversalClientRepository(db Querier) UniversalClientRepository {
	return &universalClientRepository{db: db}
}

const (
	findClientSQL = `
SELECT universal_client_id, external_id, date_created, is_deleted
FROM universal_client
WHERE external_id = $1 AND is_deleted = false
ORDER BY universal_client_id
LIMIT 2`

	// The conflict target matches the partial unique index created by the
	// migration, so concurrent first contacts converge on one row.
	insertClientSQL = `
INSERT INTO universal_client (external_id, date_created, is_deleted)
VALUES ($1, now(), false)
ON CONFLICT (external_id) WHERE is_deleted = false DO NOTHING
RETURNING universal_client_id, external_id, date_created, is_deleted`

	countDuplicatesSQL = `
SELECT count(*) FROM (
	SELECT external_id
	FROM universal_client
	WHERE is_deleted = false
	GROUP BY external_id
	HAVING count(*) > 1
) dup`
)

func (r *universalClientRepository) FindByExternalID(ctx context.Context, externalID string) (*model.UniversalClient, int, error) {
	rows, err := r.db.Query(ctx, findClientSQL, externalID)
	if err != nil {
		return nil, 0, fmt.Errorf("query universal client: %w", err)
	}

	clients, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.UniversalClient])
	if err != nil {
		return nil, 0, fmt.Errorf("scan universal client: %w", err)
	}
	if len(clients) == 0 {
		return nil, 0, ErrClientNotFound
	}

	return &clients[0], len(clients), nil
}

func (r *universalClientRepository) GetOrCreate(ctx context.Context, externalID string) (*model.UniversalClient, bool, error) {
	rows, err := r.db.Query(ctx, insertClientSQL, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("insert universal client: %w", err)
	}

	client, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.UniversalClient])
	if err == nil {
		return &client, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert universal client: %w", err)
	}

	// Lost the race to a concurrent insert; read the winner.
	existing, _, err := r.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("reload universal client: %w", err)
	}
	return existing, false, nil
}

func (r *universalClientRepository) CountDuplicateExternalIDs(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countDuplicatesSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count duplicate external ids: %w", err)
	}
	return count, nil
}
