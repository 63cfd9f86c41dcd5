package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sifan077/blt/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientColumns = []pgconn.FieldDescription{
	{Name: "universal_client_id"},
	{Name: "external_id"},
	{Name: "date_created"},
	{Name: "is_deleted"},
}

// fakeRows serves UniversalClient rows in column order.
type fakeRows struct {
	rows []model.UniversalClient
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return clientColumns }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) current() model.UniversalClient {
	return r.rows[r.pos-1]
}

func (r *fakeRows) Values() ([]any, error) {
	c := r.current()
	return []any{c.ID, c.ExternalID, c.CreatedAt, c.IsDeleted}, nil
}

func (r *fakeRows) Scan(dest ...any) error {
	c := r.current()
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = c.ID
		case *string:
			*p = c.ExternalID
		case *time.Time:
			*p = c.CreatedAt
		case *bool:
			*p = c.IsDeleted
		default:
			return fmt.Errorf("unexpected scan target %d: %T", i, d)
		}
	}
	return nil
}

type countRow struct {
	count int64
	err   error
}

func (r countRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.count
	return nil
}

type fakeQuerier struct {
	inserted []model.UniversalClient
	existing []model.UniversalClient
	queryErr error
	count    countRow
	queries  []string
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, strings.TrimSpace(sql))
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if strings.Contains(sql, "INSERT INTO universal_client") {
		return &fakeRows{rows: q.inserted}, nil
	}
	return &fakeRows{rows: q.existing}, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.count
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func TestFindByExternalID(t *testing.T) {
	q := &fakeQuerier{existing: []model.UniversalClient{
		{ID: 3, ExternalID: "abc"},
		{ID: 8, ExternalID: "abc"},
	}}
	repo := NewUniversalClientRepository(q)

	client, matches, err := repo.FindByExternalID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), client.ID)
	assert.Equal(t, 2, matches)
}

func TestFindByExternalID_NotFound(t *testing.T) {
	repo := NewUniversalClientRepository(&fakeQuerier{})

	_, _, err := repo.FindByExternalID(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestGetOrCreate_Inserted(t *testing.T) {
	q := &fakeQuerier{inserted: []model.UniversalClient{{ID: 11, ExternalID: "abc"}}}
	repo := NewUniversalClientRepository(q)

	client, created, err := repo.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(11), client.ID)
	assert.Len(t, q.queries, 1)
}

func TestGetOrCreate_ConflictReadsWinner(t *testing.T) {
	q := &fakeQuerier{existing: []model.UniversalClient{{ID: 4, ExternalID: "abc"}}}
	repo := NewUniversalClientRepository(q)

	client, created, err := repo.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(4), client.ID)
	require.Len(t, q.queries, 2)
	assert.True(t, strings.HasPrefix(q.queries[1], "SELECT"))
}

func TestGetOrCreate_QueryFailure(t *testing.T) {
	repo := NewUniversalClientRepository(&fakeQuerier{queryErr: errors.New("conn busy")})

	_, _, err := repo.GetOrCreate(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn busy")
}

func TestCountDuplicateExternalIDs(t *testing.T) {
	repo := NewUniversalClientRepository(&fakeQuerier{count: countRow{count: 2}})

	count, err := repo.CountDuplicateExternalIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	repo = NewUniversalClientRepository(&fakeQuerier{count: countRow{err: errors.New("timeout")}})
	_, err = repo.CountDuplicateExternalIDs(context.Background())
	assert.Error(t, err)
}
