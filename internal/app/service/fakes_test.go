package service

import (
	"context"
	"sync"
	"time"

	"github.com/sifan077/blt/internal/app/model"
	"github.com/sifan077/blt/internal/app/repository"
	"github.com/stretchr/testify/mock"
)

type memoryClientRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.UniversalClient

	findFn      func(ctx context.Context, externalID string) (*model.UniversalClient, int, error)
	getOrCreate func(ctx context.Context, externalID string) (*model.UniversalClient, bool, error)
	countFn     func(ctx context.Context) (int64, error)

	findCalls   int
	createCalls int
}

func (m *memoryClientRepository) FindByExternalID(ctx context.Context, externalID string) (*model.UniversalClient, int, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()
	if m.findFn != nil {
		return m.findFn(ctx, externalID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(externalID)
}

func (m *memoryClientRepository) findLocked(externalID string) (*model.UniversalClient, int, error) {
	var (
		first   *model.UniversalClient
		matches int
	)
	for i := range m.rows {
		if m.rows[i].ExternalID != externalID || m.rows[i].IsDeleted {
			continue
		}
		if first == nil {
			row := m.rows[i]
			first = &row
		}
		matches++
	}
	if first == nil {
		return nil, 0, repository.ErrClientNotFound
	}
	return first, matches, nil
}

func (m *memoryClientRepository) GetOrCreate(ctx context.Context, externalID string) (*model.UniversalClient, bool, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.getOrCreate != nil {
		return m.getOrCreate(ctx, externalID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, _, err := m.findLocked(externalID); err == nil {
		return existing, false, nil
	}
	m.nextID++
	row := model.UniversalClient{ID: m.nextID, ExternalID: externalID, CreatedAt: time.Now()}
	m.rows = append(m.rows, row)
	return &row, true, nil
}

func (m *memoryClientRepository) CountDuplicateExternalIDs(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *memoryClientRepository) seed(externalID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append(m.rows, model.UniversalClient{ID: m.nextID, ExternalID: externalID})
	return m.nextID
}

func (m *memoryClientRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryEventRepository struct {
	mu     sync.Mutex
	nextID int64
	events []model.CampaignEvent
	err    error
}

func (m *memoryEventRepository) CreateWithAttributes(ctx context.Context, event *model.CampaignEvent, attrs []model.CampaignEventAttribute) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	event.ID = m.nextID
	for i := range attrs {
		attrs[i].CampaignEventID = event.ID
	}
	event.Attributes = attrs
	m.events = append(m.events, *event)
	return nil
}

type memoryAuditRepository struct {
	mu     sync.Mutex
	audits []model.Audit
	err    error
}

func (m *memoryAuditRepository) Create(ctx context.Context, audit *model.Audit) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	audit.ID = int64(len(m.audits) + 1)
	m.audits = append(m.audits, *audit)
	return nil
}

type fakeCookieJar struct {
	mu      sync.Mutex
	request map[string]string
	written map[string]string
}

func newCookieJar(request map[string]string) *fakeCookieJar {
	if request == nil {
		request = map[string]string{}
	}
	return &fakeCookieJar{request: request, written: map[string]string{}}
}

func (j *fakeCookieJar) Get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.request[name]
}

func (j *fakeCookieJar) Set(name, value string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.written[name] = value
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []model.Task
	errFn func(task model.Task) error
}

func (q *recordingQueue) Enqueue(ctx context.Context, task model.Task) error {
	if q.errFn != nil {
		if err := q.errFn(task); err != nil {
			return err
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) ofKind(kind model.TaskKind) []model.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []model.Task
	for _, t := range q.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

type mockIdentityCache struct {
	mock.Mock
}

func (m *mockIdentityCache) Get(ctx context.Context, externalID string) (int64, bool, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockIdentityCache) Set(ctx context.Context, externalID string, universalClientID int64) error {
	args := m.Called(ctx, externalID, universalClientID)
	return args.Error(0)
}

func sequentialIDs(ids ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id
	}
}
