package handler

import (
	"context"
	"sync"
	"time"

	"github.com/sifan077/blt/internal/app/model"
	"github.com/sifan077/blt/internal/app/repository"
)

type memoryStore struct {
	mu      sync.Mutex
	clients []model.UniversalClient
	events  []model.CampaignEvent
	audits  []model.Audit
}

func (s *memoryStore) FindByExternalID(ctx context.Context, externalID string) (*model.UniversalClient, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(externalID)
}

func (s *memoryStore) findLocked(externalID string) (*model.UniversalClient, int, error) {
	for i := range s.clients {
		if s.clients[i].ExternalID == externalID {
			row := s.clients[i]
			return &row, 1, nil
		}
	}
	return nil, 0, repository.ErrClientNotFound
}

func (s *memoryStore) GetOrCreate(ctx context.Context, externalID string) (*model.UniversalClient, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, _, err := s.findLocked(externalID); err == nil {
		return row, false, nil
	}
	row := model.UniversalClient{ID: int64(len(s.clients) + 1), ExternalID: externalID, CreatedAt: time.Now()}
	s.clients = append(s.clients, row)
	return &row, true, nil
}

func (s *memoryStore) CountDuplicateExternalIDs(ctx context.Context) (int64, error) {
	return 0, nil
}

type memoryEvents struct{ *memoryStore }

func (s memoryEvents) CreateWithAttributes(ctx context.Context, event *model.CampaignEvent, attrs []model.CampaignEventAttribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = int64(len(s.events) + 1)
	for i := range attrs {
		attrs[i].CampaignEventID = event.ID
	}
	event.Attributes = attrs
	s.events = append(s.events, *event)
	return nil
}

type memoryAudits struct{ *memoryStore }

func (s memoryAudits) Create(ctx context.Context, audit *model.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	audit.ID = int64(len(s.audits) + 1)
	s.audits = append(s.audits, *audit)
	return nil
}
