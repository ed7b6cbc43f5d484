package campaigns

import (
	"context"
	"testing"

	"leadflow_backend/internal/campaigns/domain"
	"leadflow_backend/internal/events"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	campaigns map[uuid.UUID]Campaign
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{campaigns: make(map[uuid.UUID]Campaign)}
}

func (f *fakeStore) Create(_ context.Context, tenantID uuid.UUID, name string) (Campaign, error) {
	campaign := Campaign{ID: uuid.New(), TenantID: tenantID, Name: name, Status: domain.StatusDraft}
	f.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (f *fakeStore) GetByID(_ context.Context, id, tenantID uuid.UUID) (Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok || campaign.TenantID != tenantID {
		return Campaign{}, ErrCampaignNotFound
	}
	return campaign, nil
}

func (f *fakeStore) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]Campaign, error) {
	var result []Campaign
	for _, campaign := range f.campaigns {
		if campaign.TenantID == tenantID {
			result = append(result, campaign)
		}
	}
	return result, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, tenantID uuid.UUID, from, to domain.Status) (Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok || campaign.TenantID != tenantID || campaign.Status != from {
		return Campaign{}, ErrStaleCampaign
	}
	campaign.Status = to
	f.campaigns[id] = campaign
	f.updates++
	return campaign, nil
}

// syncBus runs handlers inline so tests observe published events deterministically.
type syncBus struct {
	published []events.Event
}

func (b *syncBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *syncBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *syncBus) Subscribe(string, events.Handler) {}

func newTestService(store *fakeStore, bus events.Bus) *Service {
	return NewService(store, domain.NewTransitionTable(), bus, logger.New("development"))
}

func TestApplyTransitionLegalEdge(t *testing.T) {
	store := newFakeStore()
	bus := &syncBus{}
	svc := newTestService(store, bus)
	tenantID := uuid.New()

	campaign, _ := store.Create(context.Background(), tenantID, "spring outreach")

	updated, err := svc.ApplyTransition(context.Background(), campaign.ID, tenantID, domain.StatusActive)
	if err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Errorf("status = %s, want ACTIVE", updated.Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if bus.published[0].EventName() != "campaigns.transition.applied" {
		t.Errorf("event = %s, want campaigns.transition.applied", bus.published[0].EventName())
	}
}

func TestApplyTransitionRejectsIllegalEdgeAndLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	bus := &syncBus{}
	svc := newTestService(store, bus)
	tenantID := uuid.New()

	campaign, _ := store.Create(context.Background(), tenantID, "spring outreach")
	for _, target := range []domain.Status{domain.StatusActive, domain.StatusCompleted, domain.StatusArchived} {
		if _, err := svc.ApplyTransition(context.Background(), campaign.ID, tenantID, target); err != nil {
			t.Fatalf("setup transition to %s: %v", target, err)
		}
	}

	// Campaign is now ARCHIVED; every outgoing edge must fail.
	for _, target := range domain.Statuses() {
		_, err := svc.ApplyTransition(context.Background(), campaign.ID, tenantID, target)
		if !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("ARCHIVED -> %s: got %v, want conflict", target, err)
		}
	}

	stored, _ := store.GetByID(context.Background(), campaign.ID, tenantID)
	if stored.Status != domain.StatusArchived {
		t.Errorf("stored status = %s, want ARCHIVED", stored.Status)
	}
}

func TestApplyTransitionPublishesRejectionEvent(t *testing.T) {
	store := newFakeStore()
	bus := &syncBus{}
	svc := newTestService(store, bus)
	tenantID := uuid.New()

	campaign, _ := store.Create(context.Background(), tenantID, "spring outreach")

	_, err := svc.ApplyTransition(context.Background(), campaign.ID, tenantID, domain.StatusPaused)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("DRAFT -> PAUSED: got %v, want conflict", err)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "campaigns.transition.rejected" {
		t.Errorf("expected a single campaigns.transition.rejected event, got %v", bus.published)
	}
	if store.updates != 0 {
		t.Errorf("store updates = %d, want 0", store.updates)
	}
}

func TestApplyTransitionUnknownTarget(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &syncBus{})
	tenantID := uuid.New()
	campaign, _ := store.Create(context.Background(), tenantID, "spring outreach")

	_, err := svc.ApplyTransition(context.Background(), campaign.ID, tenantID, "DELETED")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown target: got %v, want validation error", err)
	}
}

func TestApplyTransitionUnknownCampaign(t *testing.T) {
	svc := newTestService(newFakeStore(), &syncBus{})

	_, err := svc.ApplyTransition(context.Background(), uuid.New(), uuid.New(), domain.StatusActive)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown campaign: got %v, want not found", err)
	}
}
