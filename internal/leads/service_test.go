package leads

import (
	"context"
	"testing"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads       map[uuid.UUID]domain.Lead
	replies     []string
	staleBudget int
	updates     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]domain.Lead)}
}

func (f *fakeStore) Create(_ context.Context, tenantID uuid.UUID, name string, email, phone *string) (domain.Lead, error) {
	lead := domain.Lead{ID: uuid.New(), TenantID: tenantID, Name: name, Email: email, Phone: phone, Version: 1}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id, tenantID uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

func (f *fakeStore) UpdateEnrichedFields(_ context.Context, lead domain.Lead) error {
	if f.staleBudget > 0 {
		f.staleBudget--
		// Simulate a concurrent writer bumping the version.
		current := f.leads[lead.ID]
		current.Version++
		f.leads[lead.ID] = current
		return ErrStaleLead
	}
	lead.Version++
	f.leads[lead.ID] = lead
	f.updates++
	return nil
}

func (f *fakeStore) RecordReply(_ context.Context, _, _ uuid.UUID, replyID, _ string) error {
	f.replies = append(f.replies, replyID)
	return nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event) {}

func (nopBus) PublishSync(context.Context, events.Event) error { return nil }

func (nopBus) Subscribe(string, events.Handler) {}

func str(s string) *string { return &s }

func TestMergeEnrichedFieldsRetriesStaleVersion(t *testing.T) {
	store := newFakeStore()
	store.staleBudget = 2
	svc := NewService(store, nopBus{}, logger.New("development"))
	tenantID := uuid.New()
	lead, _ := store.Create(context.Background(), tenantID, "Ada", nil, nil)

	changed, err := svc.MergeEnrichedFields(context.Background(), lead.ID, tenantID, domain.FieldPatch{Company: str("Acme")})
	if err != nil {
		t.Fatalf("MergeEnrichedFields: %v", err)
	}
	if !changed {
		t.Error("merge must report a change")
	}
	if store.updates != 1 {
		t.Errorf("successful updates = %d, want 1", store.updates)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID, tenantID)
	if stored.Company == nil || *stored.Company != "Acme" {
		t.Errorf("company = %v, want Acme", stored.Company)
	}
}

func TestMergeEnrichedFieldsGivesUpAfterRetries(t *testing.T) {
	store := newFakeStore()
	store.staleBudget = 10
	svc := NewService(store, nopBus{}, logger.New("development"))
	tenantID := uuid.New()
	lead, _ := store.Create(context.Background(), tenantID, "Ada", nil, nil)

	_, err := svc.MergeEnrichedFields(context.Background(), lead.ID, tenantID, domain.FieldPatch{Company: str("Acme")})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("got %v, want conflict after exhausted retries", err)
	}
}

func TestMergeEnrichedFieldsUnknownLead(t *testing.T) {
	svc := NewService(newFakeStore(), nopBus{}, logger.New("development"))

	_, err := svc.MergeEnrichedFields(context.Background(), uuid.New(), uuid.New(), domain.FieldPatch{Company: str("Acme")})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestRecordReplyUnknownLead(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nopBus{}, logger.New("development"))

	err := svc.RecordReply(context.Background(), uuid.New(), uuid.New(), "r-1", "hello")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("got %v, want not found", err)
	}
	if len(store.replies) != 0 {
		t.Error("reply must not be stored for an unknown lead")
	}
}

func TestCreateNormalizesPhone(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nopBus{}, logger.New("development"))

	lead, err := svc.Create(context.Background(), uuid.New(), "Ada", nil, str("(415) 555-2671"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lead.Phone == nil || *lead.Phone != "+14155552671" {
		t.Errorf("phone = %v, want +14155552671", lead.Phone)
	}
}
