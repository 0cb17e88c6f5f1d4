package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"palestra/internal/domain/announcement"
	"palestra/internal/domain/member"
	"palestra/internal/domain/outbox"
)

// mockAnnouncementStore implements AnnouncementStoreForOrchestrator.
type mockAnnouncementStore struct {
	announcements map[string]announcement.Announcement
}

func newMockAnnouncementStore() *mockAnnouncementStore {
	return &mockAnnouncementStore{announcements: make(map[string]announcement.Announcement)}
}

func (m *mockAnnouncementStore) GetByID(_ context.Context, id string) (announcement.Announcement, error) {
	a, ok := m.announcements[id]
	if !ok {
		return announcement.Announcement{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAnnouncementStore) Save(_ context.Context, a announcement.Announcement) error {
	m.announcements[a.ID] = a
	return nil
}

func (m *mockAnnouncementStore) Delete(_ context.Context, id string) error {
	delete(m.announcements, id)
	return nil
}

// --- ExecuteCreateAnnouncement tests ---

// TestExecuteCreateAnnouncement_Valid tests drafting an announcement.
func TestExecuteCreateAnnouncement_Valid(t *testing.T) {
	store := newMockAnnouncementStore()
	a, err := ExecuteCreateAnnouncement(context.Background(), CreateAnnouncementInput{
		Title:      "Chiusura di Ferragosto",
		Content:    "La palestra resta **chiusa** il 15 agosto.",
		AuthorName: "Anna Verdi",
		CreatedBy:  "op-1",
	}, CreateAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != announcement.StatusDraft {
		t.Errorf("expected draft status, got %s", a.Status)
	}
	if a.Color != announcement.ColorOrange {
		t.Errorf("expected default orange color, got %s", a.Color)
	}
	if _, ok := store.announcements["test-id-001"]; !ok {
		t.Error("expected announcement to be persisted")
	}
}

// TestExecuteCreateAnnouncement_MissingCreator tests rejection without a creator.
func TestExecuteCreateAnnouncement_MissingCreator(t *testing.T) {
	store := newMockAnnouncementStore()
	_, err := ExecuteCreateAnnouncement(context.Background(), CreateAnnouncementInput{
		Title:   "Test",
		Content: "content",
	}, CreateAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if err == nil {
		t.Error("expected error for missing creator")
	}
}

// --- ExecuteUpdateAnnouncement tests ---

// TestExecuteUpdateAnnouncement_PinToggle tests pinning through an update.
func TestExecuteUpdateAnnouncement_PinToggle(t *testing.T) {
	store := newMockAnnouncementStore()
	store.announcements["a-1"] = announcement.Announcement{
		ID: "a-1", Status: announcement.StatusPublished,
		Title: "Orari", Content: "testo", CreatedBy: "op-1",
		Color: announcement.ColorOrange,
	}

	a, err := ExecuteUpdateAnnouncement(context.Background(), UpdateAnnouncementInput{
		AnnouncementID: "a-1",
		Title:          "Orari estivi",
		Content:        "testo aggiornato",
		Color:          announcement.ColorGreen,
		Pinned:         true,
	}, UpdateAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Pinned {
		t.Error("expected announcement to be pinned")
	}
	if a.Title != "Orari estivi" {
		t.Errorf("expected updated title, got %s", a.Title)
	}
	if a.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

// TestExecuteUpdateAnnouncement_NotFound tests updating a missing announcement.
func TestExecuteUpdateAnnouncement_NotFound(t *testing.T) {
	store := newMockAnnouncementStore()
	_, err := ExecuteUpdateAnnouncement(context.Background(), UpdateAnnouncementInput{
		AnnouncementID: "missing",
		Title:          "Test",
		Content:        "content",
		Color:          announcement.ColorOrange,
	}, UpdateAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if !errors.Is(err, ErrAnnouncementNotFound) {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

// --- ExecutePublishAnnouncement tests ---

func draftAnnouncement(store *mockAnnouncementStore, id string) {
	store.announcements[id] = announcement.Announcement{
		ID: id, Status: announcement.StatusDraft,
		Title: "Nuovi orari estivi", Content: "Dal primo giugno apriamo alle **6**.",
		CreatedBy: "op-1", Color: announcement.ColorOrange, CreatedAt: fixedTime,
	}
}

// TestExecutePublishAnnouncement_NoBroadcast tests a plain publish.
func TestExecutePublishAnnouncement_NoBroadcast(t *testing.T) {
	store := newMockAnnouncementStore()
	draftAnnouncement(store, "a-1")

	a, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "a-1",
		PublisherID:    "op-1",
	}, PublishAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != announcement.StatusPublished {
		t.Errorf("expected published status, got %s", a.Status)
	}
	if a.PublishedBy != "op-1" {
		t.Errorf("expected PublishedBy=op-1, got %s", a.PublishedBy)
	}
}

// TestExecutePublishAnnouncement_BroadcastEnqueues tests that broadcast
// enqueues one outbox entry addressed to active members only.
func TestExecutePublishAnnouncement_BroadcastEnqueues(t *testing.T) {
	store := newMockAnnouncementStore()
	draftAnnouncement(store, "a-1")

	members := newMockMemberStore()
	members.members["m-1"] = member.Member{
		ID: "m-1", FirstName: "Giulia", LastName: "Bianchi",
		Email: "giulia@example.com", MemberNumber: "M0001", Status: member.StatusActive,
	}
	members.members["m-2"] = member.Member{
		ID: "m-2", FirstName: "Marco", LastName: "Rossi",
		Email: "marco@example.com", MemberNumber: "M0002", Status: member.StatusSuspended,
	}
	outboxStore := newMockOutboxStore()

	_, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "a-1",
		PublisherID:    "op-1",
		Broadcast:      true,
	}, PublishAnnouncementDeps{
		AnnouncementStore: store,
		MemberStore:       members,
		OutboxStore:       outboxStore,
		GenerateID:        seqID(),
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outboxStore.entries) != 1 {
		t.Fatalf("expected 1 outbox entry, got %d", len(outboxStore.entries))
	}
	for _, e := range outboxStore.entries {
		if e.ActionType != outbox.ActionTypeAnnouncement {
			t.Errorf("expected announcement action type, got %s", e.ActionType)
		}
		var p AnnouncementEmailPayload
		if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(p.Recipients) != 1 || p.Recipients[0] != "giulia@example.com" {
			t.Errorf("expected only the active member as recipient, got %v", p.Recipients)
		}
		if p.Subject != "Nuovi orari estivi" {
			t.Errorf("expected announcement title as subject, got %q", p.Subject)
		}
		if !strings.Contains(p.HTML, "<strong>6</strong>") {
			t.Errorf("expected markdown rendered to HTML, got %q", p.HTML)
		}
	}
}

// TestExecutePublishAnnouncement_AlreadyPublished tests double publishing.
func TestExecutePublishAnnouncement_AlreadyPublished(t *testing.T) {
	store := newMockAnnouncementStore()
	store.announcements["a-1"] = announcement.Announcement{
		ID: "a-1", Status: announcement.StatusPublished,
		Title: "Test", Content: "content", CreatedBy: "op-1",
		Color: announcement.ColorOrange,
	}

	_, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "a-1",
		PublisherID:    "op-1",
	}, PublishAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if !errors.Is(err, announcement.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
}

// --- ExecuteDeleteAnnouncement tests ---

// TestExecuteDeleteAnnouncement_Valid tests removing an announcement.
func TestExecuteDeleteAnnouncement_Valid(t *testing.T) {
	store := newMockAnnouncementStore()
	draftAnnouncement(store, "a-1")

	err := ExecuteDeleteAnnouncement(context.Background(), DeleteAnnouncementInput{
		AnnouncementID: "a-1",
		ActorID:        "op-1",
	}, DeleteAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.announcements["a-1"]; ok {
		t.Error("expected announcement to be deleted")
	}
}

// TestExecuteDeleteAnnouncement_NotFound tests deleting a missing announcement.
func TestExecuteDeleteAnnouncement_NotFound(t *testing.T) {
	store := newMockAnnouncementStore()
	err := ExecuteDeleteAnnouncement(context.Background(), DeleteAnnouncementInput{
		AnnouncementID: "missing",
	}, DeleteAnnouncementDeps{
		AnnouncementStore: store,
		GenerateID:        fixedID,
		Now:               fixedNow,
	})
	if !errors.Is(err, ErrAnnouncementNotFound) {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
}
