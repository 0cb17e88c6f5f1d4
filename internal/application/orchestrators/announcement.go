package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"palestra/internal/domain/announcement"
	"palestra/internal/domain/audit"
	"palestra/internal/domain/member"
	"palestra/internal/domain/outbox"
)

// AnnouncementStoreForOrchestrator defines the store interface needed by
// announcement orchestrators.
type AnnouncementStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Save(ctx context.Context, a announcement.Announcement) error
	Delete(ctx context.Context, id string) error
}

// MemberStoreForBroadcast lists the recipients of an announcement email.
type MemberStoreForBroadcast interface {
	ListWithHistory(ctx context.Context) ([]member.Member, error)
}

// AnnouncementEmailPayload is the outbox payload for an announcement broadcast.
type AnnouncementEmailPayload struct {
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Recipients []string `json:"recipients"`
}

// ErrAnnouncementNotFound is returned when the referenced announcement does not exist.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// emailRenderer renders announcement markdown for email bodies. Raw HTML
// in the source is escaped.
var emailRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// --- Create Announcement ---

// CreateAnnouncementInput carries input for the create announcement orchestrator.
type CreateAnnouncementInput struct {
	Title        string
	Content      string
	AuthorName   string
	Color        string
	VisibleFrom  time.Time
	VisibleUntil time.Time
	CreatedBy    string
	ActorEmail   string
}

// CreateAnnouncementDeps holds dependencies for CreateAnnouncement.
type CreateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	AuditStore        AuditStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateAnnouncement creates an announcement in draft status.
// PRE: Title and Content are non-empty; CreatedBy is non-empty
// POST: Announcement created as draft with generated ID
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (announcement.Announcement, error) {
	if input.CreatedBy == "" {
		return announcement.Announcement{}, errors.New("creator operator ID is required")
	}

	color := input.Color
	if color == "" {
		color = announcement.ColorOrange
	}

	now := deps.Now()
	a := announcement.Announcement{
		ID:           deps.GenerateID(),
		Status:       announcement.StatusDraft,
		Title:        input.Title,
		Content:      input.Content,
		CreatedBy:    input.CreatedBy,
		AuthorName:   input.AuthorName,
		Color:        color,
		VisibleFrom:  input.VisibleFrom,
		VisibleUntil: input.VisibleUntil,
		CreatedAt:    now,
	}
	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, fmt.Errorf("failed to save announcement: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategorySystem, audit.ActionCreate, input.CreatedBy, input.ActorEmail).
		WithResource("announcement", a.ID).
		WithDescription(fmt.Sprintf("announcement %q drafted", a.Title)))

	slog.Info("announcement_created", "announcement_id", a.ID)
	return a, nil
}

// --- Update Announcement ---

// UpdateAnnouncementInput carries input for the update announcement orchestrator.
type UpdateAnnouncementInput struct {
	AnnouncementID string
	Title          string
	Content        string
	AuthorName     string
	Color          string
	Pinned         bool
	VisibleFrom    time.Time
	VisibleUntil   time.Time
	ActorID        string
	ActorEmail     string
}

// UpdateAnnouncementDeps holds dependencies for UpdateAnnouncement.
type UpdateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	AuditStore        AuditStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteUpdateAnnouncement updates an announcement's content and display fields.
// PRE: AnnouncementID references an existing announcement
// POST: Fields updated, UpdatedAt set
func ExecuteUpdateAnnouncement(ctx context.Context, input UpdateAnnouncementInput, deps UpdateAnnouncementDeps) (announcement.Announcement, error) {
	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return announcement.Announcement{}, ErrAnnouncementNotFound
	}

	now := deps.Now()
	a.Title = input.Title
	a.Content = input.Content
	a.AuthorName = input.AuthorName
	a.Color = input.Color
	a.VisibleFrom = input.VisibleFrom
	a.VisibleUntil = input.VisibleUntil
	a.UpdatedAt = now
	if input.Pinned && !a.Pinned {
		a.Pin(now)
	} else if !input.Pinned && a.Pinned {
		a.Unpin()
	}

	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}
	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, fmt.Errorf("failed to save announcement: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategorySystem, audit.ActionUpdate, input.ActorID, input.ActorEmail).
		WithResource("announcement", a.ID).
		WithDescription(fmt.Sprintf("announcement %q updated", a.Title)))

	return a, nil
}

// --- Publish Announcement ---

// PublishAnnouncementInput carries input for the publish orchestrator.
type PublishAnnouncementInput struct {
	AnnouncementID string
	PublisherID    string
	ActorEmail     string
	// Broadcast enqueues an email to every active member on publish.
	Broadcast bool
}

// PublishAnnouncementDeps holds dependencies for PublishAnnouncement.
type PublishAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	MemberStore       MemberStoreForBroadcast
	OutboxStore       OutboxStoreForReset
	AuditStore        AuditStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecutePublishAnnouncement publishes a draft and optionally enqueues a
// broadcast email to active members.
// PRE: Announcement is in draft status
// POST: Status published; broadcast entry enqueued when requested
func ExecutePublishAnnouncement(ctx context.Context, input PublishAnnouncementInput, deps PublishAnnouncementDeps) (announcement.Announcement, error) {
	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return announcement.Announcement{}, ErrAnnouncementNotFound
	}

	now := deps.Now()
	if err := a.Publish(input.PublisherID, now); err != nil {
		return announcement.Announcement{}, err
	}
	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, fmt.Errorf("failed to save announcement: %w", err)
	}

	if input.Broadcast {
		if err := enqueueBroadcast(ctx, a, deps, now); err != nil {
			return announcement.Announcement{}, err
		}
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategorySystem, audit.ActionUpdate, input.PublisherID, input.ActorEmail).
		WithResource("announcement", a.ID).
		WithDescription(fmt.Sprintf("announcement %q published", a.Title)))

	slog.Info("announcement_published", "announcement_id", a.ID, "broadcast", input.Broadcast)
	return a, nil
}

// enqueueBroadcast renders the announcement body and enqueues one outbox
// entry carrying every active member address.
func enqueueBroadcast(ctx context.Context, a announcement.Announcement, deps PublishAnnouncementDeps, now time.Time) error {
	members, err := deps.MemberStore.ListWithHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	var recipients []string
	for _, m := range members {
		if m.Status == member.StatusActive && m.Email != "" {
			recipients = append(recipients, m.Email)
		}
	}
	if len(recipients) == 0 {
		slog.Info("announcement_broadcast_skipped", "announcement_id", a.ID, "reason", "no_recipients")
		return nil
	}

	var body bytes.Buffer
	if err := emailRenderer.Convert([]byte(a.Content), &body); err != nil {
		return fmt.Errorf("failed to render announcement: %w", err)
	}

	payload, err := json.Marshal(AnnouncementEmailPayload{
		Subject:    a.Title,
		HTML:       body.String(),
		Recipients: recipients,
	})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast payload: %w", err)
	}

	entry := outbox.Entry{
		ID:          deps.GenerateID(),
		ActionType:  outbox.ActionTypeAnnouncement,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return deps.OutboxStore.Save(ctx, entry)
}

// --- Delete Announcement ---

// DeleteAnnouncementInput carries input for the delete orchestrator.
type DeleteAnnouncementInput struct {
	AnnouncementID string
	ActorID        string
	ActorEmail     string
}

// DeleteAnnouncementDeps holds dependencies for DeleteAnnouncement.
type DeleteAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	AuditStore        AuditStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteDeleteAnnouncement removes an announcement.
// PRE: AnnouncementID references an existing announcement
// POST: Announcement removed
func ExecuteDeleteAnnouncement(ctx context.Context, input DeleteAnnouncementInput, deps DeleteAnnouncementDeps) error {
	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return ErrAnnouncementNotFound
	}

	if err := deps.AnnouncementStore.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategorySystem, audit.ActionDelete, input.ActorID, input.ActorEmail).
		WithResource("announcement", a.ID).
		WithDescription(fmt.Sprintf("announcement %q deleted", a.Title)))

	return nil
}
