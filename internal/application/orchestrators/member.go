package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/audit"
	"palestra/internal/domain/member"
)

// MemberStoreForOrchestrator defines the store interface needed by member orchestrators.
type MemberStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ErrMemberNotFound is returned when the referenced member does not exist.
var ErrMemberNotFound = errors.New("member not found")

// --- Create Member ---

// CreateMemberInput carries input for the create member orchestrator.
type CreateMemberInput struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Company            string
	Birthdate          string
	Gender             string
	MedicalCertificate bool
	ActorID            string
	ActorEmail         string
}

// CreateMemberDeps holds dependencies for CreateMember.
type CreateMemberDeps struct {
	MemberStore MemberStoreForOrchestrator
	AuditStore  AuditStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateMember registers a new gym member with a generated member
// number and user code.
// PRE: FirstName, LastName and Email are non-empty
// POST: Member persisted with active status
func ExecuteCreateMember(ctx context.Context, input CreateMemberInput, deps CreateMemberDeps) (member.Member, error) {
	now := deps.Now()

	count, err := deps.MemberStore.Count(ctx)
	if err != nil {
		return member.Member{}, fmt.Errorf("failed to count members: %w", err)
	}

	m := member.Member{
		ID:                 deps.GenerateID(),
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              input.Email,
		Phone:              input.Phone,
		Company:            input.Company,
		Birthdate:          input.Birthdate,
		Gender:             input.Gender,
		MemberNumber:       fmt.Sprintf("M%04d", count+1),
		UserCode:           deps.GenerateID()[:8],
		Status:             member.StatusActive,
		MedicalCertificate: input.MedicalCertificate,
		RegisteredAt:       now,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, fmt.Errorf("failed to save member: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategoryMember, audit.ActionCreate, input.ActorID, input.ActorEmail).
		WithResource("member", m.ID).
		WithDescription(fmt.Sprintf("member %s registered", m.FullName())))

	slog.Info("member_created", "member_id", m.ID, "member_number", m.MemberNumber)
	return m, nil
}

// --- Update Member ---

// UpdateMemberInput carries input for the update member orchestrator.
// Histories are not editable through this operation.
type UpdateMemberInput struct {
	MemberID           string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Company            string
	Birthdate          string
	Gender             string
	Status             string
	MedicalCertificate bool
	ActorID            string
	ActorEmail         string
}

// UpdateMemberDeps holds dependencies for UpdateMember.
type UpdateMemberDeps struct {
	MemberStore MemberStoreForOrchestrator
	AuditStore  AuditStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteUpdateMember updates a member's profile fields.
// PRE: MemberID references an existing member
// POST: Profile fields updated; member number, user code and histories unchanged
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) (member.Member, error) {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, ErrMemberNotFound
	}

	m.FirstName = input.FirstName
	m.LastName = input.LastName
	m.Email = input.Email
	m.Phone = input.Phone
	m.Company = input.Company
	m.Birthdate = input.Birthdate
	m.Gender = input.Gender
	m.MedicalCertificate = input.MedicalCertificate
	if input.Status != "" {
		m.Status = input.Status
	}

	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, fmt.Errorf("failed to save member: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategoryMember, audit.ActionUpdate, input.ActorID, input.ActorEmail).
		WithResource("member", m.ID).
		WithDescription(fmt.Sprintf("member %s updated", m.FullName())))

	slog.Info("member_updated", "member_id", m.ID)
	return m, nil
}

// --- Delete Member ---

// DeleteMemberInput carries input for the delete member orchestrator.
type DeleteMemberInput struct {
	MemberID   string
	ActorID    string
	ActorEmail string
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore MemberStoreForOrchestrator
	AuditStore  AuditStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteDeleteMember removes a member and their history.
// PRE: MemberID references an existing member
// POST: Member and child rows are removed
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return ErrMemberNotFound
	}

	if err := deps.MemberStore.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategoryMember, audit.ActionDelete, input.ActorID, input.ActorEmail).
		WithSeverity(audit.SeverityWarning).
		WithResource("member", m.ID).
		WithDescription(fmt.Sprintf("member %s deleted", m.FullName())))

	slog.Info("member_deleted", "member_id", m.ID)
	return nil
}
