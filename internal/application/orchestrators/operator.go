package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/audit"
	"palestra/internal/domain/operator"
)

// OperatorStoreForAdmin defines the store interface needed by operator
// management orchestrators.
type OperatorStoreForAdmin interface {
	GetByID(ctx context.Context, id string) (operator.Operator, error)
	GetByEmail(ctx context.Context, email string) (operator.Operator, error)
	Save(ctx context.Context, o operator.Operator) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

var (
	// ErrOperatorNotFound is returned when the referenced operator does not exist.
	ErrOperatorNotFound = errors.New("operator not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("an operator with this email already exists")
	// ErrLastAdmin is returned when deleting the only remaining admin.
	ErrLastAdmin = errors.New("cannot delete the last administrator")
)

// --- Create Operator ---

// CreateOperatorInput carries input for the create operator orchestrator.
type CreateOperatorInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Birthdate  string
	Gender     string
	Role       string
	Password   string
	ActorID    string
	ActorEmail string
}

// CreateOperatorDeps holds dependencies for CreateOperator.
type CreateOperatorDeps struct {
	OperatorStore OperatorStoreForAdmin
	AuditStore    AuditStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreateOperator creates a back-office operator account.
// PRE: Email is not yet registered; Password meets the length policy
// POST: Operator persisted with hashed password and active status
func ExecuteCreateOperator(ctx context.Context, input CreateOperatorInput, deps CreateOperatorDeps) (operator.Operator, error) {
	if _, err := deps.OperatorStore.GetByEmail(ctx, input.Email); err == nil {
		return operator.Operator{}, ErrEmailTaken
	}

	now := deps.Now()
	op := operator.Operator{
		ID:           deps.GenerateID(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Birthdate:    input.Birthdate,
		Gender:       input.Gender,
		Role:         input.Role,
		Status:       operator.StatusActive,
		RegisteredAt: now,
	}
	if err := op.Validate(); err != nil {
		return operator.Operator{}, err
	}
	if err := op.SetPassword(input.Password); err != nil {
		return operator.Operator{}, err
	}

	if err := deps.OperatorStore.Save(ctx, op); err != nil {
		return operator.Operator{}, fmt.Errorf("failed to save operator: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategoryOperator, audit.ActionCreate, input.ActorID, input.ActorEmail).
		WithResource("operator", op.ID).
		WithDescription(fmt.Sprintf("operator %s created with role %s", op.Email, op.Role)))

	slog.Info("operator_created", "operator_id", op.ID, "role", op.Role)
	return op, nil
}

// --- Update Operator ---

// UpdateOperatorInput carries input for the update operator orchestrator.
// An empty Password leaves the current password in place.
type UpdateOperatorInput struct {
	OperatorID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Birthdate  string
	Gender     string
	Role       string
	Status     string
	Password   string
	ActorID    string
	ActorEmail string
}

// UpdateOperatorDeps holds dependencies for UpdateOperator.
type UpdateOperatorDeps struct {
	OperatorStore OperatorStoreForAdmin
	AuditStore    AuditStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteUpdateOperator updates an operator's profile and role.
// PRE: OperatorID references an existing operator
// POST: Fields updated; password replaced only when provided
func ExecuteUpdateOperator(ctx context.Context, input UpdateOperatorInput, deps UpdateOperatorDeps) (operator.Operator, error) {
	op, err := deps.OperatorStore.GetByID(ctx, input.OperatorID)
	if err != nil {
		return operator.Operator{}, ErrOperatorNotFound
	}

	op.FirstName = input.FirstName
	op.LastName = input.LastName
	op.Email = input.Email
	op.Phone = input.Phone
	op.Birthdate = input.Birthdate
	op.Gender = input.Gender
	op.Role = input.Role
	if input.Status != "" {
		op.Status = input.Status
	}

	if err := op.Validate(); err != nil {
		return operator.Operator{}, err
	}
	if input.Password != "" {
		if err := op.SetPassword(input.Password); err != nil {
			return operator.Operator{}, err
		}
	}

	if err := deps.OperatorStore.Save(ctx, op); err != nil {
		return operator.Operator{}, fmt.Errorf("failed to save operator: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategoryOperator, audit.ActionUpdate, input.ActorID, input.ActorEmail).
		WithResource("operator", op.ID).
		WithDescription(fmt.Sprintf("operator %s updated", op.Email)))

	slog.Info("operator_updated", "operator_id", op.ID)
	return op, nil
}

// --- Delete Operator ---

// DeleteOperatorInput carries input for the delete operator orchestrator.
type DeleteOperatorInput struct {
	OperatorID string
	ActorID    string
	ActorEmail string
}

// DeleteOperatorDeps holds dependencies for DeleteOperator.
type DeleteOperatorDeps struct {
	OperatorStore OperatorStoreForAdmin
	AuditStore    AuditStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteDeleteOperator removes an operator account. The last remaining
// admin cannot be deleted.
// PRE: OperatorID references an existing operator
// POST: Operator removed unless they are the last admin
func ExecuteDeleteOperator(ctx context.Context, input DeleteOperatorInput, deps DeleteOperatorDeps) error {
	op, err := deps.OperatorStore.GetByID(ctx, input.OperatorID)
	if err != nil {
		return ErrOperatorNotFound
	}

	if op.IsAdmin() {
		admins, err := deps.OperatorStore.CountByRole(ctx, operator.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := deps.OperatorStore.Delete(ctx, op.ID); err != nil {
		return fmt.Errorf("failed to delete operator: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategoryOperator, audit.ActionDelete, input.ActorID, input.ActorEmail).
		WithSeverity(audit.SeverityWarning).
		WithResource("operator", op.ID).
		WithDescription(fmt.Sprintf("operator %s deleted", op.Email)))

	slog.Info("operator_deleted", "operator_id", op.ID)
	return nil
}
