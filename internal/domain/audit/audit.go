package audit

import (
	"time"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryOperator Category = "operator"
	CategoryMember   Category = "member"
	CategoryBooking  Category = "booking"
	CategorySettings Category = "settings"
	CategorySecurity Category = "security"
	CategorySystem   Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
	ActionExport Action = "export"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates an audit event with the given identity and defaults
// the severity to info.
//
// PRE: id is a freshly generated unique identifier.
func NewEvent(id string, now time.Time, category Category, action Action, actorID, actorEmail string) Event {
	return Event{
		ID:         id,
		Timestamp:  now,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}
}

// WithSeverity overrides the default severity.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource records the entity the action applied to.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets a human readable summary of the event.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest records request level details.
func (e Event) WithRequest(ip string) Event {
	e.IPAddress = ip
	return e
}

// WithMetadata attaches a JSON encoded metadata blob.
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
