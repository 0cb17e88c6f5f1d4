package projections

import (
	"context"
	"time"

	"palestra/internal/adapters/storage/member"
	"palestra/internal/adapters/storage/notification"
	domainBooking "palestra/internal/domain/booking"
	domainMember "palestra/internal/domain/member"
	domainNotification "palestra/internal/domain/notification"
	domainSettings "palestra/internal/domain/settings"
)

// BookingStore interface for booking queries.
type BookingStore interface {
	List(ctx context.Context) ([]domainBooking.Booking, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]domainBooking.Booking, error)
	ListByDate(ctx context.Context, date string) ([]domainBooking.Booking, error)
}

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	ListWithHistory(ctx context.Context) ([]domainMember.Member, error)
	Count(ctx context.Context) (int, error)
}

// SettingsStore interface for settings reads.
type SettingsStore interface {
	Get(ctx context.Context) (domainSettings.Settings, error)
}

// NotificationStore interface for notification queries.
type NotificationStore interface {
	List(ctx context.Context, filter notification.ListFilter) ([]domainNotification.Notification, error)
	CountUnread(ctx context.Context) (int, error)
}
