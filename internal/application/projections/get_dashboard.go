package projections

import (
	"context"
	"time"
)

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	BookingStore      BookingStore
	MemberStore       MemberStore
	SettingsStore     SettingsStore
	NotificationStore NotificationStore
}

// DashboardStats carries the headline numbers of the back-office home page.
type DashboardStats struct {
	TotalMembers        int `json:"totalMembers"`
	BookingsThisWeek    int `json:"bookingsThisWeek"`
	PresencesThisMonth  int `json:"presencesThisMonth"`
	CurrentPresences    int `json:"currentPresences"`
	UnreadNotifications int `json:"unreadNotifications"`
}

// CurrentPresence is one member currently inside the gym according to the
// booking calendar and the entry margin.
type CurrentPresence struct {
	BookingID  string `json:"bookingId"`
	MemberName string `json:"memberName"`
	Start      string `json:"start"` // HH:MM
	End        string `json:"end"`
}

// QueryGetDashboardStats aggregates the dashboard counters.
// POST: counters are computed from the stores at `now`; missing data
// contributes zero rather than failing the whole page
func QueryGetDashboardStats(ctx context.Context, deps GetDashboardDeps, now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	if count, err := deps.MemberStore.Count(ctx); err == nil {
		stats.TotalMembers = count
	}

	// Bookings in the current ISO week, Monday through Sunday.
	weekStart := startOfWeek(now)
	if bookings, err := deps.BookingStore.ListByRange(ctx, weekStart, weekStart.AddDate(0, 0, 7)); err == nil {
		stats.BookingsThisWeek = len(bookings)
	}

	// Presences are turnstile accesses recorded in the current month.
	monthPrefix := now.Format("2006-01")
	if members, err := deps.MemberStore.ListWithHistory(ctx); err == nil {
		for _, m := range members {
			for _, a := range m.AccessHistory {
				if len(a.Date) >= 7 && a.Date[:7] == monthPrefix {
					stats.PresencesThisMonth++
				}
			}
		}
	}

	presences, err := QueryGetCurrentPresences(ctx, deps, now)
	if err != nil {
		return stats, err
	}
	stats.CurrentPresences = len(presences)

	if unread, err := deps.NotificationStore.CountUnread(ctx); err == nil {
		stats.UnreadNotifications = unread
	}

	return stats, nil
}

// QueryGetCurrentPresences lists members whose booking interval, widened by
// the configured entry margin on both sides, covers `now`.
func QueryGetCurrentPresences(ctx context.Context, deps GetDashboardDeps, now time.Time) ([]CurrentPresence, error) {
	cfg, err := deps.SettingsStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	margin := time.Duration(cfg.EntryMarginMinutes) * time.Minute

	// A booking widened by the margin covers now exactly when the raw
	// interval overlaps [now-margin, now+margin).
	bookings, err := deps.BookingStore.ListByRange(ctx, now.Add(-margin), now.Add(margin+time.Nanosecond))
	if err != nil {
		return nil, err
	}

	presences := make([]CurrentPresence, 0, len(bookings))
	for _, b := range bookings {
		presences = append(presences, CurrentPresence{
			BookingID:  b.ID,
			MemberName: b.MemberName,
			Start:      b.Start.Format("15:04"),
			End:        b.End.Format("15:04"),
		})
	}
	return presences, nil
}

// startOfWeek returns midnight of the Monday of now's week.
func startOfWeek(now time.Time) time.Time {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	weekday := int(midnight.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started six days back
	}
	return midnight.AddDate(0, 0, -(weekday - 1))
}
