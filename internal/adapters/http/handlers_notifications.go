package web

import (
	"net/http"
	"time"

	storageNotification "palestra/internal/adapters/storage/notification"
	"palestra/internal/application/listutil"
	"palestra/internal/application/orchestrators"
	"palestra/internal/domain/notification"
)

type notificationDTO struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	Read         bool   `json:"read"`
	MemberID     string `json:"memberId,omitempty"`
	MemberName   string `json:"memberName,omitempty"`
	MemberNumber string `json:"memberNumber,omitempty"`
	BookingDate  string `json:"bookingDate,omitempty"`
	BookingTime  string `json:"bookingTime,omitempty"`
	MissedCount  int    `json:"missedCount,omitempty"`
	Severity     string `json:"severity,omitempty"`
	TrafficLight string `json:"trafficLight,omitempty"`
}

func toNotificationDTO(n notification.Notification) notificationDTO {
	return notificationDTO{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		Timestamp:    n.Timestamp.Format(time.RFC3339),
		Read:         n.Read,
		MemberID:     n.MemberID,
		MemberName:   n.MemberName,
		MemberNumber: n.MemberNumber,
		BookingDate:  n.BookingDate,
		BookingTime:  n.BookingTime,
		MissedCount:  n.MissedCount,
		Severity:     string(n.Severity),
		TrafficLight: string(n.TrafficLight),
	}
}

// handleNotificationList returns the notification feed with the unread
// counter (GET /api/notifications).
func handleNotificationList(w http.ResponseWriter, r *http.Request) {
	page := listutil.ParsePageParams(r.URL.Query())

	notifications, err := stores.NotificationStore.List(r.Context(), storageNotification.ListFilter{
		Limit:      page.PerPage,
		Offset:     (page.Page - 1) * page.PerPage,
		Type:       r.URL.Query().Get("type"),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	})
	if err != nil {
		internalError(w, err)
		return
	}
	unread, err := stores.NotificationStore.CountUnread(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, toNotificationDTO(n))
	}
	respond(w, http.StatusOK, map[string]any{
		"notifications": dtos,
		"unreadCount":   unread,
	})
}

// handleNotificationRead marks one notification as read
// (POST /api/notifications/{id}/read).
func handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := stores.NotificationStore.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondMessage(w, http.StatusOK, "notification marked read")
}

// handleNotificationReadAll marks the whole feed as read
// (POST /api/notifications/read-all).
func handleNotificationReadAll(w http.ResponseWriter, r *http.Request) {
	if err := stores.NotificationStore.MarkAllRead(r.Context()); err != nil {
		internalError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "all notifications marked read")
}

// handleNotificationDelete removes one notification
// (DELETE /api/notifications/{id}).
func handleNotificationDelete(w http.ResponseWriter, r *http.Request) {
	if err := stores.NotificationStore.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondMessage(w, http.StatusOK, "notification deleted")
}

// handleNotificationRebuild drops and regenerates every missed-booking
// notification from the booking histories (POST /api/notifications/rebuild).
func handleNotificationRebuild(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteScanMissedBookings(r.Context(), orchestrators.ScanMissedBookingsInput{
		Rebuild: true,
	}, orchestrators.ScanMissedBookingsDeps{
		MemberStore:       stores.MemberStore,
		NotificationStore: stores.NotificationStore,
		Policy:            options.Policy,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{
		"emitted":     len(result.Emitted),
		"membersSeen": result.MembersSeen,
	})
}
