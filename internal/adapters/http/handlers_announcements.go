package web

import (
	"errors"
	"net/http"
	"time"

	"palestra/internal/adapters/http/middleware"
	storageAnnouncement "palestra/internal/adapters/storage/announcement"
	"palestra/internal/application/listutil"
	"palestra/internal/application/orchestrators"
	"palestra/internal/domain/announcement"
)

type announcementDTO struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	ContentHTML  string `json:"contentHtml"`
	AuthorName   string `json:"authorName"`
	Color        string `json:"color"`
	Pinned       bool   `json:"pinned"`
	VisibleFrom  string `json:"visibleFrom,omitempty"`
	VisibleUntil string `json:"visibleUntil,omitempty"`
	CreatedAt    string `json:"createdAt"`
	PublishedAt  string `json:"publishedAt,omitempty"`
}

func toAnnouncementDTO(a announcement.Announcement) announcementDTO {
	dto := announcementDTO{
		ID:          a.ID,
		Status:      a.Status,
		Title:       a.Title,
		Content:     a.Content,
		ContentHTML: renderMarkdown(a.Content),
		AuthorName:  a.AuthorName,
		Color:       a.Color,
		Pinned:      a.Pinned,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if !a.VisibleFrom.IsZero() {
		dto.VisibleFrom = a.VisibleFrom.Format(time.RFC3339)
	}
	if !a.VisibleUntil.IsZero() {
		dto.VisibleUntil = a.VisibleUntil.Format(time.RFC3339)
	}
	if !a.PublishedAt.IsZero() {
		dto.PublishedAt = a.PublishedAt.Format(time.RFC3339)
	}
	return dto
}

// handleAnnouncementList lists announcements (GET /api/announcements).
// Non-admins only see published ones.
func handleAnnouncementList(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	page := listutil.ParsePageParams(r.URL.Query())

	announcements, err := stores.AnnouncementStore.List(r.Context(), storageAnnouncement.ListFilter{
		Limit:         page.PerPage,
		Offset:        (page.Page - 1) * page.PerPage,
		Status:        r.URL.Query().Get("status"),
		PublishedOnly: !session.IsAdmin(),
	})
	if err != nil {
		internalError(w, err)
		return
	}

	dtos := make([]announcementDTO, 0, len(announcements))
	for _, a := range announcements {
		dtos = append(dtos, toAnnouncementDTO(a))
	}
	respond(w, http.StatusOK, dtos)
}

type announcementPayload struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorName   string    `json:"authorName"`
	Color        string    `json:"color"`
	Pinned       bool      `json:"pinned"`
	VisibleFrom  time.Time `json:"visibleFrom"`
	VisibleUntil time.Time `json:"visibleUntil"`
}

// handleAnnouncementCreate creates a draft announcement
// (POST /api/announcements).
func handleAnnouncementCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req announcementPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	a, err := orchestrators.ExecuteCreateAnnouncement(r.Context(), orchestrators.CreateAnnouncementInput{
		Title:        req.Title,
		Content:      req.Content,
		AuthorName:   req.AuthorName,
		Color:        req.Color,
		VisibleFrom:  req.VisibleFrom,
		VisibleUntil: req.VisibleUntil,
		CreatedBy:    session.OperatorID,
		ActorEmail:   session.Email,
	}, orchestrators.CreateAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		AuditStore:        stores.AuditStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, toAnnouncementDTO(a))
}

// handleAnnouncementUpdate updates a draft or published announcement
// (PUT /api/announcements/{id}).
func handleAnnouncementUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req announcementPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	a, err := orchestrators.ExecuteUpdateAnnouncement(r.Context(), orchestrators.UpdateAnnouncementInput{
		AnnouncementID: r.PathValue("id"),
		Title:          req.Title,
		Content:        req.Content,
		AuthorName:     req.AuthorName,
		Color:          req.Color,
		Pinned:         req.Pinned,
		VisibleFrom:    req.VisibleFrom,
		VisibleUntil:   req.VisibleUntil,
		ActorID:        session.OperatorID,
		ActorEmail:     session.Email,
	}, orchestrators.UpdateAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		AuditStore:        stores.AuditStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAnnouncementNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, toAnnouncementDTO(a))
}

type announcementPublishPayload struct {
	Broadcast bool `json:"broadcast"`
}

// handleAnnouncementPublish publishes a draft, optionally broadcasting it
// to active members by email (POST /api/announcements/{id}/publish).
func handleAnnouncementPublish(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req announcementPublishPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	a, err := orchestrators.ExecutePublishAnnouncement(r.Context(), orchestrators.PublishAnnouncementInput{
		AnnouncementID: r.PathValue("id"),
		PublisherID:    session.OperatorID,
		ActorEmail:     session.Email,
		Broadcast:      req.Broadcast,
	}, orchestrators.PublishAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		MemberStore:       stores.MemberStore,
		OutboxStore:       stores.OutboxStore,
		AuditStore:        stores.AuditStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrAnnouncementNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, announcement.ErrAlreadyPublished):
			respondError(w, http.StatusConflict, err.Error())
		default:
			internalError(w, err)
		}
		return
	}
	respond(w, http.StatusOK, toAnnouncementDTO(a))
}

// handleAnnouncementDelete removes an announcement
// (DELETE /api/announcements/{id}).
func handleAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	err := orchestrators.ExecuteDeleteAnnouncement(r.Context(), orchestrators.DeleteAnnouncementInput{
		AnnouncementID: r.PathValue("id"),
		ActorID:        session.OperatorID,
		ActorEmail:     session.Email,
	}, orchestrators.DeleteAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		AuditStore:        stores.AuditStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAnnouncementNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "announcement deleted")
}
