package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"palestra/internal/adapters/badge"
	"palestra/internal/adapters/http/middleware"
	"palestra/internal/application/listutil"
	"palestra/internal/application/orchestrators"
	"palestra/internal/application/projections"
	"palestra/internal/domain/member"
)

type memberDTO struct {
	ID                 string `json:"id"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Company            string `json:"company"`
	Birthdate          string `json:"birthdate"`
	Gender             string `json:"gender"`
	MemberNumber       string `json:"memberNumber"`
	UserCode           string `json:"userCode"`
	Status             string `json:"status"`
	MedicalCertificate bool   `json:"medicalCertificate"`
	RegisteredAt       string `json:"registeredAt"`
}

func toMemberDTO(m member.Member) memberDTO {
	return memberDTO{
		ID:                 m.ID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		Phone:              m.Phone,
		Company:            m.Company,
		Birthdate:          m.Birthdate,
		Gender:             m.Gender,
		MemberNumber:       m.MemberNumber,
		UserCode:           m.UserCode,
		Status:             m.Status,
		MedicalCertificate: m.MedicalCertificate,
		RegisteredAt:       m.RegisteredAt.Format(time.RFC3339),
	}
}

type memberStandingDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	MemberNumber string `json:"memberNumber"`
	Status       string `json:"status"`
	Missed       int    `json:"missed"`
	TrafficLight string `json:"trafficLight"`
}

// handleMemberList lists members with standing info (GET /api/members).
func handleMemberList(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), []string{"status"})

	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{
		Page:   lp.PageParams,
		Status: lp.Filters["status"],
		Search: lp.Search,
	}, projections.GetMemberListDeps{
		MemberStore: stores.MemberStore,
		Policy:      options.Policy,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	members := make([]memberStandingDTO, 0, len(result.Members))
	for _, m := range result.Members {
		members = append(members, memberStandingDTO{
			ID:           m.ID,
			Name:         m.Name,
			Email:        m.Email,
			Company:      m.Company,
			MemberNumber: m.MemberNumber,
			Status:       m.Status,
			Missed:       m.Missed,
			TrafficLight: string(m.TrafficLight),
		})
	}
	respond(w, http.StatusOK, map[string]any{
		"members":  members,
		"pageInfo": result.PageInfo,
	})
}

// handleMemberProfile returns one member with standing (GET /api/members/{id}).
func handleMemberProfile(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetMemberProfile(r.Context(), projections.GetMemberProfileQuery{
		MemberID: r.PathValue("id"),
	}, projections.GetMemberListDeps{
		MemberStore: stores.MemberStore,
		Policy:      options.Policy,
	})
	if err != nil {
		respondError(w, http.StatusNotFound, "member not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"member":       toMemberDTO(result.Member),
		"missed":       result.Missed,
		"trafficLight": string(result.TrafficLight),
	})
}

type memberPayload struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Company            string `json:"company"`
	Birthdate          string `json:"birthdate"`
	Gender             string `json:"gender"`
	Status             string `json:"status"`
	MedicalCertificate bool   `json:"medicalCertificate"`
}

// handleMemberCreate registers a new member (POST /api/members).
func handleMemberCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req memberPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	m, err := orchestrators.ExecuteCreateMember(r.Context(), orchestrators.CreateMemberInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Company:            req.Company,
		Birthdate:          req.Birthdate,
		Gender:             req.Gender,
		MedicalCertificate: req.MedicalCertificate,
		ActorID:            session.OperatorID,
		ActorEmail:         session.Email,
	}, orchestrators.CreateMemberDeps{
		MemberStore: stores.MemberStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, toMemberDTO(m))
}

// handleMemberUpdate updates a member's profile (PUT /api/members/{id}).
func handleMemberUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req memberPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		MemberID:           r.PathValue("id"),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Company:            req.Company,
		Birthdate:          req.Birthdate,
		Gender:             req.Gender,
		Status:             req.Status,
		MedicalCertificate: req.MedicalCertificate,
		ActorID:            session.OperatorID,
		ActorEmail:         session.Email,
	}, orchestrators.UpdateMemberDeps{
		MemberStore: stores.MemberStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrMemberNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, toMemberDTO(m))
}

// handleMemberDelete removes a member (DELETE /api/members/{id}).
func handleMemberDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	err := orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{
		MemberID:   r.PathValue("id"),
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.DeleteMemberDeps{
		MemberStore: stores.MemberStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrMemberNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "member deleted")
}

// handleMemberBadge streams the printable badge PDF
// (GET /api/members/{id}/badge.pdf).
func handleMemberBadge(w http.ResponseWriter, r *http.Request) {
	m, err := stores.MemberStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "member not found")
		return
	}

	now := timeNow()
	token, err := options.BadgeSigner.Sign(&m, now)
	if err != nil {
		internalError(w, err)
		return
	}
	pdf, err := badge.RenderPDF(&m, token, now)
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=badge-%s.pdf", m.MemberNumber))
	w.Write(pdf)
}

type accessVerifyRequest struct {
	Token string `json:"token"`
}

type accessVerifyResponse struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	UserCode   string `json:"userCode"`
	Status     string `json:"status"`
}

// handleAccessVerify checks a scanned badge token for the turnstile
// (POST /api/access/verify). Suspended and archived members are refused.
func handleAccessVerify(w http.ResponseWriter, r *http.Request) {
	var req accessVerifyRequest
	if err := strictDecode(r, &req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	claims, err := options.BadgeSigner.Verify(req.Token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid badge token")
		return
	}

	m, err := stores.MemberStore.GetByID(r.Context(), claims.Subject)
	if err != nil || m.UserCode != claims.UserCode {
		respondError(w, http.StatusUnauthorized, "invalid badge token")
		return
	}
	if m.Status != member.StatusActive {
		respondError(w, http.StatusForbidden, "membership is not active")
		return
	}

	respond(w, http.StatusOK, accessVerifyResponse{
		MemberID:   m.ID,
		MemberName: m.FullName(),
		UserCode:   m.UserCode,
		Status:     m.Status,
	})
}
