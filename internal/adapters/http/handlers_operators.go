package web

import (
	"errors"
	"net/http"
	"time"

	"palestra/internal/adapters/http/middleware"
	storageOperator "palestra/internal/adapters/storage/operator"
	"palestra/internal/application/listutil"
	"palestra/internal/application/orchestrators"
	"palestra/internal/domain/operator"
)

type operatorDTO struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Birthdate    string `json:"birthdate"`
	Gender       string `json:"gender"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	RegisteredAt string `json:"registeredAt"`
}

func toOperatorDTO(op operator.Operator) operatorDTO {
	return operatorDTO{
		ID:           op.ID,
		FirstName:    op.FirstName,
		LastName:     op.LastName,
		Email:        op.Email,
		Phone:        op.Phone,
		Birthdate:    op.Birthdate,
		Gender:       op.Gender,
		Role:         op.Role,
		Status:       op.Status,
		RegisteredAt: op.RegisteredAt.Format(time.RFC3339),
	}
}

type operatorPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthdate string `json:"birthdate"`
	Gender    string `json:"gender"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Password  string `json:"password"`
}

// handleOperatorList lists operator accounts (GET /api/operators).
func handleOperatorList(w http.ResponseWriter, r *http.Request) {
	page := listutil.ParsePageParams(r.URL.Query())
	ops, err := stores.OperatorStore.List(r.Context(), storageOperator.ListFilter{
		Limit:  page.PerPage,
		Offset: (page.Page - 1) * page.PerPage,
		Role:   r.URL.Query().Get("role"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	total, err := stores.OperatorStore.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	dtos := make([]operatorDTO, 0, len(ops))
	for _, op := range ops {
		dtos = append(dtos, toOperatorDTO(op))
	}
	respond(w, http.StatusOK, map[string]any{
		"operators": dtos,
		"pageInfo":  listutil.NewPageInfo(page.Page, page.PerPage, total),
	})
}

// handleOperatorCreate creates an operator account (POST /api/operators).
func handleOperatorCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req operatorPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	op, err := orchestrators.ExecuteCreateOperator(r.Context(), orchestrators.CreateOperatorInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Birthdate:  req.Birthdate,
		Gender:     req.Gender,
		Role:       req.Role,
		Password:   req.Password,
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.CreateOperatorDeps{
		OperatorStore: stores.OperatorStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailTaken) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, toOperatorDTO(op))
}

// handleOperatorUpdate updates an operator account (PUT /api/operators/{id}).
func handleOperatorUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req operatorPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	op, err := orchestrators.ExecuteUpdateOperator(r.Context(), orchestrators.UpdateOperatorInput{
		OperatorID: r.PathValue("id"),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Birthdate:  req.Birthdate,
		Gender:     req.Gender,
		Role:       req.Role,
		Status:     req.Status,
		Password:   req.Password,
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.UpdateOperatorDeps{
		OperatorStore: stores.OperatorStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrOperatorNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, toOperatorDTO(op))
}

// handleOperatorDelete removes an operator account (DELETE /api/operators/{id}).
func handleOperatorDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	operatorID := r.PathValue("id")

	err := orchestrators.ExecuteDeleteOperator(r.Context(), orchestrators.DeleteOperatorInput{
		OperatorID: operatorID,
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.DeleteOperatorDeps{
		OperatorStore: stores.OperatorStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrOperatorNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, orchestrators.ErrLastAdmin):
			respondError(w, http.StatusConflict, err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	sessions.DeleteForOperator(operatorID)
	respondMessage(w, http.StatusOK, "operator deleted")
}

// handleProfileGet returns the logged-in operator's profile
// (GET /api/operator/profile).
func handleProfileGet(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	op, err := stores.OperatorStore.GetByID(r.Context(), session.OperatorID)
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, toOperatorDTO(op))
}

type profilePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthdate string `json:"birthdate"`
	Gender    string `json:"gender"`
}

// handleProfileUpdate updates the logged-in operator's own profile fields.
// Role and status are not editable here (PUT /api/operator/profile).
func handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req profilePayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	op, err := orchestrators.ExecuteUpdateOperator(r.Context(), orchestrators.UpdateOperatorInput{
		OperatorID: session.OperatorID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Birthdate:  req.Birthdate,
		Gender:     req.Gender,
		Role:       session.Role,
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.UpdateOperatorDeps{
		OperatorStore: stores.OperatorStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, toOperatorDTO(op))
}
