package web

import (
	"errors"
	"net/http"

	"palestra/internal/adapters/http/middleware"
	"palestra/internal/application/orchestrators"
	"palestra/internal/domain/audit"
	"palestra/internal/domain/operator"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	OperatorID string `json:"operatorId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// handleLogin authenticates an operator and sets the session cookie
// (POST /api/auth/login).
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{OperatorStore: stores.OperatorStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrOperatorLocked):
			respondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, orchestrators.ErrOperatorSuspended):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		}
		return
	}

	token, err := sessions.Create(result.OperatorID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	stores.AuditStore.Append(r.Context(), audit.
		NewEvent(generateID(), timeNow(), audit.CategorySecurity, audit.ActionLogin, result.OperatorID, result.Email))

	respond(w, http.StatusOK, loginResponse{
		OperatorID: result.OperatorID,
		Email:      result.Email,
		Role:       result.Role,
	})
}

// handleLogout drops the session (POST /api/auth/logout).
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionTokenFromRequest(r); token != "" {
		if session, ok := middleware.GetSessionFromContext(r.Context()); ok {
			stores.AuditStore.Append(r.Context(), audit.
				NewEvent(generateID(), timeNow(), audit.CategorySecurity, audit.ActionLogout, session.OperatorID, session.Email))
		}
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	respondMessage(w, http.StatusOK, "logged out")
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// handlePasswordResetRequest issues a reset token and enqueues the email
// (POST /api/auth/password-reset). Unknown emails succeed silently.
func handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := strictDecode(r, &req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	err := orchestrators.ExecuteRequestPasswordReset(r.Context(), orchestrators.RequestPasswordResetInput{
		Email:   req.Email,
		BaseURL: options.BaseURL,
	}, orchestrators.RequestPasswordResetDeps{
		OperatorStore: stores.OperatorStore,
		OutboxStore:   stores.OutboxStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "if the address exists, a reset email has been sent")
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// handlePasswordResetConfirm redeems a reset token
// (POST /api/auth/password-reset/confirm).
func handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := orchestrators.ExecuteResetPassword(r.Context(), orchestrators.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}, orchestrators.ResetPasswordDeps{
		OperatorStore: stores.OperatorStore,
		Now:           timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, operator.ErrTokenExpired),
			errors.Is(err, operator.ErrTokenInvalid),
			errors.Is(err, operator.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, err)
		}
		return
	}
	respondMessage(w, http.StatusOK, "password updated")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleChangePassword updates the logged-in operator's password
// (POST /api/operator/profile/change-password).
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req changePasswordRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		OperatorID:      session.OperatorID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{OperatorStore: stores.OperatorStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
			errors.Is(err, orchestrators.ErrNewPasswordSame),
			errors.Is(err, operator.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, err)
		}
		return
	}
	respondMessage(w, http.StatusOK, "password changed")
}
