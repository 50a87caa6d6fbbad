package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// JWT access token
	// default: JWT_TOKEN
	AccessToken string `json:"access_token"`

	// Token type
	// default: bearer
	TokenType string `json:"token_type"`
}

// NewLoginHandler returns an HTTP handler for user login. The request is
// form encoded, not JSON, and every failure mode reads as 403 so that the
// response never reveals whether the username exists.
// @Summary User login
// @Description Authenticate with username and password, returns a bearer token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} handlers.LoginResponse "Access token returned"
// @Failure 403 {object} handlers.ErrorResponse "Invalid credentials"
// @Router /login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusForbidden, "Invalid credentials")
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			writeDetail(w, http.StatusForbidden, "Invalid credentials")
			return
		}

		token, err := svc.Login(r.Context(), username, password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				writeDetail(w, http.StatusForbidden, "Invalid credentials")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
