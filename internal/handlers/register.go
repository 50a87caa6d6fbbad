package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email string) (*models.UserDB, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Username and email must be unique. The password is hashed before storing and never returned.
// @Tags users
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} models.UserDB "Created user"
// @Failure 409 {object} handlers.ErrorResponse "Username or email already taken"
// @Failure 422 {object} handlers.ErrorResponse "Missing or malformed field"
// @Router /users [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
			return
		}
		if req.Username == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "Field required: username")
			return
		}
		if req.Password == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "Field required: password")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid email address")
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeDetail(w, http.StatusConflict, "Username or email already exists")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}
