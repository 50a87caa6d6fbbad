package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/repositories"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		username     string
		password     string
		email        string
		existingUser *models.UserDB
		readerErr    error
		writerErr    error
		wantErr      error
	}{
		{
			name:     "successful registration",
			username: "alice",
			password: "pass123",
			email:    "alice@example.com",
		},
		{
			name:         "user already exists",
			username:     "bob",
			password:     "pass123",
			email:        "bob@example.com",
			existingUser: &models.UserDB{ID: 2, Username: "bob"},
			wantErr:      services.ErrUserAlreadyExists,
		},
		{
			name:      "concurrent insert loses to unique constraint",
			username:  "carol",
			password:  "pass123",
			email:     "carol@example.com",
			writerErr: repositories.ErrUniqueViolation,
			wantErr:   services.ErrUserAlreadyExists,
		},
		{
			name:      "reader error",
			username:  "eve",
			password:  "pass123",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "writer error",
			username:  "dave",
			password:  "pass123",
			email:     "dave@example.com",
			writerErr: errors.New("save error"),
			wantErr:   errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockJWT := services.NewMockTokenGenerator(ctrl)

			svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), &tt.username, &tt.email).
				Return(tt.existingUser, tt.readerErr)

			if tt.existingUser == nil && tt.readerErr == nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), tt.username, tt.email, gomock.Not(tt.password)).
					Return(int64(11), tt.writerErr)
			}

			if tt.wantErr == nil {
				mockReader.EXPECT().
					GetByID(gomock.Any(), int64(11)).
					Return(&models.UserDB{ID: 11, Username: tt.username, Email: tt.email}, nil)
			}

			user, err := svc.Register(context.Background(), tt.username, tt.password, tt.email)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(11), user.ID)
				assert.Equal(t, tt.username, user.Username)
			}
		})
	}
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	username := "alice"
	email := "alice@example.com"
	password := "plaintext-secret"

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), &username, &email).
		Return(nil, nil)

	var stored string
	mockWriter.EXPECT().
		Save(gomock.Any(), username, email, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, passwordHash string) (int64, error) {
			stored = passwordHash
			return int64(1), nil
		})

	mockReader.EXPECT().
		GetByID(gomock.Any(), int64(1)).
		Return(&models.UserDB{ID: 1, Username: username, Email: email}, nil)

	_, err := svc.Register(context.Background(), username, password, email)
	assert.NoError(t, err)

	// The persisted value is a bcrypt hash of the password, never the plaintext.
	assert.NotEqual(t, password, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)))
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	tests := []struct {
		name      string
		username  string
		loginPass string
		user      *models.UserDB
		readerErr error
		jwtErr    error
		wantErr   error
		wantToken string
	}{
		{
			name:      "successful login",
			username:  "alice",
			loginPass: password,
			user:      &models.UserDB{ID: 1, Username: "alice", PasswordHash: string(hashed)},
			wantToken: "token123",
		},
		{
			name:      "unknown username",
			username:  "ghost",
			loginPass: password,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "wrong password",
			username:  "alice",
			loginPass: "wrong",
			user:      &models.UserDB{ID: 1, Username: "alice", PasswordHash: string(hashed)},
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			username:  "alice",
			loginPass: password,
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "token generation error",
			username:  "alice",
			loginPass: password,
			user:      &models.UserDB{ID: 1, Username: "alice", PasswordHash: string(hashed)},
			jwtErr:    errors.New("sign error"),
			wantErr:   errors.New("sign error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockJWT := services.NewMockTokenGenerator(ctrl)

			svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), &tt.username, nil).
				Return(tt.user, tt.readerErr)

			if tt.user != nil && tt.readerErr == nil && tt.loginPass == password {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.user.ID).
					Return(tt.wantToken, tt.jwtErr)
			}

			token, err := svc.Login(context.Background(), tt.username, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestAuthService_Login_SameErrorForUnknownUserAndBadPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenGenerator(ctrl)
	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	ghost := "ghost"
	alice := "alice"

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), &ghost, nil).
		Return(nil, nil)
	_, errUnknown := svc.Login(context.Background(), ghost, "whatever")

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), &alice, nil).
		Return(&models.UserDB{ID: 1, PasswordHash: string(hashed)}, nil)
	_, errBadPass := svc.Login(context.Background(), alice, "wrong")

	// The caller cannot tell which check failed.
	assert.Equal(t, errUnknown, errBadPass)
}
