package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

func TestGetUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		target       string
		mockSetup    func(m *MockUserGetter)
		expectedCode int
	}{
		{
			name:   "success",
			target: "/users/1",
			mockSetup: func(m *MockUserGetter) {
				m.EXPECT().
					GetByID(gomock.Any(), int64(1)).
					Return(&models.UserDB{ID: 1, Username: "john", Email: "john@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "not found",
			target: "/users/999999",
			mockSetup: func(m *MockUserGetter) {
				m.EXPECT().
					GetByID(gomock.Any(), int64(999999)).
					Return(nil, services.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "non numeric id",
			target:       "/users/abc",
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "internal server error",
			target: "/users/1",
			mockSetup: func(m *MockUserGetter) {
				m.EXPECT().
					GetByID(gomock.Any(), int64(1)).
					Return(nil, errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserGetter(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			router := chi.NewRouter()
			router.Get("/users/{id}", NewGetUserHandler(mockSvc))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusOK {
				var resp map[string]any
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "john", resp["username"])
				assert.NotContains(t, resp, "password")
			}
		})
	}
}
