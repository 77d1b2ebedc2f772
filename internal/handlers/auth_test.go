package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crickmind/server/internal/handlers"
	"github.com/crickmind/server/internal/models"
	"github.com/crickmind/server/internal/services"
)

// --- Mock AuthService --- //

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(
	ctx context.Context,
	req models.RegisterRequest,
) (string, *models.User, error) {
	args := m.Called(ctx, req)
	var user *models.User
	if args.Get(1) != nil {
		user, _ = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	var user *models.User
	if args.Get(1) != nil {
		user, _ = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

// --- Tests --- //

func TestNewAuthHandler(t *testing.T) {
	mockService := new(MockAuthService)
	h := handlers.NewAuthHandler(mockService)
	assert.NotNil(t, h)
}

// Вспомогательная функция для создания роутера с обработчиком.
func setupAuthRouter(h *handlers.AuthHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	registeredUser := &models.User{
		ID:           1,
		Username:     "rahul",
		Email:        "r@x.com",
		PasswordHash: "$2a$10$secret-hash",
		FavoriteTeam: "Mumbai Indians",
	}

	tests := []struct {
		name            string
		body            string
		mockRequest     *models.RegisterRequest
		mockReturnToken string
		mockReturnUser  *models.User
		mockReturnError error
		expectedStatus  int
		expectedBody    string // Проверяем подстроку в теле ответа
	}{
		{
			name: "Успешная регистрация",
			body: `{"username":"rahul","email":"r@x.com","password":"Secret123",` +
				`"favoriteTeam":"Mumbai Indians"}`,
			mockRequest: &models.RegisterRequest{
				Username:     "rahul",
				Email:        "r@x.com",
				Password:     "Secret123",
				FavoriteTeam: "Mumbai Indians",
			},
			mockReturnToken: "issued-token",
			mockReturnUser:  registeredUser,
			expectedStatus:  http.StatusOK,
		},
		{
			name:           "Невалидный JSON",
			body:           `{"username":"rahul","email":"r@x.com"`, // Сломанный JSON
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "Пустой email",
			body:           `{"username":"rahul","email":"","password":"Secret123"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "required",
		},
		{
			name:           "Пустой password",
			body:           `{"username":"rahul","email":"r@x.com","password":""}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "required",
		},
		{
			name: "Email уже занят",
			body: `{"username":"rahul","email":"r@x.com","password":"Secret123"}`,
			mockRequest: &models.RegisterRequest{
				Username: "rahul",
				Email:    "r@x.com",
				Password: "Secret123",
			},
			mockReturnError: services.ErrUserExists,
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "User already exists",
		},
		{
			name: "Внутренняя ошибка сервера",
			body: `{"username":"rahul","email":"r@x.com","password":"Secret123"}`,
			mockRequest: &models.RegisterRequest{
				Username: "rahul",
				Email:    "r@x.com",
				Password: "Secret123",
			},
			mockReturnError: errors.New("some internal error"),
			expectedStatus:  http.StatusInternalServerError,
			expectedBody:    "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			h := handlers.NewAuthHandler(mockService)
			r := setupAuthRouter(h)

			// Настраиваем мок только если ожидается вызов сервиса
			if tt.mockRequest != nil {
				mockService.On("Register", mock.Anything, *tt.mockRequest).
					Return(tt.mockReturnToken, tt.mockReturnUser, tt.mockReturnError).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				err := json.Unmarshal(rr.Body.Bytes(), &resp)
				require.NoError(t, err, "Ошибка декодирования JSON ответа")
				assert.Equal(t, tt.mockReturnToken, resp.Token)
				assert.Equal(t, "r@x.com", resp.User.Email)
				assert.Equal(t, "Mumbai Indians", resp.User.FavoriteTeam)
				// Ни пароль, ни его хеш не должны попасть в ответ
				assert.NotContains(t, rr.Body.String(), "Secret123")
				assert.NotContains(t, rr.Body.String(), "secret-hash")
				assert.NotContains(t, rr.Body.String(), "password")
			} else if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	knownUser := &models.User{
		ID:           7,
		Username:     "rahul",
		Email:        "r@x.com",
		PasswordHash: "$2a$10$secret-hash",
		FavoriteTeam: "Mumbai Indians",
	}

	tests := []struct {
		name            string
		body            string
		mockEmail       string
		mockPassword    string
		mockReturnToken string
		mockReturnUser  *models.User
		mockReturnError error
		expectedStatus  int
		expectedBody    string
	}{
		{
			name:            "Успешный вход",
			body:            `{"email":"r@x.com","password":"Secret123"}`,
			mockEmail:       "r@x.com",
			mockPassword:    "Secret123",
			mockReturnToken: "issued-token",
			mockReturnUser:  knownUser,
			expectedStatus:  http.StatusOK,
		},
		{
			name:           "Невалидный JSON",
			body:           `{"email":"r@x.com"`, // Сломанный JSON
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "Пустой email",
			body:           `{"email":"","password":"Secret123"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "required",
		},
		{
			name:           "Пустой password",
			body:           `{"email":"r@x.com","password":""}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "required",
		},
		{
			name:            "Неизвестный email",
			body:            `{"email":"ghost@x.com","password":"Secret123"}`,
			mockEmail:       "ghost@x.com",
			mockPassword:    "Secret123",
			mockReturnError: services.ErrInvalidCredentials,
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Invalid credentials",
		},
		{
			name:            "Неверный пароль",
			body:            `{"email":"r@x.com","password":"wrong"}`,
			mockEmail:       "r@x.com",
			mockPassword:    "wrong",
			mockReturnError: services.ErrInvalidCredentials,
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Invalid credentials",
		},
		{
			name:            "Внутренняя ошибка сервера",
			body:            `{"email":"r@x.com","password":"Secret123"}`,
			mockEmail:       "r@x.com",
			mockPassword:    "Secret123",
			mockReturnError: errors.New("some internal error"),
			expectedStatus:  http.StatusInternalServerError,
			expectedBody:    "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			h := handlers.NewAuthHandler(mockService)
			r := setupAuthRouter(h)

			if tt.mockEmail != "" {
				mockService.On("Login", mock.Anything, tt.mockEmail, tt.mockPassword).
					Return(tt.mockReturnToken, tt.mockReturnUser, tt.mockReturnError).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				err := json.Unmarshal(rr.Body.Bytes(), &resp)
				require.NoError(t, err, "Ошибка декодирования JSON ответа")
				assert.Equal(t, tt.mockReturnToken, resp.Token)
				assert.Equal(t, "r@x.com", resp.User.Email)
				assert.NotContains(t, rr.Body.String(), "secret-hash")
			} else if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// Неизвестный email и неверный пароль должны давать одинаковый статус и тело ответа.
func TestAuthHandler_LoginEnumerationResistance(t *testing.T) {
	run := func(email, password string) *httptest.ResponseRecorder {
		mockService := new(MockAuthService)
		mockService.On("Login", mock.Anything, email, password).
			Return("", nil, services.ErrInvalidCredentials).Once()
		r := setupAuthRouter(handlers.NewAuthHandler(mockService))

		body := `{"email":"` + email + `","password":"` + password + `"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	unknownEmail := run("ghost@x.com", "anything")
	wrongPassword := run("r@x.com", "wrong")

	assert.Equal(t, unknownEmail.Code, wrongPassword.Code)
	assert.JSONEq(t, unknownEmail.Body.String(), wrongPassword.Body.String())
}
