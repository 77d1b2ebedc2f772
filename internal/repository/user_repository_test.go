package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crickmind/server/internal/models"
	"github.com/crickmind/server/internal/repository"
)

func TestNewPostgresUserRepository(t *testing.T) {
	// Можно передать nil, так как конструктор его просто сохраняет
	repo := repository.NewPostgresUserRepository(nil)
	assert.NotNil(t, repo)

	// Или с моком
	db, _, _ := sqlmock.New()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo = repository.NewPostgresUserRepository(sqlxDB)
	assert.NotNil(t, repo)
}

// Вспомогательная функция для создания мока БД и репозитория.
func setupUserRepoMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := repository.NewPostgresUserRepository(sqlxDB)
	return repo, mock
}

// Запрос многострочный, поэтому матчим по экранированному фрагменту.
var (
	insertUserPattern = regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash, favorite_team)`)
	selectUserPattern = regexp.QuoteMeta(`SELECT id, username, email, password_hash, favorite_team, created_at, updated_at`)
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name        string
		user        *models.User
		mockSetup   func(mock sqlmock.Sqlmock, user *models.User)
		expectedID  int64
		expectedErr error
	}{
		{
			name: "Успешное создание",
			user: &models.User{
				Username:     "rahul",
				Email:        "r@x.com",
				PasswordHash: "hash123",
				FavoriteTeam: "Mumbai Indians",
			},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1))
				mock.ExpectQuery(insertUserPattern).
					WithArgs(user.Username, user.Email, user.PasswordHash, user.FavoriteTeam).
					WillReturnRows(rows)
			},
			expectedID:  1,
			expectedErr: nil,
		},
		{
			name: "Email или имя заняты",
			user: &models.User{
				Username:     "rahul",
				Email:        "r@x.com",
				PasswordHash: "hash456",
			},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				// Нарушение уникального индекса приходит из самой БД
				pqErr := &pq.Error{Code: "23505"}
				mock.ExpectQuery(insertUserPattern).
					WithArgs(user.Username, user.Email, user.PasswordHash, user.FavoriteTeam).
					WillReturnError(pqErr)
			},
			expectedID:  0,
			expectedErr: repository.ErrUserExists,
		},
		{
			name: "Ошибка базы данных",
			user: &models.User{
				Username:     "erroruser",
				Email:        "err@x.com",
				PasswordHash: "hash789",
			},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				mock.ExpectQuery(insertUserPattern).
					WithArgs(user.Username, user.Email, user.PasswordHash, user.FavoriteTeam).
					WillReturnError(errors.New("database error"))
			},
			expectedID:  0,
			expectedErr: errors.New("ошибка выполнения запроса"), // Ожидаем обернутую ошибку
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock, tt.user)

			userID, err := repo.CreateUser(context.Background(), tt.user)

			assert.Equal(t, tt.expectedID, userID)
			if tt.expectedErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if errors.Is(tt.expectedErr, repository.ErrUserExists) {
					assert.ErrorIs(t, err, repository.ErrUserExists)
				} else {
					assert.Contains(t, err.Error(), "ошибка выполнения запроса")
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "Не все ожидания мока были выполнены")
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	// Определяем тестового пользователя заранее
	now := time.Now()
	testUser := &models.User{
		ID:           1,
		Username:     "rahul",
		Email:        "r@x.com",
		PasswordHash: "hash123",
		FavoriteTeam: "Mumbai Indians",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	userColumns := []string{
		"id", "username", "email", "password_hash", "favorite_team", "created_at", "updated_at",
	}

	tests := []struct {
		name         string
		email        string
		mockSetup    func(mock sqlmock.Sqlmock, email string)
		expectedUser *models.User
		expectedErr  error
	}{
		{
			name:  "Успешный поиск",
			email: "r@x.com",
			mockSetup: func(mock sqlmock.Sqlmock, email string) {
				rows := sqlmock.NewRows(userColumns).
					AddRow(testUser.ID, testUser.Username, testUser.Email, testUser.PasswordHash,
						testUser.FavoriteTeam, testUser.CreatedAt, testUser.UpdatedAt)
				mock.ExpectQuery(selectUserPattern).WithArgs(email).WillReturnRows(rows)
			},
			expectedUser: testUser,
			expectedErr:  nil,
		},
		{
			name:  "Пользователь не найден",
			email: "unknown@x.com",
			mockSetup: func(mock sqlmock.Sqlmock, email string) {
				mock.ExpectQuery(selectUserPattern).WithArgs(email).WillReturnError(sql.ErrNoRows)
			},
			expectedUser: nil,
			expectedErr:  repository.ErrUserNotFound,
		},
		{
			name:  "Ошибка базы данных",
			email: "err@x.com",
			mockSetup: func(mock sqlmock.Sqlmock, email string) {
				mock.ExpectQuery(selectUserPattern).WithArgs(email).WillReturnError(errors.New("database error"))
			},
			expectedUser: nil,
			expectedErr:  errors.New("ошибка выполнения запроса"), // Ожидаем обернутую ошибку
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock, tt.email)

			user, err := repo.GetUserByEmail(context.Background(), tt.email)

			assert.Equal(t, tt.expectedUser, user)

			if tt.expectedErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if errors.Is(tt.expectedErr, repository.ErrUserNotFound) {
					assert.ErrorIs(t, err, repository.ErrUserNotFound)
				} else {
					assert.Contains(t, err.Error(), "ошибка выполнения запроса")
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "Не все ожидания мока были выполнены")
		})
	}
}
