package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crickmind/server/internal/models"
	"github.com/crickmind/server/internal/repository"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	// Register создает пользователя и возвращает JWT токен с публичным представлением.
	Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error)
	// Login проверяет креды и возвращает JWT токен с публичным представлением.
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

// Время жизни токена - 24 часа.
const tokenTTL = time.Hour * 24

const tokenIssuer = "crickmind-server"

// Claims представляет полезную нагрузку JWT.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo  repository.UserRepository // Зависимость от репозитория пользователей
	jwtSecret []byte                    // Ключ подписи из конфигурации, только чтение
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
// Ключ подписи передается явно при старте процесса и далее не меняется.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register регистрирует нового пользователя и сразу выдает ему токен.
// Пароль хешируется до записи; открытый текст нигде не сохраняется.
func (s *authService) Register(
	ctx context.Context,
	req models.RegisterRequest,
) (string, *models.User, error) {
	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", req.Email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FavoriteTeam: req.FavoriteTeam,
	}

	// Создаем пользователя через репозиторий. Конфликт уникальности приходит
	// от самого хранилища, отдельной проверки существования нет.
	userID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			log.Printf("[AuthService] Попытка регистрации с занятым email: %s", req.Email)
			return "", nil, ErrUserExists // Возвращаем ошибку слоя сервиса
		}
		log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", req.Email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при создании пользователя")
	}
	user.ID = userID

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", req.Email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован (ID: %d)", req.Email, user.ID)
	return token, user, nil
}

// Login аутентифицирует пользователя и возвращает JWT токен.
// Несуществующий email и неверный пароль дают одну и ту же ошибку,
// чтобы по ответу нельзя было перечислять зарегистрированные адреса.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа с неизвестным email: %s", email)
			return "", nil, ErrInvalidCredentials
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	// Сравниваем предоставленный пароль с хешем из базы данных.
	// bcrypt выполняет сравнение за константное относительно хеша время.
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", email)
	return token, user, nil
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)), // Время истечения
			IssuedAt:  jwt.NewNumericDate(now),               // Время выдачи
			NotBefore: jwt.NewNumericDate(now),               // Время, с которого токен валиден
			Issuer:    tokenIssuer,                           // Источник токена
		},
	}

	// Создаем токен с нашими claims и методом подписи HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}

	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserExists         = errors.New("пользователь уже существует")
)
