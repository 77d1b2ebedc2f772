package models

import "time"

// User представляет зарегистрированного пользователя.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
// Хеш пароля никогда не сериализуется в JSON.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Не отправляем хеш пароля в JSON
	FavoriteTeam string    `db:"favorite_team" json:"favoriteTeam"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PublicUser - часть записи пользователя, безопасная для отдачи клиенту.
type PublicUser struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FavoriteTeam string `json:"favoriteTeam"`
}

// Public возвращает публичное представление пользователя (без хеша пароля).
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:     u.Username,
		Email:        u.Email,
		FavoriteTeam: u.FavoriteTeam,
	}
}

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FavoriteTeam string `json:"favoriteTeam"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет тело ответа при успешной регистрации или входе.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
