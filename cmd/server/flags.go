package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	// Порт по умолчанию для HTTP (непривилегированный).
	defaultServerPort = "8080"

	// Значения по умолчанию для OpenRouter.
	defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultSiteURL       = "http://localhost:3000"
	defaultSiteName      = "Cricket Analytics"

	// Значения по умолчанию для MinIO (из docker-compose).
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioUser     = "minioadmin"
	defaultMinioPassword = "minioadmin"
	defaultMinioBucket   = "crickmind-reports"

	// Переменные окружения.
	envServerPort       = "SERVER_PORT"
	envDatabaseDSN      = "DATABASE_DSN"
	envJWTSecret        = "JWT_SECRET" //nolint:gosec // Имя переменной окружения, не секрет
	envOpenRouterAPIKey = "OPENROUTER_API_KEY"
	envOpenRouterURL    = "OPENROUTER_BASE_URL"
	envOpenRouterModel  = "OPENROUTER_MODEL"
	envSiteURL          = "SITE_URL"
	envSiteName         = "SITE_NAME"
	envMinioEndpoint    = "MINIO_ENDPOINT"
	envMinioUser        = "MINIO_USER"
	envMinioPassword    = "MINIO_PASSWORD"
	envMinioBucket      = "MINIO_BUCKET"
)

// config хранит конфигурацию сервера.
// Заполняется один раз при старте и дальше передается по ссылке:
// никаких чтений окружения по ходу обработки запросов.
type config struct {
	Port             string
	DatabaseDSN      string
	JWTSecret        string
	OpenRouterAPIKey string
	OpenRouterURL    string
	OpenRouterModel  string
	SiteURL          string
	SiteName         string
	MinioEndpoint    string
	MinioUser        string
	MinioPassword    string
	MinioBucket      string
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаг имеет приоритет над переменной окружения, переменная - над значением по умолчанию.
func parseFlags() (*config, error) {
	cfg := &config{}

	// Определяем флаги
	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт для запуска HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Секретный ключ подписи токенов (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.OpenRouterAPIKey, "openrouter-api-key", "",
		fmt.Sprintf("Ключ API OpenRouter (env: %s)", envOpenRouterAPIKey))
	flag.StringVar(&cfg.OpenRouterURL, "openrouter-url", "",
		fmt.Sprintf("URL эндпоинта OpenRouter (env: %s, default: %s)", envOpenRouterURL, defaultOpenRouterURL))
	flag.StringVar(&cfg.OpenRouterModel, "openrouter-model", "",
		fmt.Sprintf("Имя модели OpenRouter (env: %s)", envOpenRouterModel))
	flag.StringVar(&cfg.SiteURL, "site-url", "",
		fmt.Sprintf("Адрес сайта для заголовка HTTP-Referer (env: %s, default: %s)", envSiteURL, defaultSiteURL))
	flag.StringVar(&cfg.SiteName, "site-name", "",
		fmt.Sprintf("Имя сайта для заголовка X-Title (env: %s, default: %s)", envSiteName, defaultSiteName))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO (env: %s, default: %s)", envMinioEndpoint, defaultMinioEndpoint))
	flag.StringVar(&cfg.MinioUser, "minio-user", "",
		fmt.Sprintf("Логин MinIO (env: %s)", envMinioUser))
	flag.StringVar(&cfg.MinioPassword, "minio-password", "",
		fmt.Sprintf("Пароль MinIO (env: %s)", envMinioPassword))
	flag.StringVar(&cfg.MinioBucket, "minio-bucket", "",
		fmt.Sprintf("Имя бакета MinIO (env: %s, default: %s)", envMinioBucket, defaultMinioBucket))

	// Парсим флаги
	flag.Parse()

	// Применяем переменные окружения и значения по умолчанию, если флаги не заданы
	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	applyEnv(&cfg.JWTSecret, envJWTSecret, "")
	applyEnv(&cfg.OpenRouterAPIKey, envOpenRouterAPIKey, "")
	applyEnv(&cfg.OpenRouterURL, envOpenRouterURL, defaultOpenRouterURL)
	applyEnv(&cfg.OpenRouterModel, envOpenRouterModel, "")
	applyEnv(&cfg.SiteURL, envSiteURL, defaultSiteURL)
	applyEnv(&cfg.SiteName, envSiteName, defaultSiteName)
	applyEnv(&cfg.MinioEndpoint, envMinioEndpoint, defaultMinioEndpoint)
	applyEnv(&cfg.MinioUser, envMinioUser, defaultMinioUser)
	applyEnv(&cfg.MinioPassword, envMinioPassword, defaultMinioPassword)
	applyEnv(&cfg.MinioBucket, envMinioBucket, defaultMinioBucket)

	// Проверяем обязательные параметры
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан секретный ключ подписи токенов (--jwt-secret или " + envJWTSecret + ")")
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, errors.New("не указан ключ API OpenRouter (--openrouter-api-key или " + envOpenRouterAPIKey + ")")
	}

	return cfg, nil
}

// applyEnv подставляет в dst переменную окружения или значение по умолчанию,
// если значение еще не задано флагом.
func applyEnv(dst *string, envKey, fallback string) {
	if *dst != "" {
		return
	}
	if value, ok := os.LookupEnv(envKey); ok {
		*dst = value
		return
	}
	*dst = fallback
}
