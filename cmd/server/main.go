package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/crickmind/server/internal/handlers"
	"github.com/crickmind/server/internal/llm"
	appmiddleware "github.com/crickmind/server/internal/middleware"
	"github.com/crickmind/server/internal/repository"
	"github.com/crickmind/server/internal/services"
	"github.com/crickmind/server/internal/storage"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 90 * time.Second // Ответ провайдера генерации может идти долго
	defaultIdleTimeout  = 30 * time.Second
	corsMaxAgeSeconds   = 300
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db             *sqlx.DB
	authHandler    *handlers.AuthHandler
	cricketHandler *handlers.CricketHandler
	reportHandler  *handlers.ReportHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1) // Выход с кодом ошибки
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера CrickMind...")

	// Разбор конфигурации: при отсутствии обязательных параметров процесс завершается
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Инициализация зависимостей
	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД гарантированно выполнится при выходе из run()
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	// Настройка роутера
	r := setupRouter(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)

	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	}
	return nil // Успешное завершение run()
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД и миграции
	deps.db, err = repository.NewPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = repository.RunMigrations(context.Background(), deps.db); err != nil {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД при ошибке миграций: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	// 2. Инициализация клиента MinIO для текстов сохраненных материалов
	fileStorage, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioUser,
		SecretAccessKey: cfg.MinioPassword,
		UseSSL:          false, // Для локальной разработки
		BucketName:      cfg.MinioBucket,
	})
	if err != nil {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД при ошибке MinIO: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	// 3. Клиент внешнего провайдера генерации
	llmClient := llm.NewOpenRouterClient(llm.Config{
		APIKey:   cfg.OpenRouterAPIKey,
		BaseURL:  cfg.OpenRouterURL,
		Model:    cfg.OpenRouterModel,
		SiteURL:  cfg.SiteURL,
		SiteName: cfg.SiteName,
	})

	// 4. Создание репозиториев
	userRepo := repository.NewPostgresUserRepository(deps.db)
	reportRepo := repository.NewPostgresReportRepository(deps.db)

	// 5. Создание сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	reportService := services.NewReportService(reportRepo, fileStorage)

	// 6. Создание обработчиков
	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.cricketHandler = handlers.NewCricketHandler(llmClient)
	deps.reportHandler = handlers.NewReportHandler(reportService)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(cfg *config, deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS для браузерного клиента
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.SiteURL},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         corsMaxAgeSeconds,
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	// Определяем базовый маршрут /api
	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты (регистрация, вход)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.authHandler.Register)
			r.Post("/login", deps.authHandler.Login)
		})

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			// Применяем middleware аутентификации ко всей группе
			r.Use(appmiddleware.Authenticator(cfg.JWTSecret))

			// Маршруты генерации контента
			r.Route("/cricket", func(r chi.Router) {
				r.Post("/chat", deps.cricketHandler.Chat)
				r.Post("/match-summary", deps.cricketHandler.MatchSummary)
				r.Post("/player-report", deps.cricketHandler.PlayerReport)
				r.Post("/team-report", deps.cricketHandler.TeamReport)
				r.Post("/commentary", deps.cricketHandler.Commentary)
			})

			// Маршруты сохраненных материалов
			r.Route("/reports", func(r chi.Router) {
				r.Post("/", deps.reportHandler.Save)
				r.Get("/", deps.reportHandler.List)
				r.Get("/{reportID}", deps.reportHandler.Get)
				r.Delete("/{reportID}", deps.reportHandler.Delete)
			})
		})
	})
	return r
}
