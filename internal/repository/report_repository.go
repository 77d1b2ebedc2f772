package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/crickmind/server/internal/models"
)

// ReportRepository определяет методы для работы с метаданными сохраненных материалов.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.SavedReport) (int64, error)
	GetReportByID(ctx context.Context, userID, reportID int64) (*models.SavedReport, error)
	ListReportsByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.SavedReport, error)
	DeleteReport(ctx context.Context, userID, reportID int64) error
}

// postgresReportRepository реализует ReportRepository для PostgreSQL.
type postgresReportRepository struct {
	db *sqlx.DB
}

// NewPostgresReportRepository создает новый экземпляр репозитория сохраненных материалов.
func NewPostgresReportRepository(db *sqlx.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

// CreateReport сохраняет метаданные нового материала и возвращает его ID.
func (r *postgresReportRepository) CreateReport(ctx context.Context, report *models.SavedReport) (int64, error) {
	query := `INSERT INTO saved_reports (user_id, kind, title, object_key, size_bytes)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var reportID int64

	err := r.db.QueryRowxContext(ctx, query,
		report.UserID, report.Kind, report.Title, report.ObjectKey, report.SizeBytes).Scan(&reportID)
	if err != nil {
		log.Printf("[ReportRepo] Ошибка при сохранении материала для пользователя %d: %v", report.UserID, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на сохранение материала: %w", err)
	}

	log.Printf("[ReportRepo] Материал '%s' пользователя %d сохранен с ID %d", report.Title, report.UserID, reportID)
	return reportID, nil
}

// GetReportByID находит материал по ID в рамках одного пользователя.
// Чужие материалы неотличимы от несуществующих: в обоих случаях ErrReportNotFound.
func (r *postgresReportRepository) GetReportByID(
	ctx context.Context,
	userID, reportID int64,
) (*models.SavedReport, error) {
	query := `SELECT id, user_id, kind, title, object_key, size_bytes, created_at
	          FROM saved_reports WHERE id=$1 AND user_id=$2`
	var report models.SavedReport

	err := r.db.GetContext(ctx, &report, query, reportID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ReportRepo] Материал %d для пользователя %d не найден", reportID, userID)
			return nil, ErrReportNotFound
		}
		log.Printf("[ReportRepo] Ошибка при поиске материала %d: %v", reportID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение материала: %w", err)
	}

	return &report, nil
}

// ListReportsByUserID возвращает метаданные материалов пользователя, новые сверху.
func (r *postgresReportRepository) ListReportsByUserID(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]models.SavedReport, error) {
	query := `SELECT id, user_id, kind, title, object_key, size_bytes, created_at
	          FROM saved_reports WHERE user_id=$1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	reports := []models.SavedReport{}

	err := r.db.SelectContext(ctx, &reports, query, userID, limit, offset)
	if err != nil {
		log.Printf("[ReportRepo] Ошибка при получении списка материалов пользователя %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на список материалов: %w", err)
	}

	log.Printf("[ReportRepo] Для пользователя %d найдено %d материалов", userID, len(reports))
	return reports, nil
}

// DeleteReport удаляет метаданные материала пользователя.
// Возвращает ErrReportNotFound, если материал не существует или принадлежит другому.
func (r *postgresReportRepository) DeleteReport(ctx context.Context, userID, reportID int64) error {
	query := `DELETE FROM saved_reports WHERE id=$1 AND user_id=$2`

	res, err := r.db.ExecContext(ctx, query, reportID, userID)
	if err != nil {
		log.Printf("[ReportRepo] Ошибка при удалении материала %d: %v", reportID, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление материала: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа удаленных строк: %w", err)
	}
	if affected == 0 {
		log.Printf("[ReportRepo] Материал %d для пользователя %d не найден при удалении", reportID, userID)
		return ErrReportNotFound
	}

	log.Printf("[ReportRepo] Материал %d пользователя %d удален", reportID, userID)
	return nil
}

// Кастомная ошибка репозитория.
var (
	ErrReportNotFound = errors.New("сохраненный материал не найден")
)
