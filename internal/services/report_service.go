package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/crickmind/server/internal/models"
	"github.com/crickmind/server/internal/repository"
	"github.com/crickmind/server/internal/storage"
)

// ReportService определяет интерфейс для сервиса сохраненных материалов ("Избранное").
type ReportService interface {
	// SaveReport сохраняет сгенерированный текст и возвращает метаданные записи.
	SaveReport(ctx context.Context, userID int64, req models.SaveReportRequest) (*models.SavedReport, error)
	// ListReports возвращает метаданные материалов пользователя.
	ListReports(ctx context.Context, userID int64, limit, offset int) ([]models.SavedReport, error)
	// GetReportContent возвращает метаданные и поток с текстом материала.
	GetReportContent(ctx context.Context, userID, reportID int64) (*models.SavedReport, io.ReadCloser, error)
	// DeleteReport удаляет материал вместе с его текстом в объектном хранилище.
	DeleteReport(ctx context.Context, userID, reportID int64) error
}

const reportContentType = "text/plain; charset=utf-8"

// Допустимые виды материалов.
var validReportKinds = map[string]struct{}{
	models.ReportKindChat:         {},
	models.ReportKindMatchSummary: {},
	models.ReportKindPlayerReport: {},
	models.ReportKindTeamReport:   {},
	models.ReportKindCommentary:   {},
}

// Убедимся, что reportService удовлетворяет интерфейсу ReportService.
var _ ReportService = (*reportService)(nil)

type reportService struct {
	reportRepo  repository.ReportRepository // Метаданные в PostgreSQL
	fileStorage storage.FileStorage         // Тексты в объектном хранилище
}

// NewReportService создает новый экземпляр сервиса сохраненных материалов.
func NewReportService(reportRepo repository.ReportRepository, fileStorage storage.FileStorage) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		fileStorage: fileStorage,
	}
}

// SaveReport загружает текст в объектное хранилище и пишет метаданные в БД.
func (s *reportService) SaveReport(
	ctx context.Context,
	userID int64,
	req models.SaveReportRequest,
) (*models.SavedReport, error) {
	if _, ok := validReportKinds[req.Kind]; !ok {
		log.Printf("[ReportService] Неизвестный вид материала '%s' от пользователя %d", req.Kind, userID)
		return nil, ErrInvalidReportKind
	}

	objectKey := uuid.NewString()
	size := int64(len(req.Content))

	err := s.fileStorage.UploadFile(ctx, objectKey, strings.NewReader(req.Content), size, reportContentType)
	if err != nil {
		log.Printf("[ReportService] Ошибка загрузки текста материала для пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении материала")
	}

	report := &models.SavedReport{
		UserID:    userID,
		Kind:      req.Kind,
		Title:     req.Title,
		ObjectKey: objectKey,
		SizeBytes: size,
	}

	reportID, err := s.reportRepo.CreateReport(ctx, report)
	if err != nil {
		// Метаданные не записались: подчищаем уже загруженный объект
		if delErr := s.fileStorage.DeleteFile(ctx, objectKey); delErr != nil {
			log.Printf("[ReportService] Ошибка удаления осиротевшего объекта '%s': %v", objectKey, delErr)
		}
		log.Printf("[ReportService] Ошибка сохранения метаданных материала для пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении материала")
	}
	report.ID = reportID

	log.Printf("[ReportService] Материал %d пользователя %d сохранен", reportID, userID)
	return report, nil
}

// ListReports возвращает метаданные материалов пользователя.
func (s *reportService) ListReports(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]models.SavedReport, error) {
	reports, err := s.reportRepo.ListReportsByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("[ReportService] Ошибка получения списка материалов пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении списка материалов")
	}
	return reports, nil
}

// GetReportContent возвращает метаданные материала и поток с его текстом.
// Поток обязан закрыть вызывающий.
func (s *reportService) GetReportContent(
	ctx context.Context,
	userID, reportID int64,
) (*models.SavedReport, io.ReadCloser, error) {
	report, err := s.reportRepo.GetReportByID(ctx, userID, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, nil, ErrReportNotFound
		}
		log.Printf("[ReportService] Ошибка поиска материала %d: %v", reportID, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при поиске материала")
	}

	reader, err := s.fileStorage.DownloadFile(ctx, report.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Метаданные есть, а объект пропал: для клиента материал не существует
			log.Printf("[ReportService] Объект '%s' материала %d отсутствует в хранилище", report.ObjectKey, reportID)
			return nil, nil, ErrReportNotFound
		}
		log.Printf("[ReportService] Ошибка скачивания текста материала %d: %v", reportID, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при скачивании материала")
	}

	return report, reader, nil
}

// DeleteReport удаляет метаданные материала и его объект в хранилище.
func (s *reportService) DeleteReport(ctx context.Context, userID, reportID int64) error {
	report, err := s.reportRepo.GetReportByID(ctx, userID, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return ErrReportNotFound
		}
		log.Printf("[ReportService] Ошибка поиска материала %d при удалении: %v", reportID, err)
		return errors.New("внутренняя ошибка сервера при удалении материала")
	}

	if err = s.reportRepo.DeleteReport(ctx, userID, reportID); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return ErrReportNotFound
		}
		log.Printf("[ReportService] Ошибка удаления метаданных материала %d: %v", reportID, err)
		return errors.New("внутренняя ошибка сервера при удалении материала")
	}

	// Объект удаляем после метаданных: осиротевший объект безвреден,
	// а висящая запись без объекта выглядела бы для клиента как битая ссылка.
	if err = s.fileStorage.DeleteFile(ctx, report.ObjectKey); err != nil {
		log.Printf("[ReportService] Ошибка удаления объекта '%s' материала %d: %v", report.ObjectKey, reportID, err)
	}

	log.Printf("[ReportService] Материал %d пользователя %d удален", reportID, userID)
	return nil
}

// Кастомные ошибки сервиса.
var (
	ErrReportNotFound    = errors.New("сохраненный материал не найден")
	ErrInvalidReportKind = errors.New("неизвестный вид материала")
)
