package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crickmind/server/internal/middleware"
	"github.com/crickmind/server/internal/models"
	"github.com/crickmind/server/internal/services"
)

// Ограничения пагинации списка материалов.
const (
	defaultReportsLimit = 20
	maxReportsLimit     = 100
)

// ReportHandler обрабатывает HTTP-запросы, связанные с сохраненными материалами.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler создает новый экземпляр ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// Save обрабатывает POST запрос на сохранение сгенерированного материала.
func (h *ReportHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ReportHandler:Save] Не удалось получить userID из контекста")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var req models.SaveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ReportHandler:Save] Ошибка декодирования запроса: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" || req.Content == "" {
		respondError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	log.Printf("[ReportHandler:Save] Запрос на сохранение материала от пользователя %d", userID)

	report, err := h.reportService.SaveReport(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReportKind) {
			respondError(w, http.StatusBadRequest, "Unknown report kind")
			return
		}
		log.Printf("[ReportHandler:Save] Ошибка сервиса при сохранении для пользователя %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// List обрабатывает GET запрос на получение списка материалов пользователя.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ReportHandler:List] Не удалось получить userID из контекста")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Получаем параметры пагинации (простой вариант, без валидации)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > maxReportsLimit {
		limit = defaultReportsLimit
	}
	if offset < 0 {
		offset = 0
	}

	log.Printf("[ReportHandler:List] Запрос списка материалов от пользователя %d (limit=%d, offset=%d)",
		userID, limit, offset)

	reports, err := h.reportService.ListReports(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("[ReportHandler:List] Ошибка сервиса для пользователя %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, reports)
}

// Get обрабатывает GET запрос на получение текста материала.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ReportHandler:Get] Не удалось получить userID из контекста")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil || reportID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	report, reader, err := h.reportService.GetReportContent(r.Context(), userID, reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Printf("[ReportHandler:Get] Ошибка сервиса для материала %d: %v", reportID, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Printf("[ReportHandler:Get] Ошибка закрытия потока материала %d: %v", reportID, closeErr)
		}
	}()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.FormatInt(report.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)

	if _, err = io.Copy(w, reader); err != nil {
		log.Printf("[ReportHandler:Get] Ошибка отправки текста материала %d: %v", reportID, err)
		return
	}

	log.Printf("[ReportHandler:Get] Материал %d отправлен пользователю %d", reportID, userID)
}

// Delete обрабатывает DELETE запрос на удаление материала.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ReportHandler:Delete] Не удалось получить userID из контекста")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil || reportID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	if err = h.reportService.DeleteReport(r.Context(), userID, reportID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Printf("[ReportHandler:Delete] Ошибка сервиса для материала %d: %v", reportID, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 No Content - успешное удаление без тела ответа
	log.Printf("[ReportHandler:Delete] Материал %d пользователя %d удален", reportID, userID)
}
