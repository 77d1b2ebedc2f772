package models

import "time"

// Виды сохраняемых материалов. Совпадают с эндпоинтами генерации.
const (
	ReportKindChat         = "chat"
	ReportKindMatchSummary = "match-summary"
	ReportKindPlayerReport = "player-report"
	ReportKindTeamReport   = "team-report"
	ReportKindCommentary   = "commentary"
)

// SavedReport представляет сохраненный пользователем сгенерированный материал
// (раздел "Избранное"). Сам текст хранится в объектном хранилище под ObjectKey,
// в БД лежат только метаданные.
type SavedReport struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Kind      string    `db:"kind" json:"kind"`
	Title     string    `db:"title" json:"title"`
	ObjectKey string    `db:"object_key" json:"-"` // Ключ объекта не отдаем клиенту
	SizeBytes int64     `db:"size_bytes" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SaveReportRequest представляет тело запроса на сохранение материала.
type SaveReportRequest struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
