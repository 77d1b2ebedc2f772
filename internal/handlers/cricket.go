package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/crickmind/server/internal/llm"
	"github.com/crickmind/server/internal/middleware"
)

// CricketHandler обрабатывает запросы на генерацию крикетного контента.
// Бизнес-логики здесь нет: тело запроса превращается в промпт,
// а сырой JSON ответа провайдера отдается клиенту без изменений.
type CricketHandler struct {
	llmClient llm.Client
}

// NewCricketHandler создает новый экземпляр CricketHandler.
func NewCricketHandler(c llm.Client) *CricketHandler {
	return &CricketHandler{llmClient: c}
}

// ChatRequest представляет тело запроса чат-бота.
type ChatRequest struct {
	Message string `json:"message"`
}

// MatchSummaryRequest представляет тело запроса сводки матча.
type MatchSummaryRequest struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
	Year  string `json:"year,omitempty"`
}

// PlayerReportRequest представляет тело запроса отчета по игроку.
type PlayerReportRequest struct {
	PlayerName string `json:"playerName"`
	Team       string `json:"team,omitempty"`
	Year       string `json:"year,omitempty"`
}

// TeamReportRequest представляет тело запроса отчета по команде.
type TeamReportRequest struct {
	TeamName string `json:"teamName"`
}

// CommentaryRequest представляет тело запроса комментария матча.
type CommentaryRequest struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

// Chat обрабатывает запрос чат-бота.
func (h *CricketHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	h.relay(w, r, "Chat", func() (json.RawMessage, error) {
		return h.llmClient.ChatResponse(r.Context(), req.Message)
	})
}

// MatchSummary обрабатывает запрос сводки матча.
func (h *CricketHandler) MatchSummary(w http.ResponseWriter, r *http.Request) {
	var req MatchSummaryRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Team1 == "" || req.Team2 == "" {
		respondError(w, http.StatusBadRequest, "Both teams are required")
		return
	}

	h.relay(w, r, "MatchSummary", func() (json.RawMessage, error) {
		return h.llmClient.MatchSummary(r.Context(), req)
	})
}

// PlayerReport обрабатывает запрос отчета по игроку.
func (h *CricketHandler) PlayerReport(w http.ResponseWriter, r *http.Request) {
	var req PlayerReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.PlayerName == "" {
		respondError(w, http.StatusBadRequest, "Player name is required")
		return
	}

	h.relay(w, r, "PlayerReport", func() (json.RawMessage, error) {
		return h.llmClient.PlayerReport(r.Context(), req)
	})
}

// TeamReport обрабатывает запрос отчета по команде.
func (h *CricketHandler) TeamReport(w http.ResponseWriter, r *http.Request) {
	var req TeamReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.TeamName == "" {
		respondError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	h.relay(w, r, "TeamReport", func() (json.RawMessage, error) {
		return h.llmClient.TeamReport(r.Context(), req)
	})
}

// Commentary обрабатывает запрос комментария матча.
func (h *CricketHandler) Commentary(w http.ResponseWriter, r *http.Request) {
	var req CommentaryRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Team1 == "" || req.Team2 == "" {
		respondError(w, http.StatusBadRequest, "Both teams are required")
		return
	}

	h.relay(w, r, "Commentary", func() (json.RawMessage, error) {
		return h.llmClient.Commentary(r.Context(), req)
	})
}

// relay вызывает генерацию и транслирует результат клиенту.
// Ошибка провайдера уходит как 500 с его сообщением, без повторных попыток.
func (h *CricketHandler) relay(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	generate func() (json.RawMessage, error),
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[CricketHandler:%s] Не удалось получить userID из контекста", op)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.Printf("[CricketHandler:%s] Запрос генерации от пользователя %d", op, userID)

	raw, err := generate()
	if err != nil {
		var upstreamErr *llm.UpstreamError
		if errors.As(err, &upstreamErr) {
			log.Printf("[CricketHandler:%s] Провайдер вернул ошибку для пользователя %d: статус %d",
				op, userID, upstreamErr.StatusCode)
			respondError(w, http.StatusInternalServerError, upstreamErr.Message)
			return
		}
		log.Printf("[CricketHandler:%s] Ошибка генерации для пользователя %d: %v", op, userID, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondRaw(w, http.StatusOK, raw)
	log.Printf("[CricketHandler:%s] Ответ провайдера отправлен пользователю %d", op, userID)
}

// decodeRequest декодирует JSON тело запроса; при ошибке пишет 400 и возвращает false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("[CricketHandler] Ошибка декодирования запроса: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
