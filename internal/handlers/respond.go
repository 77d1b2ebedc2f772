package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// respondJSON пишет payload в ответ в виде JSON с указанным статусом.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Статус уже отправлен, изменить ответ нельзя
		log.Printf("[Handlers] Ошибка кодирования JSON ответа: %v", err)
	}
}

// respondRaw пишет заранее сериализованный JSON (например, сырой ответ провайдера).
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf("[Handlers] Ошибка записи ответа: %v", err)
	}
}

// errorResponse представляет тело ответа с ошибкой: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

// respondError пишет ошибку в формате {"error": "..."}.
// Текст сообщения - единственное, что уходит клиенту: внутренние детали не утекают.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
