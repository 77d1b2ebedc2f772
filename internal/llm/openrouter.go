// Package llm содержит клиент внешнего генеративного провайдера (OpenRouter)
// и шаблоны промптов для крикетного контента.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultModel   = "google/gemma-3-4b-it:free"
	defaultTimeout = 60 * time.Second

	// Максимальный размер тела ответа провайдера, который мы готовы прочитать.
	maxResponseBytes = 1 << 20
)

// Message представляет одно сообщение в диалоге chat-completions.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest представляет тело запроса к OpenRouter.
type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// UpstreamError сигнализирует об ошибке внешнего провайдера.
// Сообщение провайдера сохраняется и отдается вызывающей стороне как есть.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ошибка провайдера генерации (статус %d): %s", e.StatusCode, e.Message)
}

// Client определяет интерфейс генератора крикетного контента.
// Каждый метод возвращает сырой JSON ответа провайдера: клиентское приложение
// само извлекает choices[0].message.content.
type Client interface {
	ChatResponse(ctx context.Context, userMessage string) (json.RawMessage, error)
	MatchSummary(ctx context.Context, details any) (json.RawMessage, error)
	PlayerReport(ctx context.Context, details any) (json.RawMessage, error)
	TeamReport(ctx context.Context, details any) (json.RawMessage, error)
	Commentary(ctx context.Context, details any) (json.RawMessage, error)
}

// Config содержит параметры подключения к OpenRouter.
type Config struct {
	APIKey   string // Ключ API (обязателен)
	BaseURL  string // URL эндпоинта chat-completions
	Model    string // Имя модели; пустое значение заменяется моделью по умолчанию
	SiteURL  string // Заголовок HTTP-Referer (атрибуция OpenRouter)
	SiteName string // Заголовок X-Title
}

// openRouterClient реализует Client поверх HTTP API OpenRouter.
var _ Client = (*openRouterClient)(nil)

type openRouterClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewOpenRouterClient создает новый клиент OpenRouter.
func NewOpenRouterClient(cfg Config) Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &openRouterClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// getResponse выполняет запрос chat-completions и возвращает сырое тело ответа.
func (c *openRouterClient) getResponse(ctx context.Context, messages []Message) (json.RawMessage, error) {
	reqBody := completionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования запроса к провайдеру: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса к провайдеру: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	req.Header.Set("X-Title", c.cfg.SiteName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[LLM] Ошибка выполнения запроса к провайдеру: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса к провайдеру: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[LLM] Ошибка закрытия тела ответа провайдера: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа провайдера: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Printf("[LLM] Провайдер вернул статус %d", resp.StatusCode)
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
	}

	return body, nil
}

// upstreamMessage извлекает человекочитаемое сообщение из тела ошибки провайдера.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return string(body)
}

// ChatResponse отвечает на свободный вопрос пользователя про IPL.
func (c *openRouterClient) ChatResponse(ctx context.Context, userMessage string) (json.RawMessage, error) {
	messages := []Message{
		{
			Role: "system",
			Content: "You are an IPL cricket expert chatbot. You should only respond to questions " +
				"related to IPL (Indian Premier League) cricket. If the user asks about any other topic, " +
				"respond with 'I'm sorry, I can only provide information about IPL cricket. Please ask " +
				"questions related to IPL matches, players, teams, or statistics.'",
		},
		{Role: "user", Content: userMessage},
	}
	return c.getResponse(ctx, messages)
}

// MatchSummary генерирует сводку матча по переданным данным.
func (c *openRouterClient) MatchSummary(ctx context.Context, details any) (json.RawMessage, error) {
	payload, err := marshalDetails(details)
	if err != nil {
		return nil, err
	}
	messages := []Message{
		{
			Role: "system",
			Content: "You are a cricket analyst providing match summaries. Provide only the factual " +
				"summary without any follow-up questions or suggestions for additional information.",
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Generate a detailed summary for the cricket match with the following "+
				"details: %s. Focus only on the match events and outcomes. Do not ask follow-up questions "+
				"or suggest additional information.", payload),
		},
	}
	return c.getResponse(ctx, messages)
}

// PlayerReport генерирует аналитический отчет по игроку.
func (c *openRouterClient) PlayerReport(ctx context.Context, details any) (json.RawMessage, error) {
	payload, err := marshalDetails(details)
	if err != nil {
		return nil, err
	}
	messages := []Message{
		{
			Role: "system",
			Content: "You are a cricket analyst providing player reports. Provide only the factual " +
				"analysis without any follow-up questions or suggestions for additional information.",
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Generate a detailed analysis report for the cricket player with the "+
				"following details: %s. Focus only on the player's performance and statistics. Do not ask "+
				"follow-up questions or suggest additional information.", payload),
		},
	}
	return c.getResponse(ctx, messages)
}

// TeamReport генерирует аналитический отчет по команде.
func (c *openRouterClient) TeamReport(ctx context.Context, details any) (json.RawMessage, error) {
	payload, err := marshalDetails(details)
	if err != nil {
		return nil, err
	}
	messages := []Message{
		{
			Role: "system",
			Content: "You are a cricket analyst providing team reports. Provide only the factual " +
				"analysis without any follow-up questions or suggestions for additional information.",
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Generate a detailed analysis report for the cricket team with the "+
				"following details: %s. Focus only on the team's performance and statistics. Do not ask "+
				"follow-up questions or suggest additional information.", payload),
		},
	}
	return c.getResponse(ctx, messages)
}

// Commentary генерирует пошаговый комментарий матча.
func (c *openRouterClient) Commentary(ctx context.Context, details any) (json.RawMessage, error) {
	payload, err := marshalDetails(details)
	if err != nil {
		return nil, err
	}
	messages := []Message{
		{
			Role: "system",
			Content: "You are a cricket commentator providing ball-by-ball commentary. Provide only the " +
				"commentary without any follow-up questions or suggestions for additional information.",
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Generate a ball-by-ball commentary for the cricket match with the "+
				"following details: %s. Focus only on describing the match events. Do not ask follow-up "+
				"questions or suggest additional information.", payload),
		},
	}
	return c.getResponse(ctx, messages)
}

// marshalDetails сериализует структурированные данные запроса для вставки в промпт.
func marshalDetails(details any) (string, error) {
	data, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации данных запроса: %w", err)
	}
	return string(data), nil
}
