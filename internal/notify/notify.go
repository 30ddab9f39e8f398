// Package notify отправляет письма пользователям: приветствие и уведомление о заявке на обмен.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ReWear/internal/metrics"

	"go.uber.org/zap"
)

// WelcomeMail — данные приветственного письма.
type WelcomeMail struct {
	Name   string
	Email  string
	Points int64
}

// SwapRequestMail — письмо владельцу вещи о новой заявке на обмен.
type SwapRequestMail struct {
	RequesterName  string
	RequesterEmail string
	ItemTitle      string
	Message        string
	OwnerName      string
	OwnerEmail     string
}

// Notifier — почтовый коллаборатор. Ошибки не возвращаются: false означает, что письмо не ушло.
type Notifier interface {
	SendWelcome(ctx context.Context, m WelcomeMail) bool
	SendSwapRequest(ctx context.Context, m SwapRequestMail) bool
}

// WelcomeText — текст приветствия с начисленными очками.
func WelcomeText(points int64) string {
	return fmt.Sprintf("Welcome to ReWear! You've been awarded %d points to start your sustainable fashion journey.", points)
}

// Config — параметры REST API почтового сервиса.
type Config struct {
	APIURL            string
	ServiceID         string
	WelcomeTemplateID string
	SwapTemplateID    string
	PublicKey         string
}

// Enabled — заданы ли адрес API и сервис.
func (c Config) Enabled() bool {
	return c.APIURL != "" && c.ServiceID != ""
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

// HTTPNotifier шлёт письма POST-запросом с JSON в формате EmailJS.
type HTTPNotifier struct {
	cfg    Config
	client *http.Client
	logger *zap.SugaredLogger
}

func NewHTTPNotifier(cfg Config, logger *zap.SugaredLogger) *HTTPNotifier {
	return &HTTPNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (n *HTTPNotifier) SendWelcome(ctx context.Context, m WelcomeMail) bool {
	ok := n.send(ctx, n.cfg.WelcomeTemplateID, map[string]any{
		"to_name":  m.Name,
		"to_email": m.Email,
		"points":   m.Points,
		"message":  WelcomeText(m.Points),
	})
	metrics.RecordNotification("welcome", ok)
	return ok
}

func (n *HTTPNotifier) SendSwapRequest(ctx context.Context, m SwapRequestMail) bool {
	ok := n.send(ctx, n.cfg.SwapTemplateID, map[string]any{
		"requester_name":  m.RequesterName,
		"requester_email": m.RequesterEmail,
		"item_title":      m.ItemTitle,
		"message":         m.Message,
		"owner_name":      m.OwnerName,
		"owner_email":     m.OwnerEmail,
	})
	metrics.RecordNotification("swap_request", ok)
	return ok
}

func (n *HTTPNotifier) send(ctx context.Context, templateID string, params map[string]any) bool {
	body, err := json.Marshal(sendRequest{
		ServiceID:      n.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         n.cfg.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		n.logger.Errorw("email marshal failed", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Errorw("email request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warnw("email send failed", "template", templateID, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warnw("email api rejected message", "template", templateID, "status", resp.StatusCode)
		return false
	}
	return true
}

// LogNotifier — запасной вариант без почтового API: пишет содержимое письма в лог.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendWelcome(_ context.Context, m WelcomeMail) bool {
	n.logger.Infow("welcome email would be sent",
		"to", m.Email,
		"subject", "Welcome to ReWear!",
		"body", fmt.Sprintf("Hi %s,\n\n%s\n\nBest regards,\nThe ReWear Team", m.Name, WelcomeText(m.Points)),
	)
	metrics.RecordNotification("welcome", true)
	return true
}

func (n *LogNotifier) SendSwapRequest(_ context.Context, m SwapRequestMail) bool {
	n.logger.Infow("swap request email would be sent",
		"to", m.OwnerEmail,
		"item", m.ItemTitle,
		"requester", m.RequesterName,
		"message", m.Message,
	)
	metrics.RecordNotification("swap_request", true)
	return true
}

// New выбирает HTTPNotifier, если API настроен, иначе LogNotifier.
func New(cfg Config, logger *zap.SugaredLogger) Notifier {
	if cfg.Enabled() {
		return NewHTTPNotifier(cfg, logger)
	}
	return NewLogNotifier(logger)
}
