package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"casaora/server/internal/models"
)

// Service sends portfolio health alerts through a Telegram bot.
type Service struct {
	logger    *logrus.Logger
	client    *http.Client
	isEnabled bool
	botToken  string
	chatID    string
	filters   *models.AlertFilters
}

func NewService(logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configure sets the bot credentials and alert filters.
func (s *Service) Configure(botToken, chatID string, isEnabled bool, filters *models.AlertFilters) {
	s.botToken = botToken
	s.chatID = chatID
	s.isEnabled = isEnabled
	s.filters = filters
}

// IsEnabled reports whether alerts will actually be delivered.
func (s *Service) IsEnabled() bool {
	return s.isEnabled && s.botToken != "" && s.chatID != ""
}

// NotifyCriticalProperty sends an alert for a property that entered the
// critical health state, if it passes the configured filters.
func (s *Service) NotifyCriticalProperty(row *models.PortfolioRow) error {
	if !s.IsEnabled() {
		return nil
	}
	if !s.filters.IsRowAllowed(row) {
		s.logger.WithField("property_id", row.ID).Debug("Critical property filtered out of alerts")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("🚨 <b>Property needs attention</b>\n\n")
	sb.WriteString(fmt.Sprintf("<b>%s</b> (%s)\n", row.Name, row.Code))
	if row.City != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", row.City))
	}
	sb.WriteString(fmt.Sprintf("\nStatus: %s\n", row.Status))
	sb.WriteString(fmt.Sprintf("Occupancy: %d%% (%d units, %d active leases)\n", row.OccupancyRate, row.UnitCount, row.ActiveLeaseCount))
	if row.OverdueCollectionCount > 0 {
		sb.WriteString(fmt.Sprintf("Overdue collections: %d\n", row.OverdueCollectionCount))
	}
	if row.UrgentTaskCount > 0 {
		sb.WriteString(fmt.Sprintf("Urgent tasks: %d of %d open\n", row.UrgentTaskCount, row.OpenTaskCount))
	}

	return s.SendMessage(sb.String())
}

// SendMessage sends an HTML-formatted message to the configured chat.
func (s *Service) SendMessage(text string) error {
	if s.botToken == "" || s.chatID == "" {
		return errors.New("telegram is not configured")
	}

	payload := map[string]any{
		"chat_id":    s.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		s.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(responseBody),
		}).Error("Telegram API returned an error")
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}

	return nil
}
