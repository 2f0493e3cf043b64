package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// NotificationService отправляет push-уведомления через FCM
type NotificationService struct {
	serverKey  string
	httpClient *http.Client
}

type NotificationPayload struct {
	To           string                 `json:"to"`
	Notification NotificationContent    `json:"notification"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

type NotificationContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		serverKey:  os.Getenv("FIREBASE_SERVER_KEY"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *NotificationService) SendPushNotification(token string, title, body string, data map[string]interface{}) error {
	if s.serverKey == "" || token == "" {
		return nil
	}

	payload := NotificationPayload{
		To: token,
		Notification: NotificationContent{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге данных: %v", err)
	}

	req, err := http.NewRequest("POST", "https://fcm.googleapis.com/fcm/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %v", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("key=%s", s.serverKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка при отправке запроса: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("неуспешный статус ответа: %d", resp.StatusCode)
	}

	return nil
}
