package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// Константы для типов сообщений WebSocket
const (
	ShipmentStatusUpdateType    = "SHIPMENT_STATUS_UPDATE"
	VerificationUpdateType      = "VERIFICATION_UPDATE"
	NewMessageType              = "NEW_MESSAGE"
	ApplicationStatusUpdateType = "APPLICATION_STATUS_UPDATE"
	DriverSettingsUpdateType    = "DRIVER_SETTINGS_UPDATE"
	DriverLocationUpdateType    = "DRIVER_LOCATION_UPDATE"
	DocumentStatusUpdateType    = "DOCUMENT_STATUS_UPDATE"
)

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketManager управляет всеми подключениями WebSocket
type WebSocketManager struct {
	clients       map[string]map[*websocket.Conn]bool
	clientsByUser map[uint]map[*websocket.Conn]bool
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	mutex         sync.RWMutex
}

// WebSocketClient представляет клиентское соединение WebSocket
type WebSocketClient struct {
	conn     *websocket.Conn
	userID   uint
	clientID string
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:       make(map[string]map[*websocket.Conn]bool),
		clientsByUser: make(map[uint]map[*websocket.Conn]bool),
		register:      make(chan *WebSocketClient),
		unregister:    make(chan *WebSocketClient),
	}
}

// Start запускает обработку регистраций WebSocket
func (manager *WebSocketManager) Start() {
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.mutex.Lock()
				if _, ok := manager.clients[client.clientID]; !ok {
					manager.clients[client.clientID] = make(map[*websocket.Conn]bool)
				}
				manager.clients[client.clientID][client.conn] = true

				if client.userID > 0 {
					if _, ok := manager.clientsByUser[client.userID]; !ok {
						manager.clientsByUser[client.userID] = make(map[*websocket.Conn]bool)
					}
					manager.clientsByUser[client.userID][client.conn] = true
				}
				manager.mutex.Unlock()
				log.Printf("WebSocket: клиент %s зарегистрирован (userID=%d)", client.clientID, client.userID)

			case client := <-manager.unregister:
				manager.mutex.Lock()
				if _, ok := manager.clients[client.clientID]; ok {
					if _, exists := manager.clients[client.clientID][client.conn]; exists {
						delete(manager.clients[client.clientID], client.conn)
						client.conn.Close()
					}
					if len(manager.clients[client.clientID]) == 0 {
						delete(manager.clients, client.clientID)
					}
				}

				if client.userID > 0 {
					if _, ok := manager.clientsByUser[client.userID]; ok {
						delete(manager.clientsByUser[client.userID], client.conn)
						if len(manager.clientsByUser[client.userID]) == 0 {
							delete(manager.clientsByUser, client.userID)
						}
					}
				}
				manager.mutex.Unlock()
				log.Printf("WebSocket: клиент %s отключен", client.clientID)
			}
		}
	}()
}

// BroadcastToUser отправляет сообщение всем подключениям конкретного пользователя.
// Порядок доставки между разными типами событий не гарантируется.
func (manager *WebSocketManager) BroadcastToUser(userID uint, message *WebSocketMessage) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	connections, exists := manager.clientsByUser[userID]
	if !exists || len(connections) == 0 {
		return
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("BroadcastToUser: ошибка при кодировании сообщения: %v", err)
		return
	}

	for conn := range connections {
		go func(c *websocket.Conn) {
			if err := c.WriteMessage(websocket.TextMessage, jsonMessage); err != nil {
				log.Printf("BroadcastToUser: ошибка при отправке пользователю %d: %v", userID, err)
				manager.unregister <- &WebSocketClient{
					conn:   c,
					userID: userID,
				}
			}
		}(conn)
	}
}

// ConnectionCount число активных соединений пользователя
func (manager *WebSocketManager) ConnectionCount(userID uint) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clientsByUser[userID])
}

// Handler обрабатывает подключения WebSocket
func Handler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		userID, exists := c.Get("user_id")
		clientID := c.Query("client_id")

		if clientID == "" && exists {
			clientID = fmt.Sprintf("user_%v", userID)
		} else if clientID == "" {
			clientID = fmt.Sprintf("anon_%d", time.Now().UnixNano())
		}

		wsUpgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Разрешаем подключения с любых источников
			},
		}

		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Ошибка обновления соединения до WebSocket: %v", err)
			c.String(http.StatusInternalServerError, "Не удалось установить WebSocket соединение")
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			clientID: clientID,
		}
		if exists {
			client.userID = userID.(uint)
		}

		wsManager.register <- client

		go handleMessages(client)
	}
}

// handleMessages обрабатывает сообщения от клиента
func handleMessages(client *WebSocketClient) {
	defer func() {
		wsManager.unregister <- client
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		// Отвечаем только на ping, остальные входящие сообщения игнорируются
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongMsg := map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			}
			pongJSON, _ := json.Marshal(pongMsg)
			if err := client.conn.WriteMessage(websocket.TextMessage, pongJSON); err != nil {
				log.Printf("Ошибка при отправке pong: %v", err)
			}
		}
	}
}

// SendShipmentStatusUpdate отправляет обновление статуса отправки
func SendShipmentStatusUpdate(userID uint, shipmentID uint, status string) {
	payload := map[string]interface{}{
		"shipment_id": shipmentID,
		"status":      status,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    ShipmentStatusUpdateType,
		Payload: payload,
	})
}

// SendVerificationUpdate отправляет обновление по проверке при получении
func SendVerificationUpdate(userID uint, shipmentID uint, verificationID uint, status string, remainingSeconds int) {
	payload := map[string]interface{}{
		"shipment_id":       shipmentID,
		"verification_id":   verificationID,
		"status":            status,
		"remaining_seconds": remainingSeconds,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    VerificationUpdateType,
		Payload: payload,
	})
}

// SendNewMessage отправляет уведомление о новом сообщении в чате отправки
func SendNewMessage(userID uint, shipmentID uint, messageID uint, senderID uint, content string) {
	payload := map[string]interface{}{
		"shipment_id": shipmentID,
		"message_id":  messageID,
		"sender_id":   senderID,
		"content":     content,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    NewMessageType,
		Payload: payload,
	})
}

// SendApplicationStatusUpdate отправляет обновление статуса заявки водителя
func SendApplicationStatusUpdate(userID uint, applicationID uint, shipmentID uint, status string) {
	payload := map[string]interface{}{
		"application_id": applicationID,
		"shipment_id":    shipmentID,
		"status":         status,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    ApplicationStatusUpdateType,
		Payload: payload,
	})
}

// SendDriverSettingsUpdate рассылает изменение доступности по всем сессиям водителя
func SendDriverSettingsUpdate(userID uint, isAvailable bool) {
	payload := map[string]interface{}{
		"user_id":      userID,
		"is_available": isAvailable,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    DriverSettingsUpdateType,
		Payload: payload,
	})
}

// SendDriverLocationUpdate отправляет местоположение водителя клиенту отправки
func SendDriverLocationUpdate(userID uint, driverID uint, lat, lng float64) {
	payload := map[string]interface{}{
		"driver_id": driverID,
		"lat":       lat,
		"lng":       lng,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    DriverLocationUpdateType,
		Payload: payload,
	})
}

// SendDocumentStatusUpdate отправляет обновление статуса документов водителя
func SendDocumentStatusUpdate(userID uint, documentID uint, status string) {
	payload := map[string]interface{}{
		"document_id": documentID,
		"status":      status,
	}
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type:    DocumentStatusUpdateType,
		Payload: payload,
	})
}

// GetManager возвращает глобальный экземпляр менеджера WebSocket
func GetManager() *WebSocketManager {
	return wsManager
}

// StartManager запускает менеджер WebSocket
func StartManager() {
	wsManager.Start()
}
