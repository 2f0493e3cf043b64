package handlers

import (
	"net/http"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage отправляет сообщение в чат отправки и уведомляет второго участника
func SendMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		senderID := c.GetUint("user_id")

		message := models.Message{
			ShipmentID: shipment.ID,
			SenderID:   senderID,
			Content:    req.Content,
		}
		if err := db.Create(&message).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отправке сообщения"})
			return
		}

		// Получатель — второй участник отправки
		recipientID := shipment.ClientID
		if senderID == shipment.ClientID && shipment.DriverID != nil {
			recipientID = *shipment.DriverID
		}
		if recipientID != senderID {
			websocket.SendNewMessage(recipientID, shipment.ID, message.ID, senderID, message.Content)
		}

		c.JSON(http.StatusOK, message)
	}
}

// GetMessages возвращает историю чата отправки в хронологическом порядке
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		var messages []models.Message
		if err := db.Preload("Sender").
			Where("shipment_id = ?", shipment.ID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении сообщений"})
			return
		}

		response := make([]models.MessageResponse, 0, len(messages))
		for i := range messages {
			response = append(response, models.MessageResponse{
				ID:         messages[i].ID,
				ShipmentID: messages[i].ShipmentID,
				SenderID:   messages[i].SenderID,
				Content:    messages[i].Content,
				Read:       messages[i].Read,
				CreatedAt:  messages[i].CreatedAt,
				SenderName: messages[i].Sender.FullName(),
			})
		}

		c.JSON(http.StatusOK, response)
	}
}

// MarkMessagesRead помечает прочитанными все входящие сообщения чата
func MarkMessagesRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		userID := c.GetUint("user_id")

		result := db.Model(&models.Message{}).
			Where("shipment_id = ? AND sender_id <> ? AND read = false", shipment.ID, userID).
			Update("read", true)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении сообщений"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
	}
}
