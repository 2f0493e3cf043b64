package models

import (
	"time"
)

// Message сообщение в чате по конкретной отправке.
// После создания изменяется только флаг прочтения.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ShipmentID uint      `json:"shipment_id" gorm:"not null;index"`
	SenderID   uint      `json:"sender_id" gorm:"not null"`
	Content    string    `json:"content" gorm:"not null"`
	Read       bool      `json:"read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`

	Shipment Shipment `json:"-" gorm:"foreignKey:ShipmentID"`
	Sender   User     `json:"-" gorm:"foreignKey:SenderID"`
}

type MessageResponse struct {
	ID         uint      `json:"id"`
	ShipmentID uint      `json:"shipment_id"`
	SenderID   uint      `json:"sender_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
	SenderName string    `json:"sender_name,omitempty"`
}
