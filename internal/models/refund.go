package models

import (
	"time"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"   // Ожидает обработки платежным провайдером
	RefundStatusProcessed RefundStatus = "processed" // Возврат выполнен
	RefundStatusFailed    RefundStatus = "failed"    // Ошибка обработки
)

// Refund заявка на возврат средств по отмененной отправке.
// Итоговая сумма подтверждается платежным провайдером, здесь фиксируется
// запрошенный полный возврат.
type Refund struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	ShipmentID uint         `json:"shipment_id" gorm:"uniqueIndex;not null"`
	ClientID   uint         `json:"client_id" gorm:"not null"`
	Amount     float64      `json:"amount" gorm:"not null"`
	Reason     string       `json:"reason" gorm:"not null"`
	Status     RefundStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Shipment Shipment `json:"-" gorm:"foreignKey:ShipmentID"`
	Client   User     `json:"-" gorm:"foreignKey:ClientID"`
}
