package models

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"  // Ожидает решения клиента
	ApplicationStatusAccepted ApplicationStatus = "accepted" // Принята, водитель назначен
	ApplicationStatusRejected ApplicationStatus = "rejected" // Отклонена
)

// JobApplication заявка водителя на выполнение отправки
type JobApplication struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	ShipmentID   uint              `json:"shipment_id" gorm:"not null;uniqueIndex:idx_shipment_driver"`
	DriverID     uint              `json:"driver_id" gorm:"not null;uniqueIndex:idx_shipment_driver"`
	Status       ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Note         string            `json:"note" gorm:"default:''"`
	RejectReason string            `json:"reject_reason,omitempty" gorm:"default:''"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	Shipment Shipment `json:"-" gorm:"foreignKey:ShipmentID"`
	Driver   User     `json:"-" gorm:"foreignKey:DriverID"`
}

type JobApplicationResponse struct {
	ID           uint              `json:"id"`
	ShipmentID   uint              `json:"shipment_id"`
	DriverID     uint              `json:"driver_id"`
	Status       ApplicationStatus `json:"status"`
	Note         string            `json:"note,omitempty"`
	RejectReason string            `json:"reject_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DriverName   string            `json:"driver_name,omitempty"`
	DriverPhone  string            `json:"driver_phone,omitempty"`
}
