package models

import (
	"time"
)

type ShipmentStatus string

const (
	ShipmentStatusPending                   ShipmentStatus = "pending"                     // Ожидает заявок водителей
	ShipmentStatusAccepted                  ShipmentStatus = "accepted"                    // Принята к исполнению
	ShipmentStatusAssigned                  ShipmentStatus = "assigned"                    // Назначен водитель
	ShipmentStatusPickupVerificationPending ShipmentStatus = "pickup_verification_pending" // Идет проверка при получении
	ShipmentStatusPickupVerified            ShipmentStatus = "pickup_verified"             // Проверка пройдена
	ShipmentStatusPickedUp                  ShipmentStatus = "picked_up"                   // Груз получен
	ShipmentStatusInTransit                 ShipmentStatus = "in_transit"                  // В пути
	ShipmentStatusDelivered                 ShipmentStatus = "delivered"                   // Доставлена
	ShipmentStatusCancelled                 ShipmentStatus = "cancelled"                   // Отменена
)

// IsTerminal сообщает, является ли статус конечным
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusCancelled
}

type Shipment struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	ClientID           uint           `json:"client_id" gorm:"not null;index"`
	DriverID           *uint          `json:"driver_id,omitempty" gorm:"index;default:null"`
	Status             ShipmentStatus `json:"status" gorm:"type:varchar(32);default:'pending';index"`
	PickupAddress      string         `json:"pickup_address" gorm:"not null"`
	DeliveryAddress    string         `json:"delivery_address" gorm:"not null"`
	PickupLocation     string         `json:"pickup_location" gorm:"type:point;not null"`
	DeliveryLocation   string         `json:"delivery_location" gorm:"type:point;not null"`
	VehicleMake        string         `json:"vehicle_make" gorm:"not null"`
	VehicleModel       string         `json:"vehicle_model" gorm:"not null"`
	VehicleYear        string         `json:"vehicle_year" gorm:"default:''"`
	Description        string         `json:"description" gorm:"default:''"`
	Price              float64        `json:"price" gorm:"not null"`
	CancellationReason string         `json:"cancellation_reason,omitempty" gorm:"default:''"`
	PickedUpAt         *time.Time     `json:"picked_up_at,omitempty"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	Client       User             `json:"-" gorm:"foreignKey:ClientID"`
	Driver       *User            `json:"-" gorm:"foreignKey:DriverID"`
	Applications []JobApplication `json:"-" gorm:"foreignKey:ShipmentID"`
}

type ShipmentResponse struct {
	ID                 uint           `json:"id"`
	ClientID           uint           `json:"client_id"`
	DriverID           *uint          `json:"driver_id,omitempty"`
	Status             ShipmentStatus `json:"status"`
	PickupAddress      string         `json:"pickup_address"`
	DeliveryAddress    string         `json:"delivery_address"`
	PickupLocation     string         `json:"pickup_location"`
	DeliveryLocation   string         `json:"delivery_location"`
	VehicleMake        string         `json:"vehicle_make"`
	VehicleModel       string         `json:"vehicle_model"`
	VehicleYear        string         `json:"vehicle_year,omitempty"`
	Description        string         `json:"description,omitempty"`
	Price              float64        `json:"price"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	PickedUpAt         *time.Time     `json:"picked_up_at,omitempty"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	ClientName         string         `json:"client_name,omitempty"`
	DriverName         string         `json:"driver_name,omitempty"`
}

// ShipmentCreate используется только для создания новой отправки
type ShipmentCreate struct {
	ClientID         uint           `gorm:"not null"`
	Status           ShipmentStatus `gorm:"type:varchar(32);default:'pending'"`
	PickupAddress    string         `gorm:"not null"`
	DeliveryAddress  string         `gorm:"not null"`
	PickupLocation   string         `gorm:"type:point;not null"`
	DeliveryLocation string         `gorm:"type:point;not null"`
	VehicleMake      string         `gorm:"not null"`
	VehicleModel     string         `gorm:"not null"`
	VehicleYear      string         `gorm:"default:''"`
	Description      string         `gorm:"default:''"`
	Price            float64        `gorm:"not null"`
}

func (sc *ShipmentCreate) TableName() string {
	return "shipments"
}

func (s *Shipment) ToResponse() ShipmentResponse {
	return ShipmentResponse{
		ID:                 s.ID,
		ClientID:           s.ClientID,
		DriverID:           s.DriverID,
		Status:             s.Status,
		PickupAddress:      s.PickupAddress,
		DeliveryAddress:    s.DeliveryAddress,
		PickupLocation:     s.PickupLocation,
		DeliveryLocation:   s.DeliveryLocation,
		VehicleMake:        s.VehicleMake,
		VehicleModel:       s.VehicleModel,
		VehicleYear:        s.VehicleYear,
		Description:        s.Description,
		Price:              s.Price,
		CancellationReason: s.CancellationReason,
		PickedUpAt:         s.PickedUpAt,
		DeliveredAt:        s.DeliveredAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
