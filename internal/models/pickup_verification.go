package models

import (
	"time"

	"github.com/lib/pq"
)

type VerificationStatus string

const (
	VerificationStatusInProgress       VerificationStatus = "in_progress"       // Водитель собирает фотографии
	VerificationStatusMatches          VerificationStatus = "matches"           // Состояние совпадает с фото клиента
	VerificationStatusMinorDifferences VerificationStatus = "minor_differences" // Небольшие расхождения, нужен ответ клиента
	VerificationStatusMajorIssues      VerificationStatus = "major_issues"      // Серьезные проблемы, нужно решение администратора
)

type ClientResponse string

const (
	ClientResponseApproved ClientResponse = "approved" // Клиент подтвердил получение
	ClientResponseDisputed ClientResponse = "disputed" // Клиент оспорил состояние
)

// PickupVerification фиксирует проверку состояния автомобиля при получении.
// На отправку допускается не более одной активной проверки (частичный
// уникальный индекс active_shipment_id создается в миграции main.go).
type PickupVerification struct {
	ID                  uint               `json:"id" gorm:"primaryKey"`
	ShipmentID          uint               `json:"shipment_id" gorm:"not null;index"`
	DriverID            uint               `json:"driver_id" gorm:"not null"`
	Status              VerificationStatus `json:"status" gorm:"type:varchar(32);default:'in_progress'"`
	DriverNotes         string             `json:"driver_notes,omitempty" gorm:"default:''"`
	Differences         pq.StringArray     `json:"differences,omitempty" gorm:"type:text[]"`
	StartLocation       GeoPoint           `json:"start_location" gorm:"embedded;embeddedPrefix:start_"`
	SubmitLocation      GeoPoint           `json:"submit_location" gorm:"embedded;embeddedPrefix:submit_"`
	StartedAt           time.Time          `json:"started_at" gorm:"autoCreateTime"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	ClientResponse      *ClientResponse    `json:"client_response,omitempty" gorm:"type:varchar(16);default:null"`
	ClientRespondedAt   *time.Time         `json:"client_responded_at,omitempty"`
	ClientResponseNotes string             `json:"client_response_notes,omitempty" gorm:"default:''"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`

	Shipment Shipment            `json:"-" gorm:"foreignKey:ShipmentID"`
	Driver   User                `json:"-" gorm:"foreignKey:DriverID"`
	Photos   []VerificationPhoto `json:"photos,omitempty" gorm:"foreignKey:VerificationID"`
}

// IsActive сообщает, ждет ли проверка действий водителя или клиента
func (v *PickupVerification) IsActive() bool {
	switch v.Status {
	case VerificationStatusInProgress:
		return true
	case VerificationStatusMinorDifferences, VerificationStatusMajorIssues:
		return v.ClientResponse == nil
	default:
		return false
	}
}

// VerificationPhoto фотография водителя, привязанная к ракурсу
type VerificationPhoto struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	VerificationID uint      `json:"verification_id" gorm:"not null;index"`
	Angle          string    `json:"angle" gorm:"type:varchar(32);not null"`
	PhotoURL       string    `json:"photo_url" gorm:"not null"`
	Location       GeoPoint  `json:"location" gorm:"embedded;embeddedPrefix:loc_"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PickupVerificationResponse struct {
	ID                  uint                `json:"id"`
	ShipmentID          uint                `json:"shipment_id"`
	DriverID            uint                `json:"driver_id"`
	Status              VerificationStatus  `json:"status"`
	DriverNotes         string              `json:"driver_notes,omitempty"`
	Differences         []string            `json:"differences,omitempty"`
	StartedAt           time.Time           `json:"started_at"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	ClientResponse      *ClientResponse     `json:"client_response,omitempty"`
	ClientRespondedAt   *time.Time          `json:"client_responded_at,omitempty"`
	ClientResponseNotes string              `json:"client_response_notes,omitempty"`
	RemainingSeconds    *int                `json:"remaining_seconds,omitempty"`
	Photos              []VerificationPhoto `json:"photos,omitempty"`
}

func (v *PickupVerification) ToResponse() PickupVerificationResponse {
	return PickupVerificationResponse{
		ID:                  v.ID,
		ShipmentID:          v.ShipmentID,
		DriverID:            v.DriverID,
		Status:              v.Status,
		DriverNotes:         v.DriverNotes,
		Differences:         v.Differences,
		StartedAt:           v.StartedAt,
		CompletedAt:         v.CompletedAt,
		ClientResponse:      v.ClientResponse,
		ClientRespondedAt:   v.ClientRespondedAt,
		ClientResponseNotes: v.ClientResponseNotes,
		Photos:              v.Photos,
	}
}
