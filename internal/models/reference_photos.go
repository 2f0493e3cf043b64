package models

import (
	"encoding/json"
	"time"
)

// ReferencePhotoSet фотографии автомобиля, загруженные клиентом до получения.
// Колонка photos хранит сырой JSON: старые записи мобильного клиента писали
// то массив объектов, то строку с JSON внутри, поэтому нормализация выполняется
// на границе чтения (internal/verification.ParsePhotoSet), а не здесь.
type ReferencePhotoSet struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	ShipmentID uint            `json:"shipment_id" gorm:"uniqueIndex;not null"`
	Photos     json.RawMessage `json:"photos" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Shipment Shipment `json:"-" gorm:"foreignKey:ShipmentID"`
}

func (r *ReferencePhotoSet) TableName() string {
	return "reference_photo_sets"
}
