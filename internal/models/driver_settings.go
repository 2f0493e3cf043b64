package models

import (
	"time"
)

// DriverSettings настройки смены водителя. Доступность меняется только
// явным действием водителя; последняя запись побеждает.
type DriverSettings struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	IsAvailable bool      `json:"is_available" gorm:"default:false"`
	MaxDistance int       `json:"max_distance" gorm:"default:100"` // Радиус поиска заказов в км
	UpdatedAt   time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
