package models

import (
	"time"
)

// Роли пользователей платформы
const (
	RoleClient = "client"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

type User struct {
	ID              uint             `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	FirstName       string           `json:"firstName" gorm:"column:first_name;not null;type:varchar(255)"`
	LastName        string           `json:"lastName" gorm:"column:last_name;not null;type:varchar(255)"`
	Email           string           `json:"email" gorm:"column:email;unique;not null;type:varchar(255)"`
	Phone           string           `json:"phone" gorm:"column:phone;type:varchar(20)"`
	PasswordHash    string           `json:"-" gorm:"column:password_hash;not null;type:text"`
	PhotoUrl        string           `json:"photoUrl" gorm:"column:photo_url;type:text"`
	Role            string           `json:"role" gorm:"column:role;default:'client';type:varchar(20)"`
	FCMToken        string           `json:"fcmToken" gorm:"column:fcm_token;type:text"`
	CreatedAt       time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime;type:timestamp with time zone"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"column:updated_at;autoUpdateTime;type:timestamp with time zone"`
	DriverDocuments *DriverDocuments `json:"driver_documents,omitempty" gorm:"foreignKey:UserID"`
	Settings        *DriverSettings  `json:"settings,omitempty" gorm:"foreignKey:UserID"`
}

type UserResponse struct {
	ID              uint                     `json:"id"`
	FirstName       string                   `json:"firstName"`
	LastName        string                   `json:"lastName"`
	Email           string                   `json:"email"`
	Phone           string                   `json:"phone"`
	PhotoUrl        string                   `json:"photoUrl"`
	Role            string                   `json:"role"`
	FCMToken        string                   `json:"fcmToken"`
	CreatedAt       time.Time                `json:"created_at"`
	DriverDocuments *DriverDocumentsResponse `json:"driver_documents,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		PhotoUrl:  u.PhotoUrl,
		Role:      u.Role,
		FCMToken:  u.FCMToken,
		CreatedAt: u.CreatedAt,
	}
}
