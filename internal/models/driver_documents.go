package models

import (
	"time"
)

type DriverDocumentStatus string

const (
	DocumentStatusPending  DriverDocumentStatus = "pending"  // На модерации
	DocumentStatusApproved DriverDocumentStatus = "approved" // Принят
	DocumentStatusRejected DriverDocumentStatus = "rejected" // Отказ
	DocumentStatusRevision DriverDocumentStatus = "revision" // Доработка
)

type DriverDocuments struct {
	ID                   uint                 `json:"id" gorm:"primaryKey"`
	UserID               uint                 `json:"user_id" gorm:"not null"`
	TruckMake            string               `json:"truck_make" gorm:"not null"`
	TruckModel           string               `json:"truck_model" gorm:"not null"`
	TruckYear            string               `json:"truck_year" gorm:"not null"`
	TruckNumber          string               `json:"truck_number" gorm:"not null"`
	TrailerType          string               `json:"trailer_type" gorm:"default:''"` // open, enclosed
	DriverLicenseFront   string               `json:"driver_license_front" gorm:"not null"`
	DriverLicenseBack    string               `json:"driver_license_back" gorm:"not null"`
	TruckRegistration    string               `json:"truck_registration" gorm:"not null"`
	InsuranceCertificate string               `json:"insurance_certificate" gorm:"not null"`
	TruckPhotoFront      string               `json:"truck_photo_front"`
	TruckPhotoSide       string               `json:"truck_photo_side"`
	Status               DriverDocumentStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	RejectionReason      string               `json:"rejection_reason"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
	User                 User                 `json:"-" gorm:"foreignKey:UserID"`
}

type DriverDocumentsResponse struct {
	ID                   uint                 `json:"id"`
	UserID               uint                 `json:"user_id,omitempty"`
	User                 *UserResponse        `json:"user,omitempty"`
	TruckMake            string               `json:"truck_make"`
	TruckModel           string               `json:"truck_model"`
	TruckYear            string               `json:"truck_year"`
	TruckNumber          string               `json:"truck_number"`
	TrailerType          string               `json:"trailer_type,omitempty"`
	DriverLicenseFront   string               `json:"driver_license_front"`
	DriverLicenseBack    string               `json:"driver_license_back"`
	TruckRegistration    string               `json:"truck_registration"`
	InsuranceCertificate string               `json:"insurance_certificate"`
	TruckPhotoFront      string               `json:"truck_photo_front,omitempty"`
	TruckPhotoSide       string               `json:"truck_photo_side,omitempty"`
	Status               DriverDocumentStatus `json:"status"`
	RejectionReason      string               `json:"rejection_reason,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}
