package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DriverDocumentsRequest struct {
	TruckMake            string `json:"truck_make" binding:"required"`
	TruckModel           string `json:"truck_model" binding:"required"`
	TruckYear            string `json:"truck_year" binding:"required"`
	TruckNumber          string `json:"truck_number" binding:"required"`
	TrailerType          string `json:"trailer_type"`
	DriverLicenseFront   string `json:"driver_license_front" binding:"required"`
	DriverLicenseBack    string `json:"driver_license_back" binding:"required"`
	TruckRegistration    string `json:"truck_registration" binding:"required"`
	InsuranceCertificate string `json:"insurance_certificate" binding:"required"`
	TruckPhotoFront      string `json:"truck_photo_front"`
	TruckPhotoSide       string `json:"truck_photo_side"`
}

// SubmitDriverDocuments подача или повторная подача документов водителя.
// Повторная подача сбрасывает статус на pending.
func SubmitDriverDocuments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DriverDocumentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		userID := c.GetUint("user_id")

		var docs models.DriverDocuments
		err := db.Where("user_id = ?", userID).First(&docs).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении документов"})
			return
		}
		if !isNew && docs.Status == models.DocumentStatusApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Документы уже приняты"})
			return
		}

		docs.UserID = userID
		docs.TruckMake = req.TruckMake
		docs.TruckModel = req.TruckModel
		docs.TruckYear = req.TruckYear
		docs.TruckNumber = req.TruckNumber
		docs.TrailerType = req.TrailerType
		docs.DriverLicenseFront = req.DriverLicenseFront
		docs.DriverLicenseBack = req.DriverLicenseBack
		docs.TruckRegistration = req.TruckRegistration
		docs.InsuranceCertificate = req.InsuranceCertificate
		docs.TruckPhotoFront = req.TruckPhotoFront
		docs.TruckPhotoSide = req.TruckPhotoSide
		docs.Status = models.DocumentStatusPending
		docs.RejectionReason = ""

		if err := db.Save(&docs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении документов"})
			return
		}

		c.JSON(http.StatusOK, documentsToResponse(&docs))
	}
}

// GetDriverDocuments документы текущего водителя
func GetDriverDocuments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var docs models.DriverDocuments
		if err := db.Where("user_id = ?", userID).First(&docs).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Документы не найдены"})
			return
		}

		c.JSON(http.StatusOK, documentsToResponse(&docs))
	}
}

// GetPendingDocuments очередь модерации для администратора
func GetPendingDocuments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var docs []models.DriverDocuments
		if err := db.Preload("User").
			Where("status = ?", models.DocumentStatusPending).
			Order("created_at ASC").
			Find(&docs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении документов"})
			return
		}

		response := make([]models.DriverDocumentsResponse, 0, len(docs))
		for i := range docs {
			r := documentsToResponse(&docs[i])
			user := docs[i].User.ToResponse()
			r.User = &user
			response = append(response, *r)
		}

		c.JSON(http.StatusOK, response)
	}
}

// UpdateDocumentStatus решение администратора по документам водителя
func UpdateDocumentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID документа"})
			return
		}

		var req struct {
			Status models.DriverDocumentStatus `json:"status" binding:"required"`
			Reason string                      `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		switch req.Status {
		case models.DocumentStatusApproved, models.DocumentStatusRejected, models.DocumentStatusRevision:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый статус документов"})
			return
		}
		if req.Status != models.DocumentStatusApproved && req.Reason == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Для отказа или доработки нужна причина"})
			return
		}

		var docs models.DriverDocuments
		if err := db.First(&docs, documentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Документы не найдены"})
			return
		}

		if err := db.Model(&docs).Updates(map[string]interface{}{
			"status":           req.Status,
			"rejection_reason": req.Reason,
			"updated_at":       time.Now(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении статуса"})
			return
		}

		websocket.SendDocumentStatusUpdate(docs.UserID, docs.ID, string(req.Status))

		docs.Status = req.Status
		docs.RejectionReason = req.Reason
		c.JSON(http.StatusOK, documentsToResponse(&docs))
	}
}

func documentsToResponse(d *models.DriverDocuments) *models.DriverDocumentsResponse {
	return &models.DriverDocumentsResponse{
		ID:                   d.ID,
		UserID:               d.UserID,
		TruckMake:            d.TruckMake,
		TruckModel:           d.TruckModel,
		TruckYear:            d.TruckYear,
		TruckNumber:          d.TruckNumber,
		TrailerType:          d.TrailerType,
		DriverLicenseFront:   d.DriverLicenseFront,
		DriverLicenseBack:    d.DriverLicenseBack,
		TruckRegistration:    d.TruckRegistration,
		InsuranceCertificate: d.InsuranceCertificate,
		TruckPhotoFront:      d.TruckPhotoFront,
		TruckPhotoSide:       d.TruckPhotoSide,
		Status:               d.Status,
		RejectionReason:      d.RejectionReason,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}
