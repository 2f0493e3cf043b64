package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/verification"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetReferencePhotos возвращает нормализованный набор эталонных фотографий
// отправки. Сырой JSON из базы приводится к каноническому списку ракурсов.
func GetReferencePhotos(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		var set models.ReferencePhotoSet
		if err := db.Where("shipment_id = ?", shipment.ID).First(&set).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"shipment_id": shipment.ID, "photos": []verification.PhotoRef{}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении эталонных фотографий"})
			return
		}

		refs, err := verification.ParsePhotoSet(set.Photos)
		if err != nil {
			// Битые записи старого клиента не валят экран сравнения
			c.JSON(http.StatusOK, gin.H{
				"shipment_id": shipment.ID,
				"photos":      []verification.PhotoRef{},
				"malformed":   true,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"shipment_id": shipment.ID, "photos": refs})
	}
}

// UpsertReferencePhotos сохраняет эталонные фотографии клиента до получения
func UpsertReferencePhotos(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Photos []verification.PhotoRef `json:"photos" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}
		if shipment.ClientID != c.GetUint("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Эталонные фотографии загружает клиент отправки"})
			return
		}
		if shipment.Status.IsTerminal() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Отправка уже завершена"})
			return
		}

		for _, ref := range req.Photos {
			if !verification.IsValidAngle(ref.Angle) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный ракурс: " + string(ref.Angle)})
				return
			}
			if ref.URL == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Пустой URL фотографии"})
				return
			}
		}

		raw, err := json.Marshal(req.Photos)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении фотографий"})
			return
		}

		var set models.ReferencePhotoSet
		err = db.Where("shipment_id = ?", shipment.ID).First(&set).Error
		switch {
		case err == nil:
			if err := db.Model(&set).Update("photos", json.RawMessage(raw)).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении фотографий"})
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			set = models.ReferencePhotoSet{ShipmentID: shipment.ID, Photos: raw}
			if err := db.Create(&set).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении фотографий"})
				return
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении фотографий"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"shipment_id": shipment.ID, "photos": req.Photos})
	}
}
