package handlers

import (
	"net/http"
	"strconv"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateSettingsRequest struct {
	IsAvailable *bool `json:"is_available"`
	MaxDistance *int  `json:"max_distance"`
}

// GetDriverSettings настройки смены текущего водителя
func GetDriverSettings(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		settings, err := drivers.GetSettings(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении настроек"})
			return
		}

		c.JSON(http.StatusOK, settings)
	}
}

// UpdateDriverSettings обновляет доступность и радиус поиска
func UpdateDriverSettings(db *gorm.DB, drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		userID := c.GetUint("user_id")

		settings, err := drivers.GetSettings(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении настроек"})
			return
		}

		if req.MaxDistance != nil {
			if *req.MaxDistance <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Радиус поиска должен быть положительным"})
				return
			}
			if err := db.Model(settings).Update("max_distance", *req.MaxDistance).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении настроек"})
				return
			}
			settings.MaxDistance = *req.MaxDistance
		}

		if req.IsAvailable != nil {
			settings, err = drivers.SetAvailability(c.Request.Context(), userID, *req.IsAvailable)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении доступности"})
				return
			}
		}

		c.JSON(http.StatusOK, settings)
	}
}

// UpdateDriverLocation принимает координаты водителя
func UpdateDriverLocation(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.Location
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		driverID := c.GetUint("user_id")

		if err := drivers.UpdateLocation(c.Request.Context(), driverID, req); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении координат"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Координаты обновлены"})
	}
}

// GetNearbyDrivers доступные водители вокруг точки получения
func GetNearbyDrivers(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверная широта"})
			return
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверная долгота"})
			return
		}

		radius := 50.0
		if r := c.Query("radius"); r != "" {
			if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed > 0 {
				radius = parsed
			}
		}

		result, err := drivers.NearbyAvailableDrivers(c.Request.Context(), lat, lng, radius)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске водителей"})
			return
		}
		if result == nil {
			result = []services.NearbyDriver{}
		}

		c.JSON(http.StatusOK, result)
	}
}
