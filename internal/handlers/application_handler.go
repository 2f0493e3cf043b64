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
	"gorm.io/gorm/clause"
)

type ApplyRequest struct {
	Note string `json:"note"`
}

// ApplyToShipment заявка водителя на выполнение отправки.
// Уникальный индекс (shipment_id, driver_id) отсекает повторные заявки.
func ApplyToShipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}

		var req ApplyRequest
		_ = c.ShouldBindJSON(&req)

		driverID := c.GetUint("user_id")

		var shipment models.Shipment
		if err := db.First(&shipment, shipmentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отправка не найдена"})
			return
		}
		if shipment.Status != models.ShipmentStatusPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Отправка уже не принимает заявки"})
			return
		}

		// Заявки принимаются только от водителей с принятыми документами
		var docs models.DriverDocuments
		if err := db.Where("user_id = ? AND status = ?", driverID, models.DocumentStatusApproved).
			First(&docs).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Документы водителя не прошли модерацию"})
			return
		}

		application := models.JobApplication{
			ShipmentID: uint(shipmentID),
			DriverID:   driverID,
			Status:     models.ApplicationStatusPending,
			Note:       req.Note,
		}
		if err := db.Create(&application).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Вы уже подали заявку на эту отправку"})
			return
		}

		websocket.SendApplicationStatusUpdate(shipment.ClientID, application.ID, shipment.ID, string(application.Status))

		c.JSON(http.StatusOK, application)
	}
}

// GetShipmentApplications список заявок по отправке для ее клиента
func GetShipmentApplications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		var applications []models.JobApplication
		if err := db.Preload("Driver").
			Where("shipment_id = ?", shipment.ID).
			Order("created_at ASC").
			Find(&applications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении заявок"})
			return
		}

		response := make([]models.JobApplicationResponse, 0, len(applications))
		for i := range applications {
			response = append(response, models.JobApplicationResponse{
				ID:           applications[i].ID,
				ShipmentID:   applications[i].ShipmentID,
				DriverID:     applications[i].DriverID,
				Status:       applications[i].Status,
				Note:         applications[i].Note,
				RejectReason: applications[i].RejectReason,
				CreatedAt:    applications[i].CreatedAt,
				UpdatedAt:    applications[i].UpdatedAt,
				DriverName:   applications[i].Driver.FullName(),
				DriverPhone:  applications[i].Driver.Phone,
			})
		}

		c.JSON(http.StatusOK, response)
	}
}

// GetMyApplications заявки текущего водителя
func GetMyApplications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("user_id")

		var applications []models.JobApplication
		if err := db.Where("driver_id = ?", driverID).
			Order("created_at DESC").
			Find(&applications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении заявок"})
			return
		}

		c.JSON(http.StatusOK, applications)
	}
}

// AcceptApplication принимает заявку: назначает водителя, переводит отправку
// в assigned и отклоняет остальные заявки одной транзакцией
func AcceptApplication(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID заявки"})
			return
		}

		clientID := c.GetUint("user_id")

		var application models.JobApplication
		var shipment models.Shipment
		var rejected []models.JobApplication

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&application, applicationID).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&shipment, application.ShipmentID).Error; err != nil {
				return err
			}
			if shipment.ClientID != clientID {
				return errors.New("not shipment client")
			}
			if shipment.Status != models.ShipmentStatusPending {
				return errors.New("shipment not pending")
			}
			if application.Status != models.ApplicationStatusPending {
				return errors.New("application not pending")
			}

			now := time.Now()
			if err := tx.Model(&application).Updates(map[string]interface{}{
				"status":     models.ApplicationStatusAccepted,
				"updated_at": now,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&shipment).Updates(map[string]interface{}{
				"driver_id":  application.DriverID,
				"status":     models.ShipmentStatusAssigned,
				"updated_at": now,
			}).Error; err != nil {
				return err
			}

			// Конкурирующие заявки отклоняются автоматически
			if err := tx.Where("shipment_id = ? AND id <> ? AND status = ?",
				shipment.ID, application.ID, models.ApplicationStatusPending).
				Find(&rejected).Error; err != nil {
				return err
			}
			if len(rejected) > 0 {
				if err := tx.Model(&models.JobApplication{}).
					Where("shipment_id = ? AND id <> ? AND status = ?",
						shipment.ID, application.ID, models.ApplicationStatusPending).
					Updates(map[string]interface{}{
						"status":        models.ApplicationStatusRejected,
						"reject_reason": "Выбран другой водитель",
						"updated_at":    now,
					}).Error; err != nil {
					return err
				}
			}

			application.Status = models.ApplicationStatusAccepted
			shipment.Status = models.ShipmentStatusAssigned
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Заявку нельзя принять в текущем состоянии"})
			return
		}

		websocket.SendApplicationStatusUpdate(application.DriverID, application.ID, shipment.ID, string(models.ApplicationStatusAccepted))
		websocket.SendShipmentStatusUpdate(application.DriverID, shipment.ID, string(models.ShipmentStatusAssigned))
		for _, r := range rejected {
			websocket.SendApplicationStatusUpdate(r.DriverID, r.ID, shipment.ID, string(models.ApplicationStatusRejected))
		}

		c.JSON(http.StatusOK, gin.H{
			"application": application,
			"shipment":    shipment.ToResponse(),
		})
	}
}

// RejectApplication отклоняет заявку водителя
func RejectApplication(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID заявки"})
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		clientID := c.GetUint("user_id")

		var application models.JobApplication
		if err := db.Preload("Shipment").First(&application, applicationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена"})
			return
		}
		if application.Shipment.ClientID != clientID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Нет доступа к этой заявке"})
			return
		}
		if application.Status != models.ApplicationStatusPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Заявка уже рассмотрена"})
			return
		}

		if err := db.Model(&application).Updates(map[string]interface{}{
			"status":        models.ApplicationStatusRejected,
			"reject_reason": req.Reason,
			"updated_at":    time.Now(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отклонении заявки"})
			return
		}

		websocket.SendApplicationStatusUpdate(application.DriverID, application.ID, application.ShipmentID, string(models.ApplicationStatusRejected))

		c.JSON(http.StatusOK, gin.H{"message": "Заявка отклонена"})
	}
}
