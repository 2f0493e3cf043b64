package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/services"
	"drivedrop-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateShipmentRequest struct {
	PickupAddress    string          `json:"pickup_address" binding:"required"`
	DeliveryAddress  string          `json:"delivery_address" binding:"required"`
	PickupLocation   models.Location `json:"pickup_location" binding:"required"`
	DeliveryLocation models.Location `json:"delivery_location" binding:"required"`
	VehicleMake      string          `json:"vehicle_make" binding:"required"`
	VehicleModel     string          `json:"vehicle_model" binding:"required"`
	VehicleYear      string          `json:"vehicle_year"`
	Description      string          `json:"description"`
	Price            float64         `json:"price" binding:"required,gt=0"`
}

type QuoteRequest struct {
	PickupLocation   models.Location `json:"pickup_location" binding:"required"`
	DeliveryLocation models.Location `json:"delivery_location" binding:"required"`
}

// CreateShipment создает новую отправку от имени клиента
func CreateShipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Неверный формат данных: %v", err)})
			return
		}

		clientID := c.GetUint("user_id")

		shipment := models.ShipmentCreate{
			ClientID:         clientID,
			Status:           models.ShipmentStatusPending,
			PickupAddress:    req.PickupAddress,
			DeliveryAddress:  req.DeliveryAddress,
			PickupLocation:   fmt.Sprintf("(%f,%f)", req.PickupLocation.Latitude, req.PickupLocation.Longitude),
			DeliveryLocation: fmt.Sprintf("(%f,%f)", req.DeliveryLocation.Latitude, req.DeliveryLocation.Longitude),
			VehicleMake:      req.VehicleMake,
			VehicleModel:     req.VehicleModel,
			VehicleYear:      req.VehicleYear,
			Description:      req.Description,
			Price:            req.Price,
		}

		if err := db.Create(&shipment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании отправки"})
			return
		}

		var created models.Shipment
		if err := db.Order("id DESC").Where("client_id = ?", clientID).First(&created).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при чтении созданной отправки"})
			return
		}

		c.JSON(http.StatusOK, created.ToResponse())
	}
}

// GetShipments список отправок в зависимости от роли: клиент видит свои,
// водитель — назначенные ему и открытые для заявок
func GetShipments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := c.GetString("role")

		query := db.Preload("Client").Preload("Driver").Order("created_at DESC")

		switch role {
		case models.RoleDriver:
			if c.Query("available") == "true" {
				query = query.Where("status = ?", models.ShipmentStatusPending)
			} else {
				query = query.Where("driver_id = ?", userID)
			}
		case models.RoleAdmin:
			// Администратор видит все
		default:
			query = query.Where("client_id = ?", userID)
		}

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var shipments []models.Shipment
		if err := query.Find(&shipments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка отправок"})
			return
		}

		response := make([]models.ShipmentResponse, 0, len(shipments))
		for i := range shipments {
			r := shipments[i].ToResponse()
			r.ClientName = shipments[i].Client.FullName()
			if shipments[i].Driver != nil {
				r.DriverName = shipments[i].Driver.FullName()
			}
			response = append(response, r)
		}

		c.JSON(http.StatusOK, response)
	}
}

// GetShipment возвращает одну отправку с проверкой доступа
func GetShipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		r := shipment.ToResponse()
		r.ClientName = shipment.Client.FullName()
		if shipment.Driver != nil {
			r.DriverName = shipment.Driver.FullName()
		}
		c.JSON(http.StatusOK, r)
	}
}

// UpdateShipmentStatus продвигает отправку по маршруту: picked_up -> in_transit
// -> delivered. Переходы проверки при получении идут через отдельные маршруты.
func UpdateShipmentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status models.ShipmentStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}
		driverID := c.GetUint("user_id")

		var shipment models.Shipment
		if err := db.First(&shipment, shipmentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отправка не найдена"})
			return
		}
		if shipment.DriverID == nil || *shipment.DriverID != driverID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Вы не являетесь водителем этой отправки"})
			return
		}

		allowed := map[models.ShipmentStatus]models.ShipmentStatus{
			models.ShipmentStatusInTransit: models.ShipmentStatusPickedUp,
			models.ShipmentStatusDelivered: models.ShipmentStatusInTransit,
		}
		from, ok := allowed[req.Status]
		if !ok || shipment.Status != from {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Недопустимый переход статуса: %s -> %s", shipment.Status, req.Status),
			})
			return
		}

		now := time.Now()
		updates := map[string]interface{}{"status": req.Status, "updated_at": now}
		if req.Status == models.ShipmentStatusDelivered {
			updates["delivered_at"] = now
		}

		if err := db.Model(&shipment).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении статуса"})
			return
		}

		websocket.SendShipmentStatusUpdate(shipment.ClientID, shipment.ID, string(req.Status))

		shipment.Status = req.Status
		c.JSON(http.StatusOK, shipment.ToResponse())
	}
}

// CancelShipment отменяет отправку клиентом до получения груза
func CancelShipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}
		clientID := c.GetUint("user_id")

		var shipment models.Shipment
		if err := db.First(&shipment, shipmentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отправка не найдена"})
			return
		}
		if shipment.ClientID != clientID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Вы не являетесь клиентом этой отправки"})
			return
		}
		if shipment.Status.IsTerminal() || shipment.Status == models.ShipmentStatusPickedUp ||
			shipment.Status == models.ShipmentStatusInTransit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Отправку уже нельзя отменить"})
			return
		}

		updates := map[string]interface{}{
			"status":              models.ShipmentStatusCancelled,
			"cancellation_reason": req.Reason,
			"updated_at":          time.Now(),
		}
		if err := db.Model(&shipment).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отмене отправки"})
			return
		}

		if shipment.DriverID != nil {
			websocket.SendShipmentStatusUpdate(*shipment.DriverID, shipment.ID, string(models.ShipmentStatusCancelled))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Отправка отменена"})
	}
}

// QuoteShipment предварительный расчет стоимости по маршруту
func QuoteShipment(pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		quote, err := pricing.QuoteShipment(c.Request.Context(),
			req.PickupLocation.Latitude, req.PickupLocation.Longitude,
			req.DeliveryLocation.Latitude, req.DeliveryLocation.Longitude)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Не удалось рассчитать маршрут"})
			return
		}

		c.JSON(http.StatusOK, quote)
	}
}

// loadShipmentForUser читает отправку из :id и проверяет, что текущий
// пользователь — ее клиент, водитель или администратор
func loadShipmentForUser(c *gin.Context, db *gorm.DB) (*models.Shipment, bool) {
	shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
		return nil, false
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var shipment models.Shipment
	if err := db.Preload("Client").Preload("Driver").First(&shipment, shipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отправка не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении отправки"})
		}
		return nil, false
	}

	isParticipant := shipment.ClientID == userID ||
		(shipment.DriverID != nil && *shipment.DriverID == userID)
	if role != models.RoleAdmin && !isParticipant {
		c.JSON(http.StatusForbidden, gin.H{"error": "Нет доступа к этой отправке"})
		return nil, false
	}

	return &shipment, true
}
