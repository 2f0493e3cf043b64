package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/services"
	"drivedrop-backend/internal/verification"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StartVerificationRequest struct {
	Location models.Location `json:"location" binding:"required"`
}

type VerificationPhotoRequest struct {
	VerificationID uint            `json:"verification_id" binding:"required"`
	Angle          string          `json:"angle" binding:"required"`
	PhotoURL       string          `json:"photo_url" binding:"required"`
	Location       models.Location `json:"location"`
}

type SubmitVerificationRequest struct {
	VerificationID uint            `json:"verification_id" binding:"required"`
	Decision       string          `json:"decision" binding:"required"`
	Notes          string          `json:"notes"`
	Differences    []string        `json:"differences"`
	Location       models.Location `json:"location"`
}

type VerificationRespondRequest struct {
	Response string `json:"response" binding:"required"` // approved | disputed
	Reason   string `json:"reason"`
}

// StartVerification открывает проверку при получении для назначенного водителя
func StartVerification(svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}

		var req StartVerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		driverID := c.GetUint("user_id")

		v, err := svc.Start(uint(shipmentID), driverID, req.Location)
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		resp := v.ToResponse()
		c.JSON(http.StatusOK, gin.H{
			"verification":    resp,
			"required_angles": verification.RequiredAngles(),
		})
	}
}

// RegisterVerificationPhoto привязывает фотографию к ракурсу открытой проверки.
// Повторная отправка того же ракурса заменяет предыдущий снимок.
func RegisterVerificationPhoto(svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}

		var req VerificationPhotoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		angle := verification.Angle(req.Angle)
		if !verification.IsValidAngle(angle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный ракурс: " + req.Angle})
			return
		}

		driverID := c.GetUint("user_id")

		photo, err := svc.RegisterPhoto(uint(shipmentID), req.VerificationID, driverID, angle, req.PhotoURL, req.Location)
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		c.JSON(http.StatusOK, photo)
	}
}

// SubmitVerification завершает проверку решением водителя
func SubmitVerification(svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отправки"})
			return
		}

		var req SubmitVerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		decision := verification.Decision(req.Decision)
		if !verification.IsValidDecision(decision) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимое решение: " + req.Decision})
			return
		}

		driverID := c.GetUint("user_id")

		v, err := svc.Submit(uint(shipmentID), req.VerificationID, driverID, decision, req.Notes, req.Differences, req.Location)
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		resp := v.ToResponse()
		if v.Status == models.VerificationStatusMinorDifferences {
			remaining := int(verification.ResponseWindowDuration.Seconds())
			resp.RemainingSeconds = &remaining
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RespondVerification записывает ответ клиента на minor_differences.
// Побеждает первый записавший: повторный ответ и ответ после автозакрытия
// возвращают 409 с текущим состоянием.
func RespondVerification(svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		verificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID проверки"})
			return
		}

		var req VerificationRespondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		clientID := c.GetUint("user_id")

		var outcome *services.RespondOutcome
		switch models.ClientResponse(req.Response) {
		case models.ClientResponseApproved:
			outcome, err = svc.Approve(uint(verificationID), clientID, verification.SourceManual, req.Reason)
		case models.ClientResponseDisputed:
			outcome, err = svc.Dispute(uint(verificationID), clientID, req.Reason)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый ответ: " + req.Response})
			return
		}
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		result := gin.H{
			"verification":    outcome.Verification.ToResponse(),
			"shipment_status": outcome.Shipment.Status,
		}
		if outcome.Refund != nil {
			result["refund"] = outcome.Refund
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetVerification возвращает последнюю проверку по отправке. Для открытого
// окна ответа включается остаток в секундах.
func GetVerification(db *gorm.DB, svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shipment, ok := loadShipmentForUser(c, db)
		if !ok {
			return
		}

		resp, err := svc.GetForShipment(shipment.ID)
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// AdminResolveVerification решение администратора по major_issues
func AdminResolveVerification(svc *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		verificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID проверки"})
			return
		}

		var req struct {
			Resolution string `json:"resolution" binding:"required"` // proceed | cancel
			Notes      string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		outcome, err := svc.AdminResolve(uint(verificationID), req.Resolution, req.Notes)
		if err != nil {
			respondVerificationError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"verification":    outcome.Verification.ToResponse(),
			"shipment_status": outcome.Shipment.Status,
		})
	}
}

func respondVerificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrShipmentNotFound),
		errors.Is(err, services.ErrVerificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
	case errors.Is(err, services.ErrNotShipmentDriver),
		errors.Is(err, services.ErrNotShipmentClient):
		c.JSON(http.StatusForbidden, gin.H{"error": "Нет доступа к этой проверке"})
	case errors.Is(err, services.ErrShipmentNotReady):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Отправка не готова к проверке при получении"})
	case errors.Is(err, services.ErrVerificationActive):
		c.JSON(http.StatusConflict, gin.H{"error": "По отправке уже идет проверка"})
	case errors.Is(err, services.ErrVerificationClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Проверка уже завершена"})
	case errors.Is(err, services.ErrIncompletePhotoSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Загружены не все обязательные ракурсы"})
	case errors.Is(err, services.ErrNoClientDecision):
		c.JSON(http.StatusConflict, gin.H{"error": "Проверка не ожидает ответа клиента"})
	case errors.Is(err, verification.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "Ответ по проверке уже записан"})
	case errors.Is(err, verification.ErrDisputeReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Для спора необходимо указать причину"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
	}
}
