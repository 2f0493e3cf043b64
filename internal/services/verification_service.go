package services

import (
	"errors"
	"fmt"
	"time"

	"drivedrop-backend/internal/middleware"
	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/verification"
	"drivedrop-backend/internal/websocket"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrShipmentNotFound     = errors.New("shipment not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrNotShipmentDriver    = errors.New("user is not the driver of this shipment")
	ErrNotShipmentClient    = errors.New("user is not the client of this shipment")
	ErrShipmentNotReady     = errors.New("shipment is not ready for pickup verification")
	ErrVerificationActive   = errors.New("shipment already has an active verification")
	ErrVerificationClosed   = errors.New("verification is no longer accepting driver input")
	ErrIncompletePhotoSet   = errors.New("not all required photo angles are registered")
	ErrNoClientDecision     = errors.New("verification is not awaiting a client response")
)

// VerificationService серверная машина состояний проверки при получении.
// Все переходы выполняются в транзакциях; ответ клиента записывается условным
// UPDATE (client_response IS NULL), поэтому первый записавший побеждает,
// независимо от того, пришел ответ от клиента или от таймера.
type VerificationService struct {
	db            *gorm.DB
	logger        *zap.Logger
	notifications *NotificationService
}

func NewVerificationService(db *gorm.DB, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		db:            db,
		logger:        logger,
		notifications: NewNotificationService(),
	}
}

// Start открывает проверку: создает запись и переводит отправку в
// pickup_verification_pending. На отправку допускается одна активная проверка.
func (s *VerificationService) Start(shipmentID, driverID uint, loc models.Location) (*models.PickupVerification, error) {
	var created models.PickupVerification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var shipment models.Shipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&shipment, shipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return err
		}

		if shipment.DriverID == nil || *shipment.DriverID != driverID {
			return ErrNotShipmentDriver
		}
		if shipment.Status != models.ShipmentStatusAssigned && shipment.Status != models.ShipmentStatusAccepted {
			return ErrShipmentNotReady
		}

		var active int64
		if err := tx.Model(&models.PickupVerification{}).
			Where("shipment_id = ? AND (status = ? OR ((status = ? OR status = ?) AND client_response IS NULL))",
				shipmentID,
				models.VerificationStatusInProgress,
				models.VerificationStatusMinorDifferences,
				models.VerificationStatusMajorIssues).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrVerificationActive
		}

		created = models.PickupVerification{
			ShipmentID: shipmentID,
			DriverID:   driverID,
			Status:     models.VerificationStatusInProgress,
			StartLocation: models.GeoPoint{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
			},
			StartedAt: time.Now(),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		return tx.Model(&shipment).Updates(map[string]interface{}{
			"status":     models.ShipmentStatusPickupVerificationPending,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("проверка при получении открыта",
		zap.Uint("verification_id", created.ID),
		zap.Uint("shipment_id", shipmentID),
		zap.Uint("driver_id", driverID))

	return &created, nil
}

// RegisterPhoto привязывает загруженную фотографию к проверке.
// Регистрации могут приходить параллельно; по обязательным ракурсам действует
// upsert "последняя запись побеждает", снимки damage накапливаются.
func (s *VerificationService) RegisterPhoto(shipmentID, verificationID, driverID uint, angle verification.Angle, photoURL string, loc models.Location) (*models.VerificationPhoto, error) {
	if !verification.IsValidAngle(angle) {
		return nil, fmt.Errorf("%w: %q", verification.ErrUnknownAngle, angle)
	}
	if photoURL == "" {
		return nil, verification.ErrNoPhoto
	}

	var photo models.VerificationPhoto
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var v models.PickupVerification
		if err := tx.First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}
		if v.ShipmentID != shipmentID {
			return ErrVerificationNotFound
		}
		if v.DriverID != driverID {
			return ErrNotShipmentDriver
		}
		if v.Status != models.VerificationStatusInProgress {
			return ErrVerificationClosed
		}

		photo = models.VerificationPhoto{
			VerificationID: verificationID,
			Angle:          string(angle),
			PhotoURL:       photoURL,
			Location:       models.GeoPoint{Latitude: loc.Latitude, Longitude: loc.Longitude},
		}

		// Снимки damage накапливаются; по обязательным ракурсам параллельные
		// регистрации разрешает частичный уникальный индекс
		// idx_verification_photo_angle: побеждает последняя запись
		if angle == verification.AngleDamage {
			return tx.Create(&photo).Error
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "verification_id"}, {Name: "angle"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Neq{Column: clause.Column{Name: "angle"}, Value: string(verification.AngleDamage)},
			}},
			DoUpdates: clause.AssignmentColumns([]string{"photo_url", "loc_latitude", "loc_longitude", "updated_at"}),
		}).Create(&photo).Error; err != nil {
			return err
		}
		return tx.Where("verification_id = ? AND angle = ?", verificationID, string(angle)).First(&photo).Error
	})
	if err != nil {
		return nil, err
	}

	return &photo, nil
}

// Submit финализирует ввод водителя. Вместо паузы "на всякий случай"
// регистрация фотографий сверяется с хранилищем прямо в транзакции отправки.
func (s *VerificationService) Submit(shipmentID, verificationID, driverID uint, decision verification.Decision, notes string, differences []string, loc models.Location) (*models.PickupVerification, error) {
	if !verification.IsValidDecision(decision) {
		return nil, fmt.Errorf("invalid decision %q", decision)
	}

	var v models.PickupVerification
	var shipment models.Shipment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}
		if v.ShipmentID != shipmentID {
			return ErrVerificationNotFound
		}
		if v.DriverID != driverID {
			return ErrNotShipmentDriver
		}
		if v.Status != models.VerificationStatusInProgress {
			return ErrVerificationClosed
		}

		// Страховка от гонки регистрации и отправки: считаем по базе,
		// а не доверяем счетчику клиента
		var angles []string
		if err := tx.Model(&models.VerificationPhoto{}).
			Where("verification_id = ? AND angle <> ?", verificationID, string(verification.AngleDamage)).
			Distinct("angle").
			Pluck("angle", &angles).Error; err != nil {
			return err
		}
		if len(angles) < verification.RequiredPhotoCount {
			return fmt.Errorf("%w: %d of %d", ErrIncompletePhotoSet, len(angles), verification.RequiredPhotoCount)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":           models.VerificationStatus(decision),
			"driver_notes":     notes,
			"differences":      pq.StringArray(differences),
			"completed_at":     now,
			"submit_latitude":  loc.Latitude,
			"submit_longitude": loc.Longitude,
			"updated_at":       now,
		}
		if err := tx.Model(&v).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.First(&shipment, v.ShipmentID).Error; err != nil {
			return err
		}

		// matches пропускает отправку дальше без участия клиента,
		// расхождения оставляют ее заблокированной до решения
		if decision == verification.DecisionMatches {
			if err := tx.Model(&shipment).Updates(map[string]interface{}{
				"status":       models.ShipmentStatusPickedUp,
				"picked_up_at": now,
				"updated_at":   now,
			}).Error; err != nil {
				return err
			}
			shipment.Status = models.ShipmentStatusPickedUp
		}

		return tx.First(&v, verificationID).Error
	})
	if err != nil {
		return nil, err
	}

	middleware.VerificationOutcomes.WithLabelValues(string(decision)).Inc()
	s.notifyAfterSubmit(&v, &shipment)

	return &v, nil
}

func (s *VerificationService) notifyAfterSubmit(v *models.PickupVerification, shipment *models.Shipment) {
	switch v.Status {
	case models.VerificationStatus(verification.DecisionMatches):
		websocket.SendShipmentStatusUpdate(shipment.ClientID, shipment.ID, string(models.ShipmentStatusPickedUp))

	case models.VerificationStatus(verification.DecisionMinorDifferences):
		remaining := verification.ResponseWindowDuration
		websocket.SendVerificationUpdate(shipment.ClientID, shipment.ID, v.ID, string(v.Status), int(remaining/time.Second))

		var client models.User
		if err := s.db.First(&client, shipment.ClientID).Error; err == nil && client.FCMToken != "" {
			if err := s.notifications.SendPushNotification(client.FCMToken,
				"Требуется подтверждение",
				"Водитель отметил небольшие расхождения. Подтвердите или оспорьте в течение 5 минут.",
				map[string]interface{}{
					"type":            "verification_prompt",
					"shipment_id":     shipment.ID,
					"verification_id": v.ID,
				}); err != nil {
				s.logger.Warn("не удалось отправить push клиенту", zap.Error(err))
			}
		}

	case models.VerificationStatus(verification.DecisionMajorIssues):
		websocket.SendVerificationUpdate(shipment.ClientID, shipment.ID, v.ID, string(v.Status), 0)
	}
}

// RespondOutcome итог записи ответа клиента
type RespondOutcome struct {
	Verification *models.PickupVerification
	Shipment     *models.Shipment
	Refund       *models.Refund
}

// Approve записывает подтверждение клиента (ручное или автоматическое).
// Повторный ответ любым путем — no-op с ErrAlreadyResolved.
func (s *VerificationService) Approve(verificationID uint, clientID uint, source verification.ResponseSource, notes string) (*RespondOutcome, error) {
	return s.respond(verificationID, clientID, models.ClientResponseApproved, source, verification.ApprovalNotes(source, notes))
}

// Dispute записывает спор клиента: отправка отменяется с указанием причины,
// создается заявка на полный возврат средств.
func (s *VerificationService) Dispute(verificationID uint, clientID uint, reason string) (*RespondOutcome, error) {
	if err := verification.ValidateDisputeReason(reason); err != nil {
		return nil, err
	}
	return s.respond(verificationID, clientID, models.ClientResponseDisputed, verification.SourceManual, reason)
}

func (s *VerificationService) respond(verificationID uint, clientID uint, response models.ClientResponse, source verification.ResponseSource, notes string) (*RespondOutcome, error) {
	outcome := &RespondOutcome{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var v models.PickupVerification
		if err := tx.First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}

		var shipment models.Shipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&shipment, v.ShipmentID).Error; err != nil {
			return err
		}

		// clientID == 0 означает системный вызов (таймер автоподтверждения)
		if clientID != 0 && shipment.ClientID != clientID {
			return ErrNotShipmentClient
		}
		if v.Status != models.VerificationStatusMinorDifferences {
			return ErrNoClientDecision
		}

		now := time.Now()

		// Первый записавший побеждает: условный UPDATE вместо чтения-записи
		result := tx.Model(&models.PickupVerification{}).
			Where("id = ? AND client_response IS NULL", verificationID).
			Updates(map[string]interface{}{
				"client_response":       response,
				"client_responded_at":   now,
				"client_response_notes": notes,
				"updated_at":            now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return verification.ErrAlreadyResolved
		}

		shipmentUpdates := map[string]interface{}{"updated_at": now}
		switch response {
		case models.ClientResponseApproved:
			shipmentUpdates["status"] = models.ShipmentStatusPickedUp
			shipmentUpdates["picked_up_at"] = now
			shipment.Status = models.ShipmentStatusPickedUp
		case models.ClientResponseDisputed:
			shipmentUpdates["status"] = models.ShipmentStatusCancelled
			shipmentUpdates["cancellation_reason"] = notes
			shipment.Status = models.ShipmentStatusCancelled
			shipment.CancellationReason = notes

			refund := models.Refund{
				ShipmentID: shipment.ID,
				ClientID:   shipment.ClientID,
				Amount:     shipment.Price,
				Reason:     notes,
				Status:     models.RefundStatusPending,
			}
			if err := tx.Create(&refund).Error; err != nil {
				return err
			}
			outcome.Refund = &refund
		}
		if err := tx.Model(&models.Shipment{}).Where("id = ?", shipment.ID).Updates(shipmentUpdates).Error; err != nil {
			return err
		}

		if err := tx.First(&v, verificationID).Error; err != nil {
			return err
		}
		outcome.Verification = &v
		outcome.Shipment = &shipment
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.ClientResponses.WithLabelValues(string(response), string(source)).Inc()

	websocket.SendShipmentStatusUpdate(outcome.Shipment.ClientID, outcome.Shipment.ID, string(outcome.Shipment.Status))
	websocket.SendShipmentStatusUpdate(outcome.Verification.DriverID, outcome.Shipment.ID, string(outcome.Shipment.Status))
	websocket.SendVerificationUpdate(outcome.Verification.DriverID, outcome.Shipment.ID, outcome.Verification.ID, string(outcome.Verification.Status), 0)

	s.logger.Info("записан ответ клиента по проверке",
		zap.Uint("verification_id", verificationID),
		zap.String("response", string(response)),
		zap.String("source", string(source)))

	return outcome, nil
}

// AdminResolve решение поддержки по проверке major_issues: proceed продолжает
// отправку, cancel отменяет ее с полным возвратом. Защита от двойной записи
// та же, что и для ответа клиента.
func (s *VerificationService) AdminResolve(verificationID uint, resolution string, notes string) (*RespondOutcome, error) {
	outcome := &RespondOutcome{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var v models.PickupVerification
		if err := tx.First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}
		if v.Status != models.VerificationStatusMajorIssues {
			return ErrNoClientDecision
		}

		var shipment models.Shipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&shipment, v.ShipmentID).Error; err != nil {
			return err
		}

		var response models.ClientResponse
		switch resolution {
		case "proceed":
			response = models.ClientResponseApproved
		case "cancel":
			response = models.ClientResponseDisputed
		default:
			return fmt.Errorf("unknown resolution %q", resolution)
		}

		now := time.Now()
		result := tx.Model(&models.PickupVerification{}).
			Where("id = ? AND client_response IS NULL", verificationID).
			Updates(map[string]interface{}{
				"client_response":       response,
				"client_responded_at":   now,
				"client_response_notes": "[admin] " + notes,
				"updated_at":            now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return verification.ErrAlreadyResolved
		}

		shipmentUpdates := map[string]interface{}{"updated_at": now}
		switch response {
		case models.ClientResponseApproved:
			shipmentUpdates["status"] = models.ShipmentStatusPickedUp
			shipmentUpdates["picked_up_at"] = now
			shipment.Status = models.ShipmentStatusPickedUp
		case models.ClientResponseDisputed:
			shipmentUpdates["status"] = models.ShipmentStatusCancelled
			shipmentUpdates["cancellation_reason"] = notes
			shipment.Status = models.ShipmentStatusCancelled
			shipment.CancellationReason = notes

			refund := models.Refund{
				ShipmentID: shipment.ID,
				ClientID:   shipment.ClientID,
				Amount:     shipment.Price,
				Reason:     notes,
				Status:     models.RefundStatusPending,
			}
			if err := tx.Create(&refund).Error; err != nil {
				return err
			}
			outcome.Refund = &refund
		}
		if err := tx.Model(&models.Shipment{}).Where("id = ?", shipment.ID).Updates(shipmentUpdates).Error; err != nil {
			return err
		}

		if err := tx.First(&v, verificationID).Error; err != nil {
			return err
		}
		outcome.Verification = &v
		outcome.Shipment = &shipment
		return nil
	})
	if err != nil {
		return nil, err
	}

	websocket.SendShipmentStatusUpdate(outcome.Shipment.ClientID, outcome.Shipment.ID, string(outcome.Shipment.Status))
	websocket.SendShipmentStatusUpdate(outcome.Verification.DriverID, outcome.Shipment.ID, string(outcome.Shipment.Status))

	s.logger.Info("записано решение администратора по проверке",
		zap.Uint("verification_id", verificationID),
		zap.String("resolution", resolution))

	return outcome, nil
}

// AutoApproveExpired закрывает проверки с истекшим окном ответа.
// Вызывается фоновым воркером; возвращает число обработанных записей.
func (s *VerificationService) AutoApproveExpired() (int, error) {
	cutoff := time.Now().Add(-verification.ResponseWindowDuration)

	var expired []models.PickupVerification
	if err := s.db.
		Where("status = ? AND client_response IS NULL AND completed_at <= ?",
			models.VerificationStatusMinorDifferences, cutoff).
		Find(&expired).Error; err != nil {
		return 0, err
	}

	processed := 0
	for _, v := range expired {
		_, err := s.Approve(v.ID, 0, verification.SourceAuto, "")
		if err != nil {
			// Ответ мог прийти между выборкой и записью — это не сбой
			if errors.Is(err, verification.ErrAlreadyResolved) || errors.Is(err, ErrNoClientDecision) {
				continue
			}
			s.logger.Error("ошибка автоподтверждения проверки",
				zap.Uint("verification_id", v.ID), zap.Error(err))
			continue
		}
		processed++
	}
	return processed, nil
}

// GetForShipment возвращает последнюю проверку по отправке с фотографиями
// и остатком окна ответа, если оно открыто
func (s *VerificationService) GetForShipment(shipmentID uint) (*models.PickupVerificationResponse, error) {
	var v models.PickupVerification
	err := s.db.Where("shipment_id = ?", shipmentID).
		Order("created_at DESC").
		Preload("Photos").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}

	resp := v.ToResponse()
	if v.Status == models.VerificationStatusMinorDifferences && v.ClientResponse == nil && v.CompletedAt != nil {
		w := verification.NewResponseWindow(*v.CompletedAt)
		remaining := w.RemainingSeconds(time.Now())
		resp.RemainingSeconds = &remaining
	}
	return &resp, nil
}
