package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/websocket"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const driverLocationsKey = "drivers:locations"

// NearbyDriver водитель рядом с точкой получения
type NearbyDriver struct {
	DriverID   uint    `json:"driver_id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}

// DriverService состояние смены водителя: доступность и местоположение.
// База — источник истины по доступности, Redis держит зеркало для быстрых
// выборок и GEO-набор координат.
type DriverService struct {
	db      *gorm.DB
	redis   *redis.Client
	logger  *zap.Logger
	profile *ProfileService
}

func NewDriverService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *DriverService {
	return &DriverService{
		db:      db,
		redis:   redisClient,
		logger:  logger,
		profile: NewProfileService(db),
	}
}

// GetSettings возвращает настройки водителя, создавая запись при первом обращении
func (s *DriverService) GetSettings(userID uint) (*models.DriverSettings, error) {
	return s.profile.EnsureDriverSettings(userID)
}

// SetAvailability переключает доступность водителя и рассылает изменение
// по всем его сессиям. Последняя запись побеждает.
func (s *DriverService) SetAvailability(ctx context.Context, userID uint, available bool) (*models.DriverSettings, error) {
	settings, err := s.profile.EnsureDriverSettings(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(settings).Updates(map[string]interface{}{
		"is_available": available,
		"updated_at":   time.Now(),
	}).Error; err != nil {
		return nil, err
	}
	settings.IsAvailable = available

	if s.redis != nil {
		key := fmt.Sprintf("driver:available:%d", userID)
		if err := s.redis.Set(ctx, key, available, 0).Err(); err != nil {
			// Зеркало в Redis вторично, база уже обновлена
			s.logger.Warn("не удалось обновить зеркало доступности", zap.Error(err))
		}
	}

	websocket.SendDriverSettingsUpdate(userID, available)

	return settings, nil
}

// UpdateLocation сохраняет координаты водителя и уведомляет клиента
// активной отправки
func (s *DriverService) UpdateLocation(ctx context.Context, driverID uint, loc models.Location) error {
	if s.redis != nil {
		err := s.redis.GeoAdd(ctx, driverLocationsKey, &redis.GeoLocation{
			Name:      fmt.Sprintf("%d", driverID),
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		}).Err()
		if err != nil {
			return fmt.Errorf("ошибка при сохранении координат: %w", err)
		}
	}

	// Уведомляем клиента отправки в пути, если такая есть
	var shipment models.Shipment
	err := s.db.Where("driver_id = ? AND status IN ?", driverID, []models.ShipmentStatus{
		models.ShipmentStatusPickedUp,
		models.ShipmentStatusInTransit,
	}).First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	websocket.SendDriverLocationUpdate(shipment.ClientID, driverID, loc.Latitude, loc.Longitude)
	return nil
}

// NearbyAvailableDrivers возвращает доступных водителей в радиусе radiusKm
func (s *DriverService) NearbyAvailableDrivers(ctx context.Context, lat, lng float64, radiusKm float64) ([]NearbyDriver, error) {
	if s.redis == nil {
		return nil, nil
	}

	locations, err := s.redis.GeoRadius(ctx, driverLocationsKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске водителей: %w", err)
	}

	var result []NearbyDriver
	for _, locEntry := range locations {
		var driverID uint
		if _, err := fmt.Sscanf(locEntry.Name, "%d", &driverID); err != nil {
			continue
		}

		available, err := s.redis.Get(ctx, fmt.Sprintf("driver:available:%d", driverID)).Bool()
		if err != nil || !available {
			continue
		}

		var driver models.User
		if err := s.db.First(&driver, driverID).Error; err != nil {
			continue
		}

		result = append(result, NearbyDriver{
			DriverID:   driverID,
			Name:       driver.FullName(),
			DistanceKm: locEntry.Dist,
		})
	}
	return result, nil
}
