package services

import (
	"errors"
	"fmt"

	"drivedrop-backend/internal/models"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// BootstrapState результат инициализации сессии
type BootstrapState string

const (
	BootstrapAuthenticated BootstrapState = "authenticated"
	BootstrapAnonymous     BootstrapState = "anonymous"
)

// BootstrapResult тегированный результат вместо неявного глобального состояния
type BootstrapResult struct {
	State   BootstrapState
	Profile *models.User
}

// ProfileService инициализация сессии и идемпотентное создание профиля.
// Параллельные вызовы по одному пользователю схлопываются в singleflight,
// чтобы первый вход с нескольких устройств не плодил дубликаты.
type ProfileService struct {
	db    *gorm.DB
	group singleflight.Group
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Bootstrap возвращает профиль по ID пользователя из токена.
// Нулевой ID (служебный админский токен) дает анонимный результат, не ошибку.
func (s *ProfileService) Bootstrap(userID uint) (BootstrapResult, error) {
	if userID == 0 {
		return BootstrapResult{State: BootstrapAnonymous}, nil
	}

	key := fmt.Sprintf("bootstrap:%d", userID)
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var user models.User
		if err := s.db.Preload("DriverDocuments").Preload("Settings").First(&user, userID).Error; err != nil {
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BootstrapResult{State: BootstrapAnonymous}, nil
		}
		return BootstrapResult{}, err
	}

	return BootstrapResult{
		State:   BootstrapAuthenticated,
		Profile: value.(*models.User),
	}, nil
}

// EnsureDriverSettings идемпотентный get-or-create записи настроек водителя.
// Страхует от гонки первого входа: проигравший INSERT перечитывает запись.
func (s *ProfileService) EnsureDriverSettings(userID uint) (*models.DriverSettings, error) {
	key := fmt.Sprintf("settings:%d", userID)
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var settings models.DriverSettings
		err := s.db.Where("user_id = ?", userID).First(&settings).Error
		if err == nil {
			return &settings, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		settings = models.DriverSettings{UserID: userID}
		if createErr := s.db.Create(&settings).Error; createErr != nil {
			if readErr := s.db.Where("user_id = ?", userID).First(&settings).Error; readErr != nil {
				return nil, createErr
			}
		}
		return &settings, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.DriverSettings), nil
}
