package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"drivedrop-backend/internal/db"
	applog "drivedrop-backend/internal/logger"
	"drivedrop-backend/internal/middleware"
	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/routes"
	"drivedrop-backend/internal/services"
	"drivedrop-backend/internal/services/geo"
	"drivedrop-backend/internal/storage"
	"drivedrop-backend/internal/websocket"
	"drivedrop-backend/internal/workers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	var gormDB *gorm.DB
	var err error

	for i := 0; i < maxAttempts; i++ {
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Error),
		})
		if err == nil {
			// Настройка пула соединений с БД
			sqlDB, err := gormDB.DB()
			if err != nil {
				return nil, fmt.Errorf("не удалось получить доступ к sql.DB: %w", err)
			}

			maxOpenConns := 100
			maxIdleConns := 25
			connMaxLifetime := 60

			if val, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil && val > 0 {
				maxOpenConns = val
			}
			if val, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS")); err == nil && val > 0 {
				maxIdleConns = val
			}
			if val, err := strconv.Atoi(os.Getenv("DB_CONN_MAX_LIFETIME_MINUTES")); err == nil && val > 0 {
				connMaxLifetime = val
			}

			sqlDB.SetMaxOpenConns(maxOpenConns)
			sqlDB.SetMaxIdleConns(maxIdleConns)
			sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)

			return gormDB, nil
		}
		log.Printf("Попытка подключения к БД %d из %d не удалась: %v\n", i+1, maxAttempts, err)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("не удалось подключиться к базе данных после %d попыток: %v", maxAttempts, err)
}

// migrate выполняет автоматическую миграцию моделей и создает индексы,
// которые gorm не выражает тегами
func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.DriverDocuments{},
		&models.DriverSettings{},
		&models.Shipment{},
		&models.JobApplication{},
		&models.Message{},
		&models.ReferencePhotoSet{},
		&models.PickupVerification{},
		&models.VerificationPhoto{},
		&models.Refund{},
	); err != nil {
		return err
	}

	// Не более одной незавершенной проверки на отправку
	if err := gormDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_verification_per_shipment
		ON pickup_verifications (shipment_id)
		WHERE status = 'in_progress'
	`).Error; err != nil {
		return err
	}

	// Одна фотография на обязательный ракурс: параллельные регистрации
	// схлопываются в upsert по этому индексу, damage не ограничивается
	return gormDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_verification_photo_angle
		ON verification_photos (verification_id, angle)
		WHERE angle <> 'damage'
	`).Error
}

func main() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	logger, err := applog.New()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// Подключение к базе данных
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	gormDB, err := connectWithRetry(dsn, 5, 5*time.Second)
	if err != nil {
		logger.Fatal("Ошибка подключения к базе данных", zap.Error(err))
	}

	// Подключение к Redis
	redisClient, err := db.NewRedisClient()
	if err != nil {
		logger.Warn("Redis недоступен, продолжаем без кэширования и гео-поиска", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Ошибка миграции базы данных", zap.Error(err))
	}

	// Запускаем WebSocket менеджер
	websocket.StartManager()

	// Сервисы
	verifications := services.NewVerificationService(gormDB, logger)
	drivers := services.NewDriverService(gormDB, redisClient, logger)
	profiles := services.NewProfileService(gormDB)
	geoClient := geo.NewClient(os.Getenv("GEO_API_KEY"), logger)
	pricing := services.NewPricingService(geoClient)

	uploader, err := storage.NewUploaderFromEnv()
	if err != nil {
		logger.Fatal("Ошибка инициализации хранилища файлов", zap.Error(err))
	}
	if uploader == nil {
		logger.Info("S3 не настроен, файлы сохраняются на локальный диск")
	}

	// Фоновые воркеры
	orchestrator := workers.NewOrchestrator(logger,
		workers.NewAutoApproveWorker(verifications, logger),
	)
	cronRunner, err := orchestrator.Start()
	if err != nil {
		logger.Fatal("Ошибка запуска фоновых воркеров", zap.Error(err))
	}
	defer cronRunner.Stop()

	// Создаем Gin роутер
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.PrometheusMiddleware())

	r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Статическая директория для загруженных файлов
	r.Static("/uploads", "./uploads")

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := r.Group("/api")
	routes.SetupRoutes(api, gormDB, &routes.Deps{
		Verifications: verifications,
		Drivers:       drivers,
		Profiles:      profiles,
		Pricing:       pricing,
		Geo:           geoClient,
		Uploader:      uploader,
	})

	// WebSocket маршрут вне группы /api для совместимости с мобильным клиентом
	r.GET("/ws", websocket.Handler(gormDB))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Сервер запущен", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, закрываем соединения")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Ошибка при graceful shutdown", zap.Error(err))
	}

	logger.Info("Сервер корректно завершил работу")
}
