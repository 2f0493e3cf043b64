package routes

import (
	"drivedrop-backend/internal/handlers"
	"drivedrop-backend/internal/middleware"
	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/services"
	"drivedrop-backend/internal/services/geo"
	"drivedrop-backend/internal/storage"
	"drivedrop-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps сервисы, которые используют обработчики помимо базы
type Deps struct {
	Verifications *services.VerificationService
	Drivers       *services.DriverService
	Profiles      *services.ProfileService
	Pricing       *services.PricingService
	Geo           *geo.Client
	Uploader      *storage.Uploader
}

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, deps *Deps) {
	// Публичные маршруты для аутентификации
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.AuthRegister(db))
		auth.POST("/login", handlers.AuthLogin(db))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		// Текущий пользователь
		protected.GET("/user", handlers.GetCurrentUser(deps.Profiles))
		protected.PUT("/fcm-token", handlers.UpdateFCMToken(db))

		// Отправки
		protected.POST("/shipments", middleware.RequireRoles(models.RoleClient), handlers.CreateShipment(db))
		protected.GET("/shipments", handlers.GetShipments(db))
		protected.GET("/shipments/:id", handlers.GetShipment(db))
		protected.PUT("/shipments/:id/status", middleware.RequireRoles(models.RoleDriver), handlers.UpdateShipmentStatus(db))
		protected.PUT("/shipments/:id/cancel", middleware.RequireRoles(models.RoleClient), handlers.CancelShipment(db))
		protected.POST("/shipments/quote", handlers.QuoteShipment(deps.Pricing))

		// Эталонные фотографии клиента
		protected.GET("/shipments/:id/reference-photos", handlers.GetReferencePhotos(db))
		protected.PUT("/shipments/:id/reference-photos", middleware.RequireRoles(models.RoleClient), handlers.UpsertReferencePhotos(db))

		// Проверка при получении
		protected.POST("/shipments/:id/start-verification", middleware.RequireRoles(models.RoleDriver), handlers.StartVerification(deps.Verifications))
		protected.POST("/shipments/:id/verification-photos", middleware.RequireRoles(models.RoleDriver), handlers.RegisterVerificationPhoto(deps.Verifications))
		protected.POST("/shipments/:id/submit-verification", middleware.RequireRoles(models.RoleDriver), handlers.SubmitVerification(deps.Verifications))
		protected.GET("/shipments/:id/verification", handlers.GetVerification(db, deps.Verifications))
		protected.POST("/verifications/:id/respond", middleware.RequireRoles(models.RoleClient), handlers.RespondVerification(deps.Verifications))
		protected.POST("/verifications/:id/resolve", middleware.RequireRoles(models.RoleAdmin), handlers.AdminResolveVerification(deps.Verifications))

		// Заявки водителей
		protected.POST("/shipments/:id/apply", middleware.RequireRoles(models.RoleDriver), handlers.ApplyToShipment(db))
		protected.GET("/shipments/:id/applications", handlers.GetShipmentApplications(db))
		protected.GET("/applications", middleware.RequireRoles(models.RoleDriver), handlers.GetMyApplications(db))
		protected.PUT("/applications/:id/accept", middleware.RequireRoles(models.RoleClient), handlers.AcceptApplication(db))
		protected.PUT("/applications/:id/reject", middleware.RequireRoles(models.RoleClient), handlers.RejectApplication(db))

		// Чат по отправке
		protected.POST("/shipments/:id/messages", handlers.SendMessage(db))
		protected.GET("/shipments/:id/messages", handlers.GetMessages(db))
		protected.PUT("/shipments/:id/messages/read", handlers.MarkMessagesRead(db))

		// Водители: смена, координаты, поиск
		protected.GET("/driver/settings", middleware.RequireRoles(models.RoleDriver), handlers.GetDriverSettings(deps.Drivers))
		protected.PUT("/driver/settings", middleware.RequireRoles(models.RoleDriver), handlers.UpdateDriverSettings(db, deps.Drivers))
		protected.POST("/drivers/location", middleware.RequireRoles(models.RoleDriver), handlers.UpdateDriverLocation(deps.Drivers))
		protected.GET("/drivers/nearby", handlers.GetNearbyDrivers(deps.Drivers))

		// Документы водителя
		protected.POST("/driver/documents", middleware.RequireRoles(models.RoleDriver), handlers.SubmitDriverDocuments(db))
		protected.GET("/driver/documents", middleware.RequireRoles(models.RoleDriver), handlers.GetDriverDocuments(db))
		protected.GET("/admin/documents", middleware.RequireRoles(models.RoleAdmin), handlers.GetPendingDocuments(db))
		protected.PUT("/admin/documents/:id/status", middleware.RequireRoles(models.RoleAdmin), handlers.UpdateDocumentStatus(db))

		// Поиск адресов
		protected.GET("/addresses/search", handlers.SearchAddress(deps.Geo))

		// Загрузка файлов
		protected.POST("/upload", handlers.UploadFile(deps.Uploader))

		// WebSocket подключение для получения обновлений в реальном времени
		protected.GET("/ws", websocket.Handler(db))
	}
}
