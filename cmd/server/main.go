package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clinic-ops-backend/internal/cache"
	"clinic-ops-backend/internal/config"
	"clinic-ops-backend/internal/database"
	"clinic-ops-backend/internal/events"
	"clinic-ops-backend/internal/handler"
	"clinic-ops-backend/internal/middleware"
	"clinic-ops-backend/internal/monitoring"
	"clinic-ops-backend/internal/notification"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"
	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// 1. Load configuration
	cfg := config.LoadConfig()
	location := cfg.Location()
	logger.Info("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection and metrics
	db := database.Connect(cfg)
	monitoring.Init()

	// 4. Optional infrastructure: Redis cache, Kafka producer, SMS gateway
	var cacheClient cache.Client
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, availability caching disabled")
		} else {
			cacheClient = client
			defer cacheClient.Close()
		}
	}

	var producer events.Producer
	if cfg.Kafka.Enabled {
		p, err := events.NewKafkaProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		if err != nil {
			logger.WithError(err).Warn("Kafka unavailable, event publishing disabled")
		} else {
			producer = p
			defer producer.Close()
		}
	}

	var notifier notification.Sender = &notification.LogSender{Logger: logger}
	if cfg.SMS.GatewayURL != "" {
		notifier = notification.NewSMSGatewayClient(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.SMS.SenderName)
	}

	// 5. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	scheduleRepo := repository.NewScheduleTemplateRepo(db)
	appointmentRepo := repository.NewAppointmentRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	revenueRepo := repository.NewRevenueRepo(db)

	// 6. Initialize services
	clock := scheduling.SystemClock()
	authService := service.NewAuthService(userRepo, auditRepo)
	doctorService := service.NewDoctorService(doctorRepo, scheduleRepo, auditRepo, cfg.Booking.DefaultSlotMinutes)
	availabilityService := service.NewAvailabilityService(
		doctorRepo, scheduleRepo, appointmentRepo,
		cacheClient, clock,
		cfg.Booking.CutoffMinutes, cfg.Redis.AvailabilityTTL,
		location, logger,
	)
	billingService := service.NewBillingService(revenueRepo, scheduleRepo, doctorRepo, location, logger)
	roomService := service.NewRoomService(roomRepo, doctorRepo, appointmentRepo, auditRepo, clock, logger)
	appointmentService := service.NewAppointmentService(
		appointmentRepo, doctorRepo, patientRepo, scheduleRepo, auditRepo,
		billingService, roomService, availabilityService,
		notifier, producer, clock,
		cfg.Booking.CutoffMinutes, location, logger,
	)
	workerService := service.NewWorkerService(
		appointmentRepo, notifier, clock,
		cfg.Booking.ReminderInterval, location, logger,
	)

	// 7. Start background reminder worker in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerService.Start(ctx)

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.PrometheusMetrics())

	// 9. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	doctorHandler := handler.NewDoctorHandler(doctorService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService, location)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	roomHandler := handler.NewRoomHandler(roomService)
	revenueHandler := handler.NewRevenueHandler(billingService)

	// 10. Define routes
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "clinic-ops-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// Everything below requires a valid access token
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware())
	{
		doctors := api.Group("/doctors")
		{
			doctors.GET("", doctorHandler.GetAllDoctors)
			doctors.GET("/:id", doctorHandler.GetDoctor)
			doctors.POST("", middleware.RequireAdmin(), doctorHandler.CreateDoctor)
			doctors.PATCH("/:id", middleware.RequireAdmin(), doctorHandler.UpdateDoctor)
			doctors.POST("/:id/deactivate", middleware.RequireAdmin(), doctorHandler.DeactivateDoctor)
			doctors.GET("/:id/templates", doctorHandler.ListTemplates)
			doctors.POST("/:id/templates", middleware.RequireAdmin(), doctorHandler.AddTemplate)
		}
		api.DELETE("/templates/:id", middleware.RequireAdmin(), doctorHandler.DeleteTemplate)

		availability := api.Group("/availability")
		{
			availability.GET("/week", availabilityHandler.GetWeekAvailability)
			availability.GET("/day", availabilityHandler.GetDayAvailability)
		}

		appointments := api.Group("/appointments")
		{
			appointments.POST("", appointmentHandler.CreateAppointment)
			appointments.GET("/:id", appointmentHandler.GetAppointment)
			appointments.POST("/:id/confirm", appointmentHandler.ConfirmAppointment)
			appointments.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			appointments.POST("/:id/complete", appointmentHandler.CompleteAppointment)
			appointments.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}
		api.GET("/patients/:id/appointments", appointmentHandler.ListPatientAppointments)

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.GetAllRooms)
			rooms.POST("", middleware.RequireAdmin(), roomHandler.CreateRoom)
			rooms.POST("/:id/assign", middleware.RequireAdmin(), roomHandler.AssignSpecialist)
			rooms.POST("/:id/unassign", middleware.RequireAdmin(), roomHandler.UnassignSpecialist)
		}

		api.GET("/revenue", middleware.RequireAdmin(), revenueHandler.GetRevenue)
	}

	// 11. Setup graceful shutdown
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Server.Port}).Info("Server starting")
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancel()
	logger.Info("Server exited")
}
