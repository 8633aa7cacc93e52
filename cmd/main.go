package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/PauloHelder/thronus01-sub002/internal/handler"
	"github.com/PauloHelder/thronus01-sub002/internal/middleware"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/internal/service"
	"github.com/PauloHelder/thronus01-sub002/pkg/config"
	"github.com/PauloHelder/thronus01-sub002/pkg/database"
	"github.com/PauloHelder/thronus01-sub002/pkg/jwtutil"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/pkg/metrics"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found or error loading: %v\n", err)
	}

	// Load configuration
	conf, err := config.Load("church")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", conf.LogConfig()...)

	// Initialize database connection
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations
	if err := database.MigrateModels(
		&model.Denomination{},
		&model.Plan{},
		&model.Church{},
		&model.Department{},
		&model.Member{},
		&model.Schedule{},
		&model.ServiceRecord{},
		&model.Event{},
		&model.FinanceEntry{},
		&model.Invite{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Initialize metrics
	prometheus.InitMetrics(conf)
	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	// Wire the network services
	churchRepo := repository.NewGormChurchRepository(db)
	aggregateRepo := repository.NewGormAggregateRepository(db)
	networkSvc := service.NewNetworkService(churchRepo, conf.Link.KeepCategoryOnUnlink, log)
	gateSvc := service.NewAggregateService(aggregateRepo, log)

	networkHandler := handler.NewNetworkHandler(networkSvc, gateSvc, churchRepo)
	inviteHandler := handler.NewInviteHandler(conf.Invite.TTL)

	// Initialize Echo framework
	e := echo.New()

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.RequestTimeoutMiddleware(conf.Server.RequestTimeout))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.POST("/invites/:id/accept", inviteHandler.AcceptInvite)

	auth := middleware.JWTAuthMiddleware(jwt)

	// Church (tenant) routes
	churches := e.Group("/churches", auth)
	churches.POST("", handler.CreateChurch)
	churches.GET("/:id", handler.GetChurch)
	churches.PUT("/:id", handler.UpdateChurch)

	// Church-network linking and sharing routes
	network := e.Group("/network", auth)
	network.GET("/candidate", networkHandler.FindCandidate)
	network.GET("/candidate/:id/categories", networkHandler.EligibleCategories)
	network.POST("/link", networkHandler.ConfirmLink)
	network.DELETE("/link", networkHandler.Unlink)
	network.PUT("/permissions", networkHandler.UpdatePermissions)
	network.GET("/children", networkHandler.ListChildren)
	network.GET("/children/:id/aggregates", networkHandler.ChildAggregates)

	// Member routes
	members := e.Group("/members", auth)
	members.POST("", handler.CreateMember)
	members.GET("", handler.ListMembers)
	members.GET("/:id", handler.GetMember)
	members.PUT("/:id", handler.UpdateMember)
	members.DELETE("/:id", handler.DeleteMember)

	// Department routes
	departments := e.Group("/departments", auth)
	departments.POST("", handler.CreateDepartment)
	departments.GET("", handler.ListDepartments)
	departments.PUT("/:id", handler.UpdateDepartment)
	departments.DELETE("/:id", handler.DeleteDepartment)

	// Schedule and service record routes
	schedules := e.Group("/schedules", auth)
	schedules.POST("", handler.CreateSchedule)
	schedules.GET("", handler.ListSchedules)
	schedules.PUT("/:id", handler.UpdateSchedule)

	services := e.Group("/services", auth)
	services.POST("", handler.CreateServiceRecord)
	services.GET("", handler.ListServiceRecords)

	// Event routes
	events := e.Group("/events", auth)
	events.POST("", handler.CreateEvent)
	events.GET("", handler.ListEvents)
	events.DELETE("/:id", handler.DeleteEvent)

	// Finance routes
	finance := e.Group("/finance", auth)
	finance.POST("/entries", handler.CreateFinanceEntry)
	finance.GET("/entries", handler.ListFinanceEntries)
	finance.GET("/summary", handler.FinanceSummaryHandler)

	// Denomination routes
	denominations := e.Group("/denominations", auth)
	denominations.POST("", handler.CreateDenomination)
	denominations.GET("", handler.ListDenominations)
	denominations.GET("/:id", handler.GetDenomination)

	// Plan routes
	plans := e.Group("/plans", auth)
	plans.POST("", handler.CreatePlan)
	plans.GET("", handler.ListPlans)
	plans.POST("/:id/subscribe", handler.SubscribeToPlan)

	// Invite routes
	invites := e.Group("/invites", auth)
	invites.POST("", inviteHandler.CreateInvite)
	invites.GET("", inviteHandler.ListInvites)

	// Start server with bounded read/write timeouts
	e.Server.ReadTimeout = conf.Server.RequestTimeout
	e.Server.WriteTimeout = conf.Server.RequestTimeout
	log.Info("Starting church-service on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
