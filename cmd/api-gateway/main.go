package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadsync/acadsync-api/api/swagger"
	"github.com/acadsync/acadsync-api/internal/handler"
	"github.com/acadsync/acadsync-api/internal/middleware"
	"github.com/acadsync/acadsync-api/internal/repository"
	"github.com/acadsync/acadsync-api/internal/scheduler"
	"github.com/acadsync/acadsync-api/internal/service"
	"github.com/acadsync/acadsync-api/pkg/cache"
	"github.com/acadsync/acadsync-api/pkg/config"
	"github.com/acadsync/acadsync-api/pkg/database"
	"github.com/acadsync/acadsync-api/pkg/export"
	"github.com/acadsync/acadsync-api/pkg/logger"
	corsmiddleware "github.com/acadsync/acadsync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadsync/acadsync-api/pkg/middleware/requestid"
	"github.com/acadsync/acadsync-api/pkg/mq"
)

// @title AcadSync API
// @version 1.0.0
// @description Academic administration and timetable generation service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	var publisher *mq.Publisher
	if cfg.Notifications.Enabled {
		publisher, err = mq.NewPublisher(cfg.Notifications.AMQPURL, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to amqp broker", "error", err)
		}
		defer publisher.Close()
	}

	validate := validator.New()
	grid := scheduler.DefaultGrid()
	engineCfg := scheduler.Config{
		Algorithm:          cfg.Scheduler.Algorithm,
		MaxAttempts:        cfg.Scheduler.MaxAttempts,
		RoomCapacityBuffer: cfg.Scheduler.RoomCapacityBuffer,
		FillGaps:           true,
	}

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, publisher, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "acadsync-api",
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	batchSvc := service.NewBatchService(batchRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	assignmentSvc := service.NewCourseAssignmentService(assignmentRepo, courseRepo, facultyRepo, batchRepo, validate, logr)
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		assignmentRepo,
		roomRepo,
		leaveRepo,
		facultyRepo,
		export.NewPDFExporter(grid),
		notificationSvc,
		redisClient,
		grid,
		engineCfg,
		validate,
		logr,
	).WithMetrics(metricsSvc)
	leaveSvc := service.NewLeaveService(leaveRepo, facultyRepo, assignmentRepo, notificationSvc, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Dependencies{
		Auth:          authSvc,
		Timetables:    timetableSvc,
		Leaves:        leaveSvc,
		Rooms:         roomSvc,
		Faculty:       facultySvc,
		Departments:   departmentSvc,
		Courses:       courseSvc,
		Batches:       batchSvc,
		Assignments:   assignmentSvc,
		Notifications: notificationSvc,
		Metrics:       metricsSvc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var watcher *service.RefreshWatcher
	if cfg.Scheduler.AutoRegenerate {
		watcher = service.NewRefreshWatcher(
			assignmentRepo,
			roomRepo,
			timetableSvc,
			redisClient,
			cfg.Scheduler.PollInterval,
			cfg.Scheduler.QueueBufferSize,
			logr,
		)
		watcher.Start(ctx)
		logr.Sugar().Infow("refresh watcher started", "interval", cfg.Scheduler.PollInterval)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if watcher != nil {
		watcher.Stop()
	}
	logr.Info("server stopped")
}
