package main

import (
	"context"
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
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-core-api/api/swagger"
	"github.com/noah-isme/gym-core-api/internal/handler"
	"github.com/noah-isme/gym-core-api/internal/middleware"
	"github.com/noah-isme/gym-core-api/internal/models"
	"github.com/noah-isme/gym-core-api/internal/repository"
	"github.com/noah-isme/gym-core-api/internal/service"
	"github.com/noah-isme/gym-core-api/pkg/cache"
	"github.com/noah-isme/gym-core-api/pkg/config"
	"github.com/noah-isme/gym-core-api/pkg/database"
	"github.com/noah-isme/gym-core-api/pkg/export"
	"github.com/noah-isme/gym-core-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gym-core-api/pkg/middleware/requestid"
	"github.com/noah-isme/gym-core-api/pkg/vnpay"
)

// @title Gym Core API
// @version 1.0.0
// @description Membership, booking and payroll backend for gym operations
// @BasePath /api/v1
// @schemes http

const registrationExpiryInterval = time.Hour

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer redisClient.Close()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	trainerRepo := repository.NewTrainerRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	classRepo := repository.NewClassRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	checkinRepo := repository.NewCheckInRepository(db)
	walkinRepo := repository.NewWalkInRepository(db)
	salaryRepo := repository.NewSalaryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	gateway := vnpay.New(vnpay.Config{
		TmnCode:    cfg.VNPay.TmnCode,
		HashSecret: cfg.VNPay.HashSecret,
		PayURL:     cfg.VNPay.PayURL,
		ReturnURL:  cfg.VNPay.ReturnURL,
		Locale:     cfg.VNPay.Locale,
	})

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gym-core-api",
	})

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, logr)
	accessSvc := service.NewAccessService(userRepo, logr)

	commissionFallback := models.CommissionConfig{
		PackageRate:           cfg.Salary.PackageRate,
		ClassRate:             cfg.Salary.ClassRate,
		PersonalTrainingRate:  cfg.Salary.PersonalTrainingRate,
		MinStudentsForBonus:   cfg.Salary.MinStudentsForBonus,
		PerformanceBonus:      cfg.Salary.PerformanceBonus,
		MinAttendanceForBonus: cfg.Salary.MinAttendanceForBonus,
		AttendanceBonus:       cfg.Salary.AttendanceBonus,
		MaxCommissionPerMonth: cfg.Salary.MaxCommissionPerMonth,
	}
	commissionSvc := service.NewCommissionService(salaryRepo, commissionFallback, logr)
	salarySvc := service.NewSalaryService(salaryRepo, trainerRepo, commissionSvc, notificationSvc, export.NewPDFExporter(), logr)

	memberSvc := service.NewMemberService(memberRepo, validate, logr)
	trainerSvc := service.NewTrainerService(trainerRepo, validate, logr)
	packageSvc := service.NewPackageService(packageRepo, trainerRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, trainerRepo, accessSvc, validate, logr)
	promoSvc := service.NewPromoService(promoRepo, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, registrationRepo, memberRepo, packageRepo, classRepo, promoRepo, gateway, notificationSvc, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, classRepo, registrationRepo, notificationSvc, cfg.Booking.CancelCutoff, logr)
	checkinSvc := service.NewCheckInService(checkinRepo, registrationRepo, bookingRepo, walkinRepo, cfg.CheckIn.FaceEnabled, cfg.CheckIn.FaceThreshold, logr)
	walkinSvc := service.NewWalkInService(walkinRepo, paymentRepo, gateway, cfg.WalkIn.VisitPrice, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, nil, nil, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Payments:      paymentRepo,
		Members:       memberRepo,
		Registrations: registrationRepo,
		CheckIns:      checkinRepo,
		WalkIns:       walkinRepo,
		Sessions:      classRepo,
		TrainerStats:  salaryRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.StartQueue(ctx)
	defer notificationSvc.StopQueue()

	go expireRegistrationsLoop(ctx, paymentSvc, dashboardSvc, logr)

	router := buildRouter(cfg, logr, routerDeps{
		auth:          handler.NewAuthHandler(authSvc),
		members:       handler.NewMemberHandler(memberSvc),
		trainers:      handler.NewTrainerHandler(trainerSvc),
		packages:      handler.NewPackageHandler(packageSvc),
		classes:       handler.NewClassHandler(classSvc),
		registrations: handler.NewRegistrationHandler(registrationSvc, paymentSvc),
		payments:      handler.NewPaymentHandler(paymentSvc),
		bookings:      handler.NewBookingHandler(bookingSvc, metricsSvc),
		checkins:      handler.NewCheckInHandler(checkinSvc, metricsSvc),
		walkins:       handler.NewWalkInHandler(walkinSvc),
		promos:        handler.NewPromoHandler(promoSvc),
		salaries:      handler.NewSalaryHandler(salarySvc, accessSvc),
		commissions:   handler.NewCommissionHandler(commissionSvc),
		dashboard:     handler.NewDashboardHandler(dashboardSvc),
		reports:       handler.NewReportHandler(reportSvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
		users:         handler.NewUserHandler(userSvc),
		metrics:       handler.NewMetricsHandler(metricsSvc),
		authSvc:       authSvc,
		metricsSvc:    metricsSvc,
		auditRepo:     userRepo,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

type routerDeps struct {
	auth          *handler.AuthHandler
	members       *handler.MemberHandler
	trainers      *handler.TrainerHandler
	packages      *handler.PackageHandler
	classes       *handler.ClassHandler
	registrations *handler.RegistrationHandler
	payments      *handler.PaymentHandler
	bookings      *handler.BookingHandler
	checkins      *handler.CheckInHandler
	walkins       *handler.WalkInHandler
	promos        *handler.PromoHandler
	salaries      *handler.SalaryHandler
	commissions   *handler.CommissionHandler
	dashboard     *handler.DashboardHandler
	reports       *handler.ReportHandler
	notifications *handler.NotificationHandler
	users         *handler.UserHandler
	metrics       *handler.MetricsHandler
	authSvc       *service.AuthService
	metricsSvc    *service.MetricsService
	auditRepo     *repository.UserRepository
}

func buildRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.metrics.Health)
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	// Public routes.
	api.POST("/auth/login", deps.auth.Login)
	api.POST("/auth/refresh", deps.auth.Refresh)
	api.GET("/payments/vnpay/return", middleware.OptionalJWT(deps.authSvc), deps.payments.GatewayReturn)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.authSvc))

	authed.POST("/auth/logout", deps.auth.Logout)
	authed.POST("/auth/change-password", deps.auth.ChangePassword)
	authed.GET("/auth/me", deps.auth.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleReceptionist)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOrTrainer := middleware.RequireRoles(models.RoleAdmin, models.RoleReceptionist, models.RoleTrainer)
	adminOrTrainer := middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer)

	authed.GET("/members", staffOrTrainer, deps.members.List)
	authed.GET("/members/:id", deps.members.Get)
	authed.POST("/members", staff, deps.members.Create)
	authed.PUT("/members/:id", staff, deps.members.Update)
	authed.DELETE("/members/:id", staff, deps.members.Delete)
	authed.PUT("/members/:id/face", staff, deps.checkins.EnrollFace)
	authed.DELETE("/members/:id/face", staff, deps.checkins.RemoveFace)

	authed.GET("/trainers", deps.trainers.List)
	authed.GET("/trainers/:id", deps.trainers.Get)
	authed.POST("/trainers", adminOnly, deps.trainers.Create)
	authed.PUT("/trainers/:id", adminOnly, deps.trainers.Update)
	authed.DELETE("/trainers/:id", adminOnly, deps.trainers.Delete)

	authed.GET("/packages", deps.packages.List)
	authed.GET("/packages/:id", deps.packages.Get)
	authed.POST("/packages", adminOnly, deps.packages.Create)
	authed.PUT("/packages/:id", adminOnly, deps.packages.Update)
	authed.DELETE("/packages/:id", adminOnly, deps.packages.Delete)

	authed.GET("/classes", deps.classes.List)
	authed.GET("/classes/:id", deps.classes.Get)
	authed.POST("/classes", adminOnly, deps.classes.Create)
	authed.PUT("/classes/:id", adminOrTrainer, deps.classes.Update)
	authed.DELETE("/classes/:id", adminOnly, deps.classes.Delete)
	authed.POST("/classes/:id/sessions/generate", staff, deps.classes.GenerateSessions)
	authed.GET("/sessions", deps.classes.ListSessions)
	authed.GET("/sessions/:id", deps.classes.GetSession)

	authed.GET("/registrations", deps.registrations.List)
	authed.GET("/registrations/:id", deps.registrations.Get)
	authed.POST("/registrations/:id/cancel", staff, deps.registrations.Cancel)
	authed.POST("/registrations/expire", adminOnly, deps.registrations.Expire)

	authed.GET("/payments", deps.payments.List)
	authed.GET("/payments/:id", deps.payments.Get)
	authed.POST("/payments/package", staff, deps.payments.CreatePackagePayment)
	authed.POST("/payments/class", staff, deps.payments.CreateClassPayment)
	authed.POST("/payments/:id/cash", staff, deps.payments.ProcessCash)
	authed.POST("/payments/:id/refund", adminOnly, middleware.Audit(deps.auditRepo, "REFUND_PAYMENT", "payments"), deps.payments.Refund)

	authed.GET("/bookings", deps.bookings.List)
	authed.POST("/bookings", deps.bookings.Book)
	authed.DELETE("/bookings/:id", deps.bookings.Cancel)

	authed.GET("/checkins", staffOrTrainer, deps.checkins.List)
	authed.POST("/checkins/manual", staff, deps.checkins.Manual)
	authed.POST("/checkins/face", staff, deps.checkins.Face)
	authed.POST("/checkins/walkin/:id", staff, deps.checkins.WalkIn)

	authed.GET("/walkins", staff, deps.walkins.List)
	authed.POST("/walkins", staff, deps.walkins.Create)

	authed.GET("/promos", staff, deps.promos.List)
	authed.GET("/promos/:code", deps.promos.Get)
	authed.POST("/promos", adminOnly, deps.promos.Create)
	authed.PUT("/promos/:code", adminOnly, deps.promos.Update)
	authed.DELETE("/promos/:code", adminOnly, deps.promos.Delete)

	authed.GET("/salaries", adminOrTrainer, deps.salaries.List)
	authed.GET("/salaries/:id", adminOrTrainer, deps.salaries.Get)
	authed.GET("/salaries/:id/slip", adminOrTrainer, deps.salaries.Slip)
	authed.POST("/salaries/generate", adminOnly, deps.salaries.Generate)
	authed.POST("/salaries/payroll", adminOnly, middleware.Audit(deps.auditRepo, "GENERATE_PAYROLL", "salaries"), deps.salaries.GeneratePayroll)
	authed.POST("/salaries/:id/pay", adminOnly, deps.salaries.MarkPaid)

	authed.GET("/commissions/config", adminOnly, deps.commissions.Config)
	authed.PUT("/commissions/tiers", adminOnly, middleware.Audit(deps.auditRepo, "UPDATE_COMMISSION_TIERS", "commissions"), deps.commissions.UpdateTiers)
	authed.GET("/commissions/:trainerId", adminOrTrainer, deps.commissions.Calculate)

	authed.GET("/dashboard", staff, deps.dashboard.Overview)
	authed.GET("/dashboard/trainer", adminOrTrainer, deps.dashboard.Trainer)

	authed.GET("/reports/revenue", adminOnly, deps.reports.Revenue)
	authed.GET("/reports/commissions", adminOnly, deps.reports.Commission)

	authed.GET("/notifications", deps.notifications.List)
	authed.POST("/notifications/:id/read", deps.notifications.MarkRead)
	authed.POST("/notifications/read-all", deps.notifications.MarkAllRead)

	authed.GET("/users", adminOnly, deps.users.List)
	authed.GET("/users/:id", adminOnly, deps.users.Get)
	authed.POST("/users", adminOnly, deps.users.Create)
	authed.PUT("/users/:id", adminOnly, deps.users.Update)
	authed.DELETE("/users/:id", adminOnly, deps.users.Delete)

	authed.GET("/metrics/snapshot", adminOnly, deps.metrics.Snapshot)

	return r
}

// expireRegistrationsLoop sweeps registrations whose end date passed and
// invalidates cached dashboards when anything changed.
func expireRegistrationsLoop(ctx context.Context, payments *service.PaymentService, dashboards *service.DashboardService, logr *zap.Logger) {
	ticker := time.NewTicker(registrationExpiryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := payments.ExpireRegistrations(ctx, time.Now().UTC())
			if err != nil {
				logr.Sugar().Warnw("registration expiry sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				logr.Sugar().Infow("expired registrations", "count", expired)
				dashboards.InvalidateOverview(ctx)
			}
		}
	}
}
