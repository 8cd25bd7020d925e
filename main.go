package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/meinhoongagan/carebook/config"
	"github.com/meinhoongagan/carebook/cron"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/payments"
	"github.com/meinhoongagan/carebook/ratelimit"
	"github.com/meinhoongagan/carebook/redis"
	"github.com/meinhoongagan/carebook/routes"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.InitLogger(cfg.Env)
	defer logger.Sync()

	if err := db.Init(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := db.Migrate(db.DB); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var loginLimiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis unavailable", zap.Error(err))
		}
		defer client.Close()
		loginLimiter = ratelimit.NewRedisLimiter(client, "carebook:login:", cfg.LoginMaxAttempts, cfg.LoginWindow)
		logger.Info("login limiter backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		loginLimiter = ratelimit.NewMemoryLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
		logger.Info("login limiter in memory")
	}

	var mailer utils.Mailer = utils.LogMailer{Logger: logger}
	if cfg.SMTPHost != "" {
		mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailFrom,
		})
	}

	var gateway payments.Gateway = payments.ManualGateway{}
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.StripeSecretKey)
	}

	var uploader utils.Uploader
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("cloudinary disabled", zap.Error(err))
		} else {
			uploader = cld
		}
	}

	scheduler, err := cron.Start(cfg.ReminderCron, db.DB, mailer, logger)
	if err != nil {
		logger.Fatal("cron init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
	}))
	app.Use(middleware.RequestLogger())

	routes.Setup(app, routes.Deps{
		JWTSecret:               cfg.JWTSecret,
		Location:                cfg.Location(),
		AvailabilityDefaultDays: cfg.AvailabilityDefaultDays,
		AvailabilityMaxDays:     cfg.AvailabilityMaxDays,
		Currency:                cfg.Currency,
		LoginLimiter:            loginLimiter,
		Payments:                gateway,
		Mailer:                  mailer,
		Uploader:                uploader,
	})

	go func() {
		logger.Info("server starting", zap.String("port", cfg.AppPort), zap.String("payments", gateway.Name()))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

// errorHandler turns unhandled errors into the JSON error body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return utils.RespondError(c, code, utils.StatusMessage(code), err)
}
