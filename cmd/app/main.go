package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/agentrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/walletrepo"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs)
	mustMigrateDB(gormDB)

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Error creating composition root: %v", err)
	}

	jobManager := mustCreateJobs(&root, logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		WebhookEndpoint: goDotEnvVariable("WEBHOOK_ENDPOINT"),

		DispatchBaseRadiusMeters: envFloat("DISPATCH_BASE_RADIUS_METERS", 1000),
		DispatchMaxRadiusMeters:  envFloat("DISPATCH_MAX_RADIUS_METERS", 16000),
		DispatchMaxCandidates:    envInt("DISPATCH_MAX_CANDIDATES", 5),
		DispatchMaxAttempts:      envInt("DISPATCH_MAX_ATTEMPTS", 5),
		OfferTTL:                 envDuration("OFFER_TTL", 30*time.Second),

		DelayGrace:          envDuration("DELAY_GRACE", 10*time.Minute),
		DefaultDurationMins: envInt("DEFAULT_DURATION_MINS", 30),

		AgentSharePercent: envInt("AGENT_SHARE_PERCENT", 70),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func envInt(key string, fallback int) int {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return value
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		configs.DBHost,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBPort,
		configs.DBSslMode,
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return gormDB
}

func mustMigrateDB(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&agentrepo.AgentDTO{},
		&walletrepo.WalletDTO{},
		&walletrepo.TransactionDTO{},
		&walletrepo.PayoutDTO{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
}

func mustCreateJobs(root *cmd.CompositionRoot, logger *slog.Logger) *jobs.JobManager {
	dispatchHandler, err := root.CreateDispatchOrdersCommandHandler()
	if err != nil {
		log.Fatalf("Error creating dispatch handler: %v", err)
	}

	sweepHandler, err := root.CreateSweepDelayedOrdersCommandHandler()
	if err != nil {
		log.Fatalf("Error creating delay sweep handler: %v", err)
	}

	return jobs.NewJobManager(
		dispatchHandler,
		sweepHandler,
		root.CreateSettlePayoutsCommandHandler(),
		logger,
	)
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	server := httpin.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateAcceptOfferCommandHandler(),
		root.CreateRejectOfferCommandHandler(),
		root.CreateAdvanceOrderCommandHandler(),
		root.CreateCancelOrderCommandHandler(),
		root.CreateReassignOrderCommandHandler(),
		root.CreateUpdateAgentLocationCommandHandler(),
		root.CreateSetAgentPresenceCommandHandler(),
		root.CreateListAvailableOrdersQueryHandler(),
		root.CreateListActiveOrdersQueryHandler(),
		root.CreateGetWalletQueryHandler(),
		root.Hub(),
	)

	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
