package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"marketplace/cmd"
	"marketplace/internal/adapters/out/postgres/courierrepo"
	"marketplace/internal/adapters/out/postgres/ledgerrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	gormDB := openDatabase(configs)
	migrateDatabase(gormDB)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	storeConfig := ports.StoreConfig{
		VatRate:         mustRate(configs.VatRate),
		CommissionRate:  mustRate(configs.CommissionRate),
		BaseDeliveryFee: mustMoney(configs.BaseDeliveryFee),
		PerKmRate:       mustMoney(configs.DeliveryPerKmRate),
	}
	deliveryDistanceKm := mustFloat(configs.DeliveryDistanceKm)

	app := cmd.NewCompositionRoot(
		configs,
		gormDB,
		storeConfig,
		deliveryDistanceKm,
		logger,
	)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:           goDotEnvVariable("HTTP_PORT"),
		DBHost:             goDotEnvVariable("DB_HOST"),
		DBPort:             goDotEnvVariable("DB_PORT"),
		DBUser:             goDotEnvVariable("DB_USER"),
		DBPassword:         goDotEnvVariable("DB_PASSWORD"),
		DBName:             goDotEnvVariable("DB_NAME"),
		DBSslMode:          goDotEnvVariable("DB_SSLMODE"),
		VatRate:            goDotEnvVariable("VAT_RATE"),
		CommissionRate:     goDotEnvVariable("COMMISSION_RATE"),
		BaseDeliveryFee:    goDotEnvVariable("BASE_DELIVERY_FEE"),
		DeliveryPerKmRate:  goDotEnvVariable("DELIVERY_PER_KM_RATE"),
		DeliveryDistanceKm: goDotEnvVariable("DELIVERY_DISTANCE_KM"),
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

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost,
		configs.DBPort,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBSslMode,
	)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return gormDB
}

func migrateDatabase(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderEventDTO{},
		&courierrepo.CourierDTO{},
		&ledgerrepo.EntryDTO{},
		&ledgerrepo.EntryLineDTO{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
}

func mustRate(s string) kernel.Rate {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("Error parsing rate %q: %v", s, err)
	}
	rate, err := kernel.NewRate(d)
	if err != nil {
		log.Fatalf("Error parsing rate %q: %v", s, err)
	}
	return rate
}

func mustMoney(s string) kernel.Money {
	m, err := kernel.NewMoneyFromString(s)
	if err != nil {
		log.Fatalf("Error parsing amount %q: %v", s, err)
	}
	return m
}

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("Error parsing number %q: %v", s, err)
	}
	return f
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
