package db

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/models"
)

var DB *gorm.DB

// Models lists every table the service owns, in migration order.
var Models = []any{
	&models.Category{},
	&models.Product{},
	&models.BusinessLunch{},
	&models.User{},
	&models.UserAddress{},
	&models.Order{},
	&models.Reservation{},
	&models.BanquetMenu{},
	&models.DailyStats{},
	&models.DailyVisitor{},
}

func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)
}

// Init connects to Postgres, migrates the schema and installs the handle as DB.
func Init(cfg config.DatabaseConfig) error {
	conn, err := gorm.Open(postgres.Open(DSN(cfg)), Options())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return err
	}

	DB = conn
	slog.Info("database connected and migrated", "host", cfg.Host, "name", cfg.Name)
	return nil
}

// Options are shared by production and test connections. TranslateError maps
// unique violations to gorm.ErrDuplicatedKey on every dialect.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}
