package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go-shoeroom/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver   string // postgres | sqlite
	DSN      string
	LogLevel string // silent | error | warn | info
}

// Open connects to the configured store. Errors are translated by GORM so
// unique violations surface as gorm.ErrDuplicatedKey on every driver.
func Open(cfg Config) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  parseLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormCfg := &gorm.Config{
		Logger:                                   newLogger,
		PrepareStmt:                              false,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true, // invoice lines outlive their products
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	case "postgres", "":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true, // Disables implicit prepared statements for pgbouncer transaction mode
		}), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// One connection keeps an in-memory database alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// ConnectDB opens the store and migrates the schema, exiting on failure.
func ConnectDB(cfg Config) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}
	// Auto Migrate (use a dedicated migration tool for production schemas)
	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database. \n", err)
	}

	log.Println("Database connection established")
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Product{}, &model.Invoice{}, &model.InvoiceItem{}, &model.InvoiceSequence{})
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
