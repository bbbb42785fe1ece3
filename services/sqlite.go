package services

import (
	"errors"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/fazalrahmanedv/quizsync/model"
	"github.com/fazalrahmanedv/quizsync/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const SQLITE_SVC = "sqlite_svc"

// NewSqliteService builds the service for a specific database file without
// going through the service container. Used by embedders and tests; the
// caller still runs Start.
func NewSqliteService(database string) *SqliteService {
	return &SqliteService{database: database}
}

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	if ds.database == "" {
		ds.database = os.Getenv("DB_DATABASE")
	}
	if ds.database == "" {
		ds.database = "quizsync.db"
	}

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() (err error) {
	// WAL keeps readers on snapshot state while the single writer commits.
	dsn := ds.database + "?_journal_mode=WAL&_busy_timeout=5000"
	ds.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	models := []interface{}{
		&model.Country{},
		&model.Quiz{},
		&model.QuizSolution{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
}

// HandleError classifies a failed store mutation, logs it and wraps it as a
// StoreError for the synchronizer to propagate.
func (ds *SqliteService) HandleError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "no such table") {
			errorType = "SCHEMA_ERROR"
		} else {
			errorType = "INTERNAL_ERROR"
		}
	}

	log.WithFields(log.Fields{
		"op":         op,
		"error_type": errorType,
		"error":      err.Error(),
	}).Error("Database operation failed")

	return shared.NewStoreWriteError(op, err)
}
