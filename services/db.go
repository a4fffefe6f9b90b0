package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbService owns the entity store. DB_DRIVER selects sqlite (default,
// also used by the test suite) or postgres; the schema and accessors
// are identical on both.
type DbService struct {
	context.DefaultService
	db *gorm.DB

	driver   string
	database string
}

const DB_SVC = "db_svc"

func (ds DbService) Id() string {
	return DB_SVC
}

// Db Access to the raw gorm handle
func (ds DbService) Db() *gorm.DB {
	return ds.db
}

func (ds *DbService) Configure(ctx *context.Context) error {
	ds.driver = os.Getenv("DB_DRIVER")
	if ds.driver == "" {
		ds.driver = "sqlite"
	}

	switch ds.driver {
	case "sqlite":
		ds.database = os.Getenv("DB_DATABASE")
		if ds.database == "" {
			ds.database = "progression.db"
		}
	case "postgres":
		ds.database = os.Getenv("DATABASE_URL")
		if ds.database == "" {
			host := envOr("DB_HOST", "localhost")
			port := envOr("DB_PORT", "5432")
			user := envOr("DB_USER", "postgres")
			password := envOr("DB_PASSWORD", "postgres")
			dbname := envOr("DB_NAME", "progression_api")
			sslmode := envOr("DB_SSLMODE", "disable")
			timezone := envOr("DB_TIMEZONE", "UTC")

			ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
				host, user, password, dbname, port, sslmode, timezone)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", ds.driver)
	}

	return ds.DefaultService.Configure(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Start opens the connection and migrates any tables that have changed
// since last runtime.
func (ds *DbService) Start() (err error) {
	switch ds.driver {
	case "postgres":
		err = ds.openPostgres()
	default:
		err = ds.openSqlite()
	}
	if err != nil {
		return err
	}

	return ds.migrate()
}

func (ds *DbService) openSqlite() (err error) {
	// Cascading deletes rely on FK enforcement, which sqlite leaves
	// off per connection unless the DSN asks for it.
	dsn := ds.database
	if !strings.Contains(dsn, "_foreign_keys") {
		if strings.Contains(dsn, "?") {
			dsn += "&_foreign_keys=on"
		} else {
			dsn += "?_foreign_keys=on"
		}
	}

	ds.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	return err
}

func (ds *DbService) openPostgres() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					return nil
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	return err
}

func (ds *DbService) migrate() error {
	models := []interface{}{
		// Catalog
		&model.Boost{},
		&model.Level{},
		&model.Prize{},
		&model.LevelPrize{},

		// Players and their ledger rows
		&model.Player{},
		&model.PlayerBoost{},
		&model.PlayerLevel{},
		&model.PlayerPrize{},
	}

	if err := ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *DbService) Shutdown() {
}

// HandleError maps driver errors onto the service error taxonomy:
// missing references become 404s, duplicate/check failures become
// constraint violations, everything else is internal.
func (ds *DbService) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(err, "record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConstraintViolationError(err, "duplicate record")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewNotFoundError(err, "referenced record does not exist")
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return shared.NewConstraintViolationError(err, "duplicate record")
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "violates check constraint"):
		return shared.NewConstraintViolationError(err, "check constraint violated")
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"):
		return shared.NewNotFoundError(err, "referenced record does not exist")
	}

	log.WithFields(log.Fields{
		"driver": ds.driver,
		"error":  msg,
	}).Error("Database error occurred")

	return shared.NewInternalError(err)
}
