package database

import (
	"fmt"
	"strings"

	"regportal-go/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the database for driver ("sqlite" or "postgres") and
// migrates the schema.
func Initialize(driver, databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(sqliteDSN(databaseURL))
	case "postgres":
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Bank and user rows are owned by another system; cascades are done
		// explicitly by the repository.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Bank{},
		&models.User{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.ValidationResult{},
		&models.ValidationDetail{},
		&models.AuditLog{},
	)
}

// sqliteDSN makes sqlite transactions take the write lock on BEGIN and wait
// for it, so concurrent reviews queue instead of failing with SQLITE_BUSY.
// A DSN that already carries parameters is used as given.
func sqliteDSN(databaseURL string) string {
	if strings.Contains(databaseURL, "?") {
		return databaseURL
	}
	return databaseURL + "?_busy_timeout=5000&_txlock=immediate"
}
