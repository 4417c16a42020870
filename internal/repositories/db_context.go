package repositories

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// newGormLogger sends gorm errors through logrus, so they follow the
// application's output (stderr for one-shot commands) and never reach stdout.
func newGormLogger() logger.Interface {
	return logger.New(log.StandardLogger(), logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Error,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.StoredJob{})
	if err != nil {
		return fmt.Errorf("failed to migrate StoredJob entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.SavedSearch{})
	if err != nil {
		return fmt.Errorf("failed to migrate SavedSearch entity: %w", err)
	}

	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_content_hash ON jobs (content_hash);").
		Error; err != nil {
		return fmt.Errorf("failed to create content hash index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
