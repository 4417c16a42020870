package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Searches struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) *Searches {
	return &Searches{db: db}
}

func (repo *Searches) Add(ctx context.Context, search entities.SavedSearch) error {
	return repo.db.WithContext(ctx).Create(&search).Error
}

func (repo *Searches) GetByName(ctx context.Context, name string) (*entities.SavedSearch, error) {

	var search entities.SavedSearch
	if err := repo.db.WithContext(ctx).First(&search, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &search, nil
}

func (repo *Searches) GetCount(ctx context.Context) (int64, error) {

	var count int64
	if err := repo.db.WithContext(ctx).Model(&entities.SavedSearch{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *Searches) UpdateLastRun(ctx context.Context, id int, runAt time.Time) error {
	return repo.db.WithContext(ctx).Model(&entities.SavedSearch{}).Where("id = ?", id).
		Updates(map[string]any{
			"last_run_at": runAt.UTC(),
		}).Error
}

func (repo *Searches) Get(ctx context.Context, limit int, offset int) ([]entities.SavedSearch, error) {

	var searches []entities.SavedSearch
	if err := repo.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&searches).Error; err != nil {
		return nil, err
	}
	return searches, nil
}

func (repo *Searches) RemoveByName(ctx context.Context, name string) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&entities.SavedSearch{}, "name = ?", name)
	return res.RowsAffected > 0, res.Error
}
