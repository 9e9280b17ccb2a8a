package repos

import (
	"gorm.io/gorm"

	"github.com/petuhovskiy/urn-lights/internal/models"
)

type ItemSetRepo struct {
	db *gorm.DB
}

func NewItemSetRepo(db *gorm.DB) *ItemSetRepo {
	return &ItemSetRepo{
		db: db,
	}
}

func (r *ItemSetRepo) Create(set *models.ItemSet) error {
	return r.db.Create(set).Error
}

// CountByExitnode returns the number of sets owned by the node.
func (r *ItemSetRepo) CountByExitnode(exitnode string) (int64, error) {
	var count int64
	err := r.db.
		Model(&models.ItemSet{}).
		Where("exitnode = ?", exitnode).
		Count(&count).
		Error
	return count, err
}

// FindRandomSets returns up to n random sets matching the filters.
func (r *ItemSetRepo) FindRandomSets(filters []Filter, n int) ([]models.ItemSet, error) {
	var sets []models.ItemSet

	db := r.db
	for _, filter := range filters {
		db = filter.Apply(db)
	}

	err := db.
		Order("RANDOM()").
		Limit(n).
		Find(&sets).
		Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *ItemSetRepo) Delete(set *models.ItemSet) error {
	return r.db.Delete(set).Error
}
