package repos

import (
	"gorm.io/gorm"

	"github.com/petuhovskiy/urn-lights/internal/models"
)

type ItemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) *ItemRepo {
	return &ItemRepo{
		db: db,
	}
}

// ListBySet returns the items of a set ordered by position. The urn is
// built from exactly this sequence.
func (r *ItemRepo) ListBySet(setID uint) ([]models.Item, error) {
	var items []models.Item
	err := r.db.
		Where("item_set_id = ?", setID).
		Order("position ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepo) Create(items []models.Item) error {
	return r.db.Create(&items).Error
}

// ReplaceSet atomically swaps the catalog of a set for a new item sequence.
// Used after churn persists the surviving urn contents.
func (r *ItemRepo) ReplaceSet(setID uint, items []models.Item) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Unscoped().
			Where("item_set_id = ?", setID).
			Delete(&models.Item{}).
			Error
		if err != nil {
			return err
		}

		for i := range items {
			items[i].ID = 0
			items[i].ItemSetID = setID
			items[i].Position = uint(i)
		}
		return tx.Create(&items).Error
	})
}
