package repos

import (
	"gorm.io/gorm"

	"github.com/petuhovskiy/urn-lights/internal/models"
)

type DrawRepo struct {
	db *gorm.DB
}

func NewDrawRepo(db *gorm.DB) *DrawRepo {
	return &DrawRepo{
		db: db,
	}
}

// Save draw to the database.
func (r *DrawRepo) Save(draw *models.Draw) error {
	return r.db.Save(draw).Error
}

func (r *DrawRepo) FetchLastDraws(setID uint, limit int) ([]models.Draw, error) {
	var draws []models.Draw
	err := r.db.
		Where("item_set_id = ?", setID).
		Order("id DESC").
		Limit(limit).
		Find(&draws).
		Error

	return draws, err
}

// CountBySetAndLabel returns per-label draw counts for a set, for checking
// observed frequencies against catalog weights.
func (r *DrawRepo) CountBySetAndLabel(setID uint) (map[string]int64, error) {
	var rows []struct {
		Label string
		Count int64
	}

	err := r.db.
		Model(&models.Draw{}).
		Select("label, COUNT(*) AS count").
		Where("item_set_id = ? AND is_finished AND NOT is_failed", setID).
		Group("label").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}
