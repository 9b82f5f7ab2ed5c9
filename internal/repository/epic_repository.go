package repository

import (
	"epic_quiz_client/internal/model"

	"gorm.io/gorm"
)

type EpicRepository struct {
	DB *gorm.DB
}

func NewEpicRepository(db *gorm.DB) *EpicRepository {
	return &EpicRepository{DB: db}
}

// ListAvailable 仅返回上架中的史诗，按创建顺序
func (r *EpicRepository) ListAvailable() ([]model.Epic, error) {
	var epics []model.Epic
	err := r.DB.Where("is_available = ?", true).
		Order("created_at asc").
		Find(&epics).Error
	return epics, err
}

func (r *EpicRepository) FindByID(id string) (*model.Epic, error) {
	var e model.Epic
	err := r.DB.First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
