package repository

import (
	"epic_quiz_client/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// QuestionFilter 可选筛选条件，零值表示不过滤
type QuestionFilter struct {
	Difficulty model.Difficulty
	Category   model.QuestionCategory
	BlockID    string
}

// ListForEpic 按筛选条件取前 count 题，创建顺序稳定
func (r *QuestionRepository) ListForEpic(epicID string, count int, filter QuestionFilter) ([]model.Question, error) {
	var qs []model.Question
	query := r.DB.Model(&model.Question{}).Where("epic_id = ?", epicID)
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.BlockID != "" {
		query = query.Where("block_id = ?", filter.BlockID)
	}
	err := query.Order("created_at asc").Limit(count).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) CountForEpic(epicID string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Question{}).Where("epic_id = ?", epicID).Count(&total).Error
	return total, err
}
