package repository

import (
	"epic_quiz_client/internal/model"

	"gorm.io/gorm"
)

type DeepDiveRepository struct {
	DB *gorm.DB
}

func NewDeepDiveRepository(db *gorm.DB) *DeepDiveRepository {
	return &DeepDiveRepository{DB: db}
}

func (r *DeepDiveRepository) FindByQuestionID(questionID string) (*model.DeepDive, error) {
	var d model.DeepDive
	err := r.DB.First(&d, "question_id = ?", questionID).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}
