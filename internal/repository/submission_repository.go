package repository

import (
	"epic_quiz_client/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create 提交记录与作答明细在同一事务写入
func (r *SubmissionRepository) Create(sub *model.QuizSubmission, answers []model.QuizSubmissionAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].SubmissionID = sub.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByQuizID 幂等检查：同一 quizId 重复提交直接复用已有记录
func (r *SubmissionRepository) FindByQuizID(quizID string) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.First(&s, "quiz_id = ?", quizID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
