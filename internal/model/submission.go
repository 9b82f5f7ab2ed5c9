package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionAnswer 提交负载中的单题作答
type SubmissionAnswer struct {
	QuestionID string `json:"question_id"`
	UserAnswer int    `json:"user_answer"`
	TimeSpent  int    `json:"time_spent"`
}

// SubmissionPayload 客户端→网关的提交负载（§ wire format）
type SubmissionPayload struct {
	QuizID     string             `json:"quizId"`
	EpicID     string             `json:"epicId"`
	Answers    []SubmissionAnswer `json:"answers"`
	TimeSpent  int                `json:"timeSpent"`
	DeviceType string             `json:"deviceType,omitempty"`
	AppVersion string             `json:"appVersion,omitempty"`
}

// QuizSubmission 主数据服务中的提交记录
type QuizSubmission struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuizID     string    `gorm:"index;type:varchar(36)" json:"quiz_id"`
	EpicID     string    `gorm:"index;type:varchar(64)" json:"epic_id"`
	TimeSpent  int       `gorm:"default:0" json:"time_spent"`
	DeviceType string    `gorm:"size:32" json:"device_type"`
	AppVersion string    `gorm:"size:32" json:"app_version"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

func (s *QuizSubmission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type QuizSubmissionAnswer struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID string `gorm:"index;type:varchar(36)" json:"submission_id"`
	QuestionID   string `gorm:"index;type:varchar(36)" json:"question_id"`
	UserAnswer   int    `json:"user_answer"`
	TimeSpent    int    `json:"time_spent"`
}

func (QuizSubmissionAnswer) TableName() string {
	return "quiz_submission_answers"
}
