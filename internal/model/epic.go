package model

import "time"

// Epic 一部史诗/内容集，客户端只读，服务端维护可用性与题目数
type Epic struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Language      string    `gorm:"size:16;default:'en'" json:"language"`
	Culture       string    `gorm:"size:64" json:"culture"`
	IsAvailable   bool      `gorm:"default:false;index" json:"is_available"`
	Difficulty    string    `gorm:"size:16" json:"difficulty_level"`
	QuestionCount int       `gorm:"default:0" json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Epic) TableName() string {
	return "epics"
}
