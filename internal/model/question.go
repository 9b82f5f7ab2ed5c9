package model

import (
	"encoding/json"
	"time"
)

type QuestionCategory string

const (
	CategoryCharacters QuestionCategory = "characters"
	CategoryEvents     QuestionCategory = "events"
	CategoryThemes     QuestionCategory = "themes"
	CategoryCulture    QuestionCategory = "culture"
)

func (c QuestionCategory) Valid() bool {
	switch c {
	case CategoryCharacters, CategoryEvents, CategoryThemes, CategoryCulture:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question 单选题，固定4个选项，correct_answer_id 为正确选项下标
type Question struct {
	ID            string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EpicID        string           `gorm:"index;type:varchar(64);not null" json:"epic_id"`
	BlockID       string           `gorm:"index;type:varchar(36)" json:"block_id,omitempty"`
	Category      QuestionCategory `gorm:"size:32;index" json:"category"`
	Difficulty    Difficulty       `gorm:"size:16;index" json:"difficulty"`
	Text          string           `gorm:"type:text;not null" json:"question_text"`
	Options       json.RawMessage  `gorm:"type:json" json:"options"` // JSON: [4]string
	CorrectAnswer int              `gorm:"not null" json:"correct_answer_id"`
	Explanation   string           `gorm:"type:text" json:"basic_explanation"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解码固定4选项
func (q *Question) OptionList() []string {
	var opts []string
	if len(q.Options) > 0 {
		json.Unmarshal(q.Options, &opts)
	}
	return opts
}
