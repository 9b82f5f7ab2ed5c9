package model

import (
	"encoding/json"
	"time"
)

// DeepDive 单题的扩展教育内容，不随离线包下发，按需懒加载
type DeepDive struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuestionID      string          `gorm:"uniqueIndex;type:varchar(36);not null" json:"question_id"`
	DetailedContent string          `gorm:"type:text" json:"detailed_explanation"`
	CulturalContext string          `gorm:"type:text" json:"cultural_context"`
	CrossReferences json.RawMessage `gorm:"type:json" json:"cross_epic_connections,omitempty"`
	RelatedThemes   json.RawMessage `gorm:"type:json" json:"related_themes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (DeepDive) TableName() string {
	return "educational_content"
}
