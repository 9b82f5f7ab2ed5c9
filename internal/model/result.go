package model

// AnswerRecord 单题作答记录，按题目ID覆盖式保存（允许回头改答案）
type AnswerRecord struct {
	QuestionID     string `json:"question_id"`
	SelectedOption int    `json:"user_answer"`
	TimeSpent      int    `json:"time_spent"` // whole seconds
}

type FeedbackTier string

const (
	TierExcellent   FeedbackTier = "excellent"
	TierProficient  FeedbackTier = "proficient"
	TierDeveloping  FeedbackTier = "developing"
	TierNeedsReview FeedbackTier = "needs_review"
)

type TimeEfficiency string

const (
	EfficiencyFast       TimeEfficiency = "fast"
	EfficiencySteady     TimeEfficiency = "steady"
	EfficiencyDeliberate TimeEfficiency = "deliberate"
)

// Result 一次完整作答的本地权威结果。计算后不可变；允许重复提交。
type Result struct {
	QuizID         string         `json:"quiz_id"`
	EpicID         string         `json:"epic_id"`
	Percentage     int            `json:"percentage"`
	Correct        int            `json:"correct"`
	Incorrect      int            `json:"incorrect"`
	CorrectIDs     []string       `json:"correct_answers"` // package order
	Tier           FeedbackTier   `json:"feedback_tier"`
	TimeEfficiency TimeEfficiency `json:"time_efficiency"`
	TotalTime      int            `json:"total_time_seconds"`
}
