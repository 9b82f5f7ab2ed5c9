package model

// Block 史诗内容的分级子集，客户端视为不透明描述符。
// Synthesized 标记该描述符是客户端在服务端缺失时合成的，审计时必须可区分。
type Block struct {
	ID                 string     `json:"id"`
	EpicID             string     `json:"epic_id"`
	Name               string     `json:"name"`
	Difficulty         Difficulty `json:"difficulty"`
	StartIndex         int        `json:"start_index"`
	EndIndex           int        `json:"end_index"`
	Prerequisites      []string   `json:"prerequisites,omitempty"`
	LearningObjectives []string   `json:"learning_objectives,omitempty"`
	Synthesized        bool       `json:"synthesized"`
}
