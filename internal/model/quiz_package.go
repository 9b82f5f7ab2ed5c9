package model

import "time"

// PackageMeta 包级元数据
type PackageMeta struct {
	Language      string     `json:"language"`
	Culture       string     `json:"culture"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime int        `json:"estimated_time_minutes"`
}

// QuizPackage 离线传输单元。创建后题目列表与正确答案不再本地变更；
// 服务端内容变化时整包重新下载，绝不原地修补。
type QuizPackage struct {
	ID           string      `json:"quiz_id"`
	EpicID       string      `json:"epic_id"`
	EpicTitle    string      `json:"epic_title"`
	Questions    []Question  `json:"questions"`
	Meta         PackageMeta `json:"metadata"`
	Block        *Block      `json:"block,omitempty"`
	DownloadedAt time.Time   `json:"downloaded_at"`
}

func (p *QuizPackage) QuestionCount() int {
	return len(p.Questions)
}

// QuestionAt 越界返回 nil
func (p *QuizPackage) QuestionAt(i int) *Question {
	if i < 0 || i >= len(p.Questions) {
		return nil
	}
	return &p.Questions[i]
}
