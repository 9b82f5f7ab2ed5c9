package gateway

import (
	"context"

	"epic_quiz_client/internal/model"
)

// Filters 组包时的可选筛选条件，零值不过滤
type Filters struct {
	Difficulty model.Difficulty
	Category   model.QuestionCategory
	BlockID    string
}

type PackageRequest struct {
	EpicID string
	Count  int
	Filter Filters
}

// Provider 单个内容来源。网关按固定顺序逐个尝试，前一个完全
// 结束（成功或失败）后才会尝试下一个，绝不并行竞速。
type Provider interface {
	Name() string
	ListEpics(ctx context.Context) ([]model.Epic, error)
	GetEpic(ctx context.Context, epicID string) (*model.Epic, error)
	BuildPackage(ctx context.Context, req PackageRequest) (*model.QuizPackage, error)
	ListBlocks(ctx context.Context, epicID string) ([]model.Block, error)
	RecommendedBlock(ctx context.Context, epicID string) (*model.Block, error)
	BlockPackage(ctx context.Context, blockID string) (*model.QuizPackage, error)
	GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error)
	SubmitQuiz(ctx context.Context, payload *model.SubmissionPayload) error
}
