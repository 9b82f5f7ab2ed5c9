package gateway

import (
	"context"
	"errors"
	"time"

	"epic_quiz_client/internal/model"
	"epic_quiz_client/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrimaryProvider 直连主数据服务（结构化查询）。分块信息主库没有，
// 相关操作返回 errNotSupported 交给下一个来源。
type PrimaryProvider struct {
	EpicRepo       *repository.EpicRepository
	QuestionRepo   *repository.QuestionRepository
	DeepDiveRepo   *repository.DeepDiveRepository
	SubmissionRepo *repository.SubmissionRepository
	Now            func() time.Time
}

func NewPrimaryProvider(db *gorm.DB) *PrimaryProvider {
	return &PrimaryProvider{
		EpicRepo:       repository.NewEpicRepository(db),
		QuestionRepo:   repository.NewQuestionRepository(db),
		DeepDiveRepo:   repository.NewDeepDiveRepository(db),
		SubmissionRepo: repository.NewSubmissionRepository(db),
		Now:            time.Now,
	}
}

func (p *PrimaryProvider) Name() string { return "primary" }

func (p *PrimaryProvider) ListEpics(ctx context.Context) ([]model.Epic, error) {
	epics, err := p.EpicRepo.ListAvailable()
	if err != nil {
		return nil, err
	}
	return epics, nil
}

func (p *PrimaryProvider) GetEpic(ctx context.Context, epicID string) (*model.Epic, error) {
	epic, err := p.EpicRepo.FindByID(epicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("GetEpic", "epic does not exist")
		}
		return nil, err
	}
	return epic, nil
}

func (p *PrimaryProvider) BuildPackage(ctx context.Context, req PackageRequest) (*model.QuizPackage, error) {
	epic, err := p.EpicRepo.FindByID(req.EpicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("GetPackage", "epic does not exist")
		}
		return nil, err
	}
	if !epic.IsAvailable {
		return nil, notFoundErr("GetPackage", "epic is not available")
	}

	questions, err := p.QuestionRepo.ListForEpic(req.EpicID, req.Count, repository.QuestionFilter{
		Difficulty: req.Filter.Difficulty,
		Category:   req.Filter.Category,
		BlockID:    req.Filter.BlockID,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, notFoundErr("GetPackage", "no questions match the requested filters")
	}

	difficulty := req.Filter.Difficulty
	if difficulty == "" {
		difficulty = model.Difficulty(epic.Difficulty)
	}

	return &model.QuizPackage{
		ID:        uuid.New().String(),
		EpicID:    epic.ID,
		EpicTitle: epic.Title,
		Questions: questions,
		Meta: model.PackageMeta{
			Language:      epic.Language,
			Culture:       epic.Culture,
			Difficulty:    difficulty,
			EstimatedTime: len(questions), // ~1 minute per question
		},
		DownloadedAt: p.Now(),
	}, nil
}

func (p *PrimaryProvider) ListBlocks(ctx context.Context, epicID string) ([]model.Block, error) {
	return nil, errNotSupported
}

func (p *PrimaryProvider) RecommendedBlock(ctx context.Context, epicID string) (*model.Block, error) {
	return nil, errNotSupported
}

func (p *PrimaryProvider) BlockPackage(ctx context.Context, blockID string) (*model.QuizPackage, error) {
	return nil, errNotSupported
}

func (p *PrimaryProvider) GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error) {
	d, err := p.DeepDiveRepo.FindByQuestionID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("GetDeepDive", "no deep dive content for this question")
		}
		return nil, err
	}
	return d, nil
}

// SubmitQuiz 同一 quizId 重复提交为幂等：已有记录直接视为成功
func (p *PrimaryProvider) SubmitQuiz(ctx context.Context, payload *model.SubmissionPayload) error {
	if existing, err := p.SubmissionRepo.FindByQuizID(payload.QuizID); err == nil && existing != nil {
		return nil
	}

	sub := &model.QuizSubmission{
		QuizID:     payload.QuizID,
		EpicID:     payload.EpicID,
		TimeSpent:  payload.TimeSpent,
		DeviceType: payload.DeviceType,
		AppVersion: payload.AppVersion,
	}
	answers := make([]model.QuizSubmissionAnswer, 0, len(payload.Answers))
	for _, a := range payload.Answers {
		answers = append(answers, model.QuizSubmissionAnswer{
			QuestionID: a.QuestionID,
			UserAnswer: a.UserAnswer,
			TimeSpent:  a.TimeSpent,
		})
	}
	return p.SubmissionRepo.Create(sub, answers)
}
