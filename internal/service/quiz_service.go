package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"epic_quiz_client/internal/cache"
	"epic_quiz_client/internal/config"
	"epic_quiz_client/internal/gateway"
	"epic_quiz_client/internal/model"
	"epic_quiz_client/internal/scoring"
	"epic_quiz_client/internal/session"
	"epic_quiz_client/internal/util"
	"epic_quiz_client/pkg/logger"
	"epic_quiz_client/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLoadSuperseded 旧的加载请求在返回前被新请求取代，结果丢弃
var ErrLoadSuperseded = errors.New("package load superseded by a newer request")

// QuizService 离线优先的会话编排：网关取数、缓存兜底、引擎推进、
// 计分后尽力提交。本地结果永远是用户可见的权威结果。
type QuizService struct {
	Gateway *gateway.Gateway
	Cache   *cache.Store
	Engine  *session.Engine
	Cfg     *config.Config

	mu        sync.Mutex
	loadToken string
}

func NewQuizService(gw *gateway.Gateway, store *cache.Store, engine *session.Engine, cfg *config.Config) *QuizService {
	return &QuizService{
		Gateway: gw,
		Cache:   store,
		Engine:  engine,
		Cfg:     cfg,
	}
}

// LoadEpics 在线成功则整表回写缓存并更新同步时间；
// 全部后端不可达时退回最后一份缓存列表。
func (s *QuizService) LoadEpics(ctx context.Context) ([]model.Epic, error) {
	epics, err := s.Gateway.ListEpics(ctx)
	if err == nil {
		s.Cache.CacheEpics(epics)
		s.Cache.UpdateLastSync()
		return epics, nil
	}

	if gateway.KindOf(err) == gateway.KindUnreachable {
		if cached := s.Cache.ListEpics(); len(cached) > 0 {
			logger.Log.Info("serving epic list from offline cache", zap.Error(err))
			return cached, nil
		}
	}
	return nil, err
}

// StartQuiz 拉取（或离线兜底）一个测验包并开始会话。
// 过期的异步结果按令牌丢弃：只有仍是最新请求的返回才会进入引擎。
func (s *QuizService) StartQuiz(ctx context.Context, epicID string, count int, filter gateway.Filters) (*model.QuizPackage, error) {
	token := uuid.New().String()
	s.mu.Lock()
	s.loadToken = token
	s.mu.Unlock()

	pkg, err := s.Gateway.GetPackage(ctx, epicID, count, filter)
	if err != nil {
		if gateway.KindOf(err) != gateway.KindUnreachable {
			return nil, err
		}
		pkg = s.Cache.GetPackage(epicID)
		if pkg == nil {
			return nil, err
		}
		logger.Log.Info("starting quiz from offline cache",
			zap.String("epic", epicID),
			zap.Time("downloaded_at", pkg.DownloadedAt))
	} else {
		// 在线成功：整包写穿缓存（网关自身从不落盘，由这里决定持久化）
		s.Cache.PutPackage(epicID, pkg)
		s.Cache.UpdateLastSync()
	}

	if len(pkg.Questions) == 0 {
		return nil, util.ErrEmptyPackage
	}

	// 令牌校验和载入持同一把锁：校验后、载入前不给过期结果留窗口
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadToken != token {
		return nil, ErrLoadSuperseded
	}
	if err := s.Engine.Load(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// StartBlockQuiz 按分块组卷（备用端原生支持），其余语义同 StartQuiz
func (s *QuizService) StartBlockQuiz(ctx context.Context, blockID string) (*model.QuizPackage, error) {
	token := uuid.New().String()
	s.mu.Lock()
	s.loadToken = token
	s.mu.Unlock()

	pkg, err := s.Gateway.GetBlockPackage(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if len(pkg.Questions) == 0 {
		return nil, util.ErrEmptyPackage
	}
	s.Cache.PutPackage(pkg.EpicID, pkg)
	s.Cache.UpdateLastSync()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadToken != token {
		return nil, ErrLoadSuperseded
	}
	if err := s.Engine.Load(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *QuizService) RecordAnswer(option int) error {
	return s.Engine.Answer(option)
}

func (s *QuizService) NextQuestion() {
	s.Engine.Advance()
}

func (s *QuizService) PreviousQuestion() {
	s.Engine.Retreat()
}

func (s *QuizService) Elapsed() time.Duration {
	return s.Engine.Tick()
}

// FinishQuiz 计分并尽力提交。提交失败只记日志和指标，本地结果
// 照常返回——离线优先契约的核心就在这条不对称上。
func (s *QuizService) FinishQuiz(ctx context.Context) (*model.Result, error) {
	result, err := s.Engine.Complete(scoring.Score)
	if err != nil {
		return nil, err
	}

	snap := s.Engine.Snapshot()
	payload := scoring.BuildSubmission(snap.Package, snap.Answers, result,
		s.Cfg.Client.DeviceType, s.Cfg.Client.AppVersion)

	if err := s.Gateway.SubmitQuiz(ctx, payload); err != nil {
		monitoring.SubmissionFailures.Inc()
		logger.Log.Warn("quiz submission failed, local result kept",
			zap.String("quiz", payload.QuizID),
			zap.Error(err))
	}
	return result, nil
}

// Resubmit 结果不可变但允许重复提交（服务端按 quizId 幂等）
func (s *QuizService) Resubmit(ctx context.Context) error {
	snap := s.Engine.Snapshot()
	if snap.Status != session.Completed || snap.Result == nil {
		return util.ErrSessionNotActive
	}
	payload := scoring.BuildSubmission(snap.Package, snap.Answers, snap.Result,
		s.Cfg.Client.DeviceType, s.Cfg.Client.AppVersion)
	return s.Gateway.SubmitQuiz(ctx, payload)
}

func (s *QuizService) Abandon() {
	s.mu.Lock()
	s.loadToken = ""
	s.mu.Unlock()
	s.Engine.Reset()
}

func (s *QuizService) GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error) {
	return s.Gateway.GetDeepDive(ctx, questionID)
}

func (s *QuizService) IsContentFresh() bool {
	return s.Cache.IsFresh(time.Duration(s.Cfg.Cache.MaxAgeHours) * time.Hour)
}

// RefreshContent 服务端内容变更只能整包重下，绝不原地修补。
// 重下失败时保留旧包（覆盖写只在成功后发生），离线内容不因刷新丢失。
func (s *QuizService) RefreshContent(ctx context.Context, epicIDs ...string) error {
	epics, err := s.Gateway.ListEpics(ctx)
	if err != nil {
		return err
	}
	s.Cache.CacheEpics(epics)

	listed := make(map[string]bool, len(epics))
	for _, e := range epics {
		listed[e.ID] = true
	}

	for _, id := range epicIDs {
		// 史诗已从权威列表下架：对应离线包一并失效
		if !listed[id] {
			s.Cache.RemovePackage(id)
			continue
		}
		pkg, err := s.Gateway.GetPackage(ctx, id, 10, gateway.Filters{})
		if err != nil {
			logger.Log.Warn("refresh: package re-download failed, keeping cached copy",
				zap.String("epic", id), zap.Error(err))
			continue
		}
		s.Cache.PutPackage(id, pkg)
	}
	s.Cache.UpdateLastSync()
	return nil
}
