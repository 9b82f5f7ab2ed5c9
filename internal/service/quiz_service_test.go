package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"epic_quiz_client/internal/cache"
	"epic_quiz_client/internal/config"
	"epic_quiz_client/internal/gateway"
	"epic_quiz_client/internal/model"
	"epic_quiz_client/internal/session"
	"epic_quiz_client/internal/util"
	"epic_quiz_client/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

var errOffline = errors.New("network is down")

// stubProvider 可脚本化的内容来源
type stubProvider struct {
	name        string
	epics       []model.Epic
	pkg         *model.QuizPackage
	err         error
	pkgErr      error // 仅组包失败（列表等仍成功）
	submitErr   error
	submits     int
	beforeBuild func() // 组包前回调，用于构造交错时序
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ListEpics(ctx context.Context) ([]model.Epic, error) {
	return s.epics, s.err
}

func (s *stubProvider) GetEpic(ctx context.Context, epicID string) (*model.Epic, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.epics[0], nil
}

func (s *stubProvider) BuildPackage(ctx context.Context, req gateway.PackageRequest) (*model.QuizPackage, error) {
	if s.beforeBuild != nil {
		hook := s.beforeBuild
		s.beforeBuild = nil
		hook()
	}
	if s.pkgErr != nil {
		return nil, s.pkgErr
	}
	return s.pkg, s.err
}

func (s *stubProvider) ListBlocks(ctx context.Context, epicID string) ([]model.Block, error) {
	return nil, s.err
}

func (s *stubProvider) RecommendedBlock(ctx context.Context, epicID string) (*model.Block, error) {
	return nil, s.err
}

func (s *stubProvider) BlockPackage(ctx context.Context, blockID string) (*model.QuizPackage, error) {
	return s.pkg, s.err
}

func (s *stubProvider) GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error) {
	return nil, s.err
}

func (s *stubProvider) SubmitQuiz(ctx context.Context, payload *model.SubmissionPayload) error {
	s.submits++
	if s.submitErr != nil {
		return s.submitErr
	}
	return s.err
}

func buildPackage(epicID string, n int) *model.QuizPackage {
	opts, _ := json.Marshal([]string{"A", "B", "C", "D"})
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            fmt.Sprintf("q%d", i),
			EpicID:        epicID,
			Options:       opts,
			CorrectAnswer: i % 4,
		}
	}
	return &model.QuizPackage{
		ID:           "pkg-1",
		EpicID:       epicID,
		Questions:    qs,
		Block:        &model.Block{ID: "b1", EpicID: epicID},
		DownloadedAt: time.Now(),
	}
}

func newTestService(t *testing.T, providers ...gateway.Provider) *QuizService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.CachedPackage{}, &model.CachedEpicList{}, &model.SyncMeta{}); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Cache.MaxAgeHours = 24
	cfg.Client.DeviceType = "test"
	cfg.Client.AppVersion = "0.0.1"

	return NewQuizService(gateway.New(providers...), cache.NewStore(db), session.NewEngine(), cfg)
}

func TestStartQuizOnlineWritesThroughCache(t *testing.T) {
	provider := &stubProvider{name: "primary", pkg: buildPackage("ramayana", 3)}
	s := newTestService(t, provider)

	pkg, err := s.StartQuiz(context.Background(), "ramayana", 3, gateway.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if pkg.ID != "pkg-1" {
		t.Errorf("package = %+v", pkg)
	}
	if s.Engine.Snapshot().Status != session.Active {
		t.Errorf("session not active after start")
	}
	if cached := s.Cache.GetPackage("ramayana"); cached == nil {
		t.Errorf("online success must write the package through to the offline cache")
	}
	if !s.IsContentFresh() {
		t.Errorf("last sync not updated on online start")
	}
}

func TestStartQuizFallsBackToCacheWhenUnreachable(t *testing.T) {
	provider := &stubProvider{name: "primary", err: errOffline}
	s := newTestService(t, provider)
	s.Cache.PutPackage("ramayana", buildPackage("ramayana", 4))

	pkg, err := s.StartQuiz(context.Background(), "ramayana", 4, gateway.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(pkg.Questions) != 4 {
		t.Errorf("cached package not served: %+v", pkg)
	}
	if s.Engine.Snapshot().Status != session.Active {
		t.Errorf("session must start from cached package while offline")
	}
}

func TestStartQuizUnreachableAndNoCache(t *testing.T) {
	provider := &stubProvider{name: "primary", err: errOffline}
	s := newTestService(t, provider)

	_, err := s.StartQuiz(context.Background(), "ramayana", 4, gateway.Filters{})
	if gateway.KindOf(err) != gateway.KindUnreachable {
		t.Fatalf("kind = %v, want unreachable", gateway.KindOf(err))
	}
	// 加载失败必须停留在 Idle，不留半成品状态
	if s.Engine.Snapshot().Status != session.Idle {
		t.Errorf("engine left non-idle after failed load")
	}
}

func TestStartQuizCacheFallbackOnlyForUnreachable(t *testing.T) {
	primary := &stubProvider{name: "primary", pkg: nil, err: errOffline}
	s := newTestService(t, primary)
	s.Cache.PutPackage("ramayana", buildPackage("ramayana", 2))

	// unreachable → 用缓存
	if _, err := s.StartQuiz(context.Background(), "ramayana", 2, gateway.Filters{}); err != nil {
		t.Fatalf("unreachable with cache should succeed: %v", err)
	}

	// invalid → 直接失败，不碰缓存
	if _, err := s.StartQuiz(context.Background(), "NOT-AN-ID", 2, gateway.Filters{}); gateway.KindOf(err) != gateway.KindInvalid {
		t.Errorf("invalid id must not fall back to cache")
	}
}

func TestStartQuizRejectsEmptyPackage(t *testing.T) {
	provider := &stubProvider{name: "primary", pkg: &model.QuizPackage{ID: "pkg-0", EpicID: "ramayana"}}
	s := newTestService(t, provider)

	_, err := s.StartQuiz(context.Background(), "ramayana", 5, gateway.Filters{})
	if !errors.Is(err, util.ErrEmptyPackage) {
		t.Fatalf("err = %v, want ErrEmptyPackage", err)
	}
	if s.Engine.Snapshot().Status != session.Idle {
		t.Errorf("zero-question package must never reach the engine")
	}
}

func TestFinishQuizSubmissionFailureKeepsLocalResult(t *testing.T) {
	provider := &stubProvider{name: "primary", pkg: buildPackage("ramayana", 2), submitErr: errOffline}
	s := newTestService(t, provider)

	if _, err := s.StartQuiz(context.Background(), "ramayana", 2, gateway.Filters{}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAnswer(0); err != nil {
		t.Fatal(err)
	}

	// 提交必然失败，但本地结果照常返回——离线优先契约
	result, err := s.FinishQuiz(context.Background())
	if err != nil {
		t.Fatalf("submission failure leaked to caller: %v", err)
	}
	if result == nil {
		t.Fatal("local result missing")
	}
	if provider.submits == 0 {
		t.Errorf("submission was never attempted")
	}
	if s.Engine.Snapshot().Status != session.Completed {
		t.Errorf("session not completed")
	}
}

func TestEndToEndScore(t *testing.T) {
	pkg := buildPackage("ramayana", 10)
	provider := &stubProvider{name: "primary", pkg: pkg}
	s := newTestService(t, provider)

	if _, err := s.StartQuiz(context.Background(), "ramayana", 10, gateway.Filters{}); err != nil {
		t.Fatal(err)
	}

	// 答满10题，恰好7对
	for i, q := range pkg.Questions {
		opt := q.CorrectAnswer
		if i >= 7 {
			opt = (q.CorrectAnswer + 1) % 4
		}
		if err := s.RecordAnswer(opt); err != nil {
			t.Fatal(err)
		}
		s.NextQuestion()
	}

	result, err := s.FinishQuiz(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Percentage != 70 {
		t.Errorf("percentage = %d, want 70", result.Percentage)
	}
	if len(result.CorrectIDs) != 7 {
		t.Errorf("correct answers = %d, want 7", len(result.CorrectIDs))
	}
	if result.Incorrect != 3 {
		t.Errorf("incorrect = %d, want 3", result.Incorrect)
	}
	if result.Tier != model.TierProficient {
		t.Errorf("tier = %s, want proficient", result.Tier)
	}
}

func TestResubmitRequiresCompletedSession(t *testing.T) {
	provider := &stubProvider{name: "primary", pkg: buildPackage("ramayana", 2)}
	s := newTestService(t, provider)

	if err := s.Resubmit(context.Background()); !errors.Is(err, util.ErrSessionNotActive) {
		t.Fatalf("resubmit without result: err = %v", err)
	}

	if _, err := s.StartQuiz(context.Background(), "ramayana", 2, gateway.Filters{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FinishQuiz(context.Background()); err != nil {
		t.Fatal(err)
	}

	provider.submits = 0
	if err := s.Resubmit(context.Background()); err != nil {
		t.Fatalf("resubmit after completion: %v", err)
	}
	if provider.submits != 1 {
		t.Errorf("submits = %d, want 1", provider.submits)
	}
}

func TestLoadEpicsOfflineFallback(t *testing.T) {
	provider := &stubProvider{name: "primary", err: errOffline}
	s := newTestService(t, provider)
	s.Cache.CacheEpics([]model.Epic{{ID: "ramayana", Title: "The Ramayana"}})

	epics, err := s.LoadEpics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(epics) != 1 || epics[0].ID != "ramayana" {
		t.Errorf("cached epics not served: %+v", epics)
	}
}

func TestLoadEpicsOnlineRefreshesCache(t *testing.T) {
	provider := &stubProvider{name: "primary", epics: []model.Epic{{ID: "ramayana"}, {ID: "mahabharata"}}}
	s := newTestService(t, provider)

	if _, err := s.LoadEpics(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Cache.ListEpics(); len(got) != 2 {
		t.Errorf("epic list not cached: %+v", got)
	}
	if !s.IsContentFresh() {
		t.Errorf("last sync not stamped")
	}
}

func TestRefreshKeepsCachedPackageOnDownloadFailure(t *testing.T) {
	provider := &stubProvider{
		name:   "primary",
		epics:  []model.Epic{{ID: "ramayana", Title: "The Ramayana"}},
		pkgErr: errOffline,
	}
	s := newTestService(t, provider)
	s.Cache.PutPackage("ramayana", buildPackage("ramayana", 4))

	if err := s.RefreshContent(context.Background(), "ramayana"); err != nil {
		t.Fatal(err)
	}
	// 重下失败绝不能让用户丢掉最后一份可用的离线包
	cached := s.Cache.GetPackage("ramayana")
	if cached == nil {
		t.Fatal("cached package lost after failed re-download")
	}
	if len(cached.Questions) != 4 {
		t.Errorf("cached package replaced: %+v", cached)
	}
}

func TestRefreshRemovesDelistedPackage(t *testing.T) {
	// 权威列表里已经没有这部史诗：对应离线包一并失效
	provider := &stubProvider{
		name:  "primary",
		epics: []model.Epic{{ID: "ramayana"}},
		pkg:   buildPackage("ramayana", 2),
	}
	s := newTestService(t, provider)
	s.Cache.PutPackage("odyssey", buildPackage("odyssey", 3))

	if err := s.RefreshContent(context.Background(), "odyssey"); err != nil {
		t.Fatal(err)
	}
	if s.Cache.GetPackage("odyssey") != nil {
		t.Error("delisted epic kept its offline package")
	}
}

func TestStartQuizStaleResultCannotLoadAfterNewer(t *testing.T) {
	older := buildPackage("ramayana", 2)
	newer := buildPackage("ramayana", 3)
	provider := &stubProvider{name: "primary", pkg: older}
	s := newTestService(t, provider)

	// 旧请求还在网关里时，新请求完整跑完并载入引擎
	var newerErr error
	provider.beforeBuild = func() {
		provider.pkg = newer
		_, newerErr = s.StartQuiz(context.Background(), "ramayana", 3, gateway.Filters{})
		provider.pkg = older
	}

	_, err := s.StartQuiz(context.Background(), "ramayana", 2, gateway.Filters{})
	if !errors.Is(err, ErrLoadSuperseded) {
		t.Fatalf("stale load: err = %v, want ErrLoadSuperseded", err)
	}
	if newerErr != nil {
		t.Fatal(newerErr)
	}

	// 引擎里必须是新包，旧结果不允许最后落地
	snap := s.Engine.Snapshot()
	if snap.Status != session.Active || snap.Package.QuestionCount() != 3 {
		t.Errorf("engine holds stale package: status=%v count=%d",
			snap.Status, snap.Package.QuestionCount())
	}
}

func TestAbandonResetsSession(t *testing.T) {
	provider := &stubProvider{name: "primary", pkg: buildPackage("ramayana", 2)}
	s := newTestService(t, provider)

	if _, err := s.StartQuiz(context.Background(), "ramayana", 2, gateway.Filters{}); err != nil {
		t.Fatal(err)
	}
	s.Abandon()
	if s.Engine.Snapshot().Status != session.Idle {
		t.Errorf("abandon must reset to idle")
	}
}
