package session

import (
	"sync"
	"time"

	"epic_quiz_client/internal/model"
	"epic_quiz_client/internal/util"
)

// ScoreFunc 由计分包注入，引擎自身不含计分逻辑
type ScoreFunc func(pkg *model.QuizPackage, answers map[string]model.AnswerRecord, totalTime int) model.Result

// Engine 持有当前会话状态并串行化所有变更（单写者约束）。
// 引擎不做任何网络或存储 I/O。
type Engine struct {
	mu    sync.Mutex
	state State
	Now   func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Load 载入一个新包并开始会话。空包在这里拒绝，状态保持不变。
// 已有会话会被新包覆盖（新的加载请求直接取代旧状态）。
func (e *Engine) Load(pkg *model.QuizPackage) error {
	if pkg == nil || len(pkg.Questions) == 0 {
		return util.ErrEmptyPackage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, LoadPackage{Package: pkg}, e.Now())
	return nil
}

// Answer 为当前题目记录选项；重复作答覆盖旧记录，不自动前进
func (e *Engine) Answer(option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != Active {
		return util.ErrSessionNotActive
	}
	q := e.state.Package.QuestionAt(e.state.Index)
	if q == nil {
		return util.ErrSessionNotActive
	}
	if option < 0 || option >= len(q.OptionList()) {
		return util.ErrInvalidOption
	}
	e.state = Reduce(e.state, RecordAnswer{Option: option}, e.Now())
	return nil
}

// Advance 最后一题上调用是 no-op，完成必须显式触发
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, Advance{}, e.Now())
}

func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, Retreat{}, e.Now())
}

// Tick 返回最新累计用时
func (e *Engine) Tick() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, Tick{}, e.Now())
	return e.state.Elapsed
}

// Complete 冻结会话、计分并转入 Completed。Idle 状态下非法。
func (e *Engine) Complete(score ScoreFunc) (*model.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != Active {
		return nil, util.ErrSessionNotActive
	}
	now := e.Now()
	total := int(now.Sub(e.state.StartedAt).Seconds())
	result := score(e.state.Package, e.state.Answers, total)
	e.state = Reduce(e.state, Complete{Result: &result}, now)
	return e.state.Result, nil
}

func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, Reset{}, e.Now())
}

// Snapshot 返回状态副本；Answers 为拷贝，调用方可安全读取
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.state
	snap.Answers = copyAnswers(e.state.Answers)
	return snap
}

// CurrentQuestion 非 Active 时返回 nil
func (e *Engine) CurrentQuestion() *model.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != Active {
		return nil
	}
	return e.state.Package.QuestionAt(e.state.Index)
}
