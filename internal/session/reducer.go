package session

import (
	"time"

	"epic_quiz_client/internal/model"
)

type Status int

const (
	Idle Status = iota
	Active
	Completed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// State 一次作答会话的全部状态。归约器是纯函数，所有 I/O
// （取包、计分、提交）都在归约器之外。
type State struct {
	Status            Status
	Package           *model.QuizPackage
	Index             int
	Answers           map[string]model.AnswerRecord
	StartedAt         time.Time
	QuestionStartedAt time.Time
	Elapsed           time.Duration
	Result            *model.Result
}

type Action interface{ isAction() }

// LoadPackage 载入新包并开始会话，覆盖任何已有状态
type LoadPackage struct{ Package *model.QuizPackage }

// RecordAnswer 为当前题目记录（或覆盖）一个选项
type RecordAnswer struct{ Option int }

// Advance 前进一题；已在最后一题时为 no-op
type Advance struct{}

// Retreat 后退一题；已在第一题时为 no-op
type Retreat struct{}

// Tick 重算累计用时，可任意频率调用，无副作用
type Tick struct{}

// Complete 冻结会话并记录计分结果
type Complete struct{ Result *model.Result }

// Reset 放弃会话，回到空闲态
type Reset struct{}

func (LoadPackage) isAction()  {}
func (RecordAnswer) isAction() {}
func (Advance) isAction()      {}
func (Retreat) isAction()      {}
func (Tick) isAction()         {}
func (Complete) isAction()     {}
func (Reset) isAction()        {}

// Reduce 纯状态转移：state + action → new state。时间一律由调用方
// 注入，函数本身不读墙钟。
func Reduce(s State, a Action, now time.Time) State {
	switch act := a.(type) {
	case LoadPackage:
		if act.Package == nil || len(act.Package.Questions) == 0 {
			return s
		}
		return State{
			Status:            Active,
			Package:           act.Package,
			Index:             0,
			Answers:           make(map[string]model.AnswerRecord),
			StartedAt:         now,
			QuestionStartedAt: now,
		}

	case RecordAnswer:
		if s.Status != Active {
			return s
		}
		q := s.Package.QuestionAt(s.Index)
		if q == nil {
			return s
		}
		next := s
		next.Answers = copyAnswers(s.Answers)
		// 覆盖式记录：用时取整到秒，重答覆盖而非累加
		next.Answers[q.ID] = model.AnswerRecord{
			QuestionID:     q.ID,
			SelectedOption: act.Option,
			TimeSpent:      int(now.Sub(s.QuestionStartedAt).Seconds()),
		}
		return next

	case Advance:
		if s.Status != Active || s.Index >= len(s.Package.Questions)-1 {
			return s
		}
		next := s
		next.Index++
		next.QuestionStartedAt = now
		return next

	case Retreat:
		if s.Status != Active || s.Index <= 0 {
			return s
		}
		next := s
		next.Index--
		next.QuestionStartedAt = now
		return next

	case Tick:
		if s.Status != Active {
			return s
		}
		next := s
		next.Elapsed = now.Sub(s.StartedAt)
		return next

	case Complete:
		if s.Status != Active {
			return s
		}
		next := s
		next.Status = Completed
		next.Elapsed = now.Sub(s.StartedAt)
		next.Result = act.Result
		return next

	case Reset:
		return State{}
	}
	return s
}

func copyAnswers(in map[string]model.AnswerRecord) map[string]model.AnswerRecord {
	out := make(map[string]model.AnswerRecord, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
