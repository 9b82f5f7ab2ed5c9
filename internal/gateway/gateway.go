package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"epic_quiz_client/internal/model"
	"epic_quiz_client/internal/util"
	"epic_quiz_client/pkg/logger"
	"epic_quiz_client/pkg/monitoring"
	"epic_quiz_client/pkg/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const epicListKey = "epic_quiz:epic_list"

// Gateway 按固定优先级从多个内容来源解析数据。传输层错误在这里
// 全部吸收并转换为带分类的 *Error，绝不把原始异常抛给会话层。
// 网关本身不写离线缓存，是否持久化由调用方决定。
type Gateway struct {
	Providers   []Provider
	Redis       *redis.Client // 可选的史诗列表热缓存，nil 时关闭
	EpicListTTL time.Duration
}

func New(providers ...Provider) *Gateway {
	return &Gateway{Providers: providers, EpicListTTL: 5 * time.Minute}
}

// attempt 顺序尝试每个来源：前一个完全结束后才尝试下一个。
// NotFound / Invalid 是权威应答，立刻终止；其余失败继续回退。
func (g *Gateway) attempt(ctx context.Context, op string, call func(p Provider) error) error {
	ctx, span := tracing.Tracer.Start(ctx, "gateway."+op)
	defer span.End()

	if len(g.Providers) == 0 {
		return unreachableErr(op, "no content sources configured", nil)
	}

	var lastErr error
	for i, p := range g.Providers {
		err := call(p)
		if err == nil {
			monitoring.GatewayAttempts.WithLabelValues(op, p.Name(), "success").Inc()
			span.SetAttributes(attribute.String("source", p.Name()))
			if i > 0 {
				// 降级成功：对用户不可见，只记录
				monitoring.DegradedServes.WithLabelValues(op).Inc()
				logger.Log.Info("gateway degraded serve",
					zap.String("op", op),
					zap.String("source", p.Name()),
					zap.NamedError("primary_error", lastErr))
			}
			return nil
		}

		if errors.Is(err, errNotSupported) {
			monitoring.GatewayAttempts.WithLabelValues(op, p.Name(), "unsupported").Inc()
			lastErr = err
			continue
		}

		var ge *Error
		if errors.As(err, &ge) && (ge.Kind == KindNotFound || ge.Kind == KindInvalid) {
			monitoring.GatewayAttempts.WithLabelValues(op, p.Name(), string(ge.Kind)).Inc()
			return ge
		}

		monitoring.GatewayAttempts.WithLabelValues(op, p.Name(), "failure").Inc()
		logger.Log.Warn("gateway source failed",
			zap.String("op", op),
			zap.String("source", p.Name()),
			zap.Error(err))
		lastErr = err
	}

	span.RecordError(lastErr)
	return unreachableErr(op, "content is temporarily unavailable, please try again", lastErr)
}

// ListEpics 列出当前可用的史诗。可选地经由 Redis 热缓存短路。
func (g *Gateway) ListEpics(ctx context.Context) ([]model.Epic, error) {
	if g.Redis != nil {
		if val, err := g.Redis.Get(ctx, epicListKey).Result(); err == nil {
			var epics []model.Epic
			if json.Unmarshal([]byte(val), &epics) == nil {
				return epics, nil
			}
		}
	}

	var epics []model.Epic
	err := g.attempt(ctx, "ListEpics", func(p Provider) error {
		got, err := p.ListEpics(ctx)
		if err != nil {
			return err
		}
		epics = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	if g.Redis != nil {
		if raw, err := json.Marshal(epics); err == nil {
			g.Redis.Set(ctx, epicListKey, raw, g.EpicListTTL)
		}
	}
	return epics, nil
}

func (g *Gateway) GetEpic(ctx context.Context, epicID string) (*model.Epic, error) {
	if !util.ValidEpicID(epicID) {
		return nil, invalidErr("GetEpic", fmt.Sprintf("unsupported epic id format: %q", epicID))
	}
	var epic *model.Epic
	err := g.attempt(ctx, "GetEpic", func(p Provider) error {
		got, err := p.GetEpic(ctx, epicID)
		if err != nil {
			return err
		}
		epic = got
		return nil
	})
	return epic, err
}

// GetPackage 组装一个离线测验包。主路径成功但缺少分块信息时，
// 按请求难度合成一个描述符以满足 UI 契约；合成结果必须带
// Synthesized 标记并记入审计日志，不得冒充服务端数据。
func (g *Gateway) GetPackage(ctx context.Context, epicID string, count int, filter Filters) (*model.QuizPackage, error) {
	if !util.ValidEpicID(epicID) {
		return nil, invalidErr("GetPackage", fmt.Sprintf("unsupported epic id format: %q", epicID))
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, invalidErr("GetPackage", fmt.Sprintf("unknown question category: %q", filter.Category))
	}
	if count <= 0 {
		count = 10
	}

	req := PackageRequest{EpicID: epicID, Count: count, Filter: filter}

	var pkg *model.QuizPackage
	var source string
	err := g.attempt(ctx, "GetPackage", func(p Provider) error {
		got, err := p.BuildPackage(ctx, req)
		if err != nil {
			return err
		}
		pkg = got
		source = p.Name()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pkg.Block == nil && source == "primary" {
		pkg.Block = g.synthesizeBlock(epicID, pkg.Meta.Difficulty)
	}
	return pkg, nil
}

func (g *Gateway) synthesizeBlock(epicID string, difficulty model.Difficulty) *model.Block {
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	block := &model.Block{
		ID:          uuid.New().String(),
		EpicID:      epicID,
		Name:        fmt.Sprintf("%s practice set", difficulty),
		Difficulty:  difficulty,
		Synthesized: true,
	}
	monitoring.SynthesizedBlocks.Inc()
	logger.Log.Info("synthesized block descriptor",
		zap.String("epic", epicID),
		zap.String("block", block.ID),
		zap.String("difficulty", string(difficulty)))
	return block
}

func (g *Gateway) ListBlocks(ctx context.Context, epicID string) ([]model.Block, error) {
	if !util.ValidEpicID(epicID) {
		return nil, invalidErr("ListBlocks", fmt.Sprintf("unsupported epic id format: %q", epicID))
	}
	var blocks []model.Block
	err := g.attempt(ctx, "ListBlocks", func(p Provider) error {
		got, err := p.ListBlocks(ctx, epicID)
		if err != nil {
			return err
		}
		blocks = got
		return nil
	})
	return blocks, err
}

func (g *Gateway) GetRecommendedBlock(ctx context.Context, epicID string) (*model.Block, error) {
	if !util.ValidEpicID(epicID) {
		return nil, invalidErr("GetRecommendedBlock", fmt.Sprintf("unsupported epic id format: %q", epicID))
	}
	var block *model.Block
	err := g.attempt(ctx, "GetRecommendedBlock", func(p Provider) error {
		got, err := p.RecommendedBlock(ctx, epicID)
		if err != nil {
			return err
		}
		block = got
		return nil
	})
	return block, err
}

func (g *Gateway) GetBlockPackage(ctx context.Context, blockID string) (*model.QuizPackage, error) {
	if blockID == "" {
		return nil, invalidErr("GetBlockPackage", "block id is required")
	}
	var pkg *model.QuizPackage
	err := g.attempt(ctx, "GetBlockPackage", func(p Provider) error {
		got, err := p.BlockPackage(ctx, blockID)
		if err != nil {
			return err
		}
		pkg = got
		return nil
	})
	return pkg, err
}

// GetDeepDive 深度内容缺失是正常的 NotFound 结果，不算系统故障
func (g *Gateway) GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error) {
	if questionID == "" {
		return nil, invalidErr("GetDeepDive", "question id is required")
	}
	var d *model.DeepDive
	err := g.attempt(ctx, "GetDeepDive", func(p Provider) error {
		got, err := p.GetDeepDive(ctx, questionID)
		if err != nil {
			return err
		}
		d = got
		return nil
	})
	return d, err
}

// SubmitQuiz 严格串行回退，避免同一份提交落进两个后端
func (g *Gateway) SubmitQuiz(ctx context.Context, payload *model.SubmissionPayload) error {
	if payload == nil || payload.QuizID == "" {
		return invalidErr("SubmitQuiz", "submission payload is incomplete")
	}
	return g.attempt(ctx, "SubmitQuiz", func(p Provider) error {
		return p.SubmitQuiz(ctx, payload)
	})
}
