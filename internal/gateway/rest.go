package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"epic_quiz_client/internal/model"

	"golang.org/x/time/rate"
)

// envelope 备用 REST API 的统一响应包装
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RESTProvider 备用 REST API 客户端。请求走客户端限流器；
// 超时只依赖 http.Client，网关不再叠加截止时间。
type RESTProvider struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
	Now     func() time.Time
}

func NewRESTProvider(baseURL string, timeout time.Duration, maxRequests int, window time.Duration) *RESTProvider {
	r := rate.Every(window / time.Duration(maxRequests))
	return &RESTProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(r, maxRequests),
		Now:     time.Now,
	}
}

func (p *RESTProvider) Name() string { return "secondary" }

func (p *RESTProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := p.Limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if decErr := json.NewDecoder(resp.Body).Decode(&env); decErr != nil && resp.StatusCode < 400 {
		return decErr
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFoundErr(method+" "+path, firstNonEmpty(env.Message, env.Error, "not found"))
	case resp.StatusCode == http.StatusBadRequest:
		return invalidErr(method+" "+path, firstNonEmpty(env.Message, env.Error, "bad request"))
	case resp.StatusCode >= 400:
		return fmt.Errorf("secondary api status %d: %s", resp.StatusCode, firstNonEmpty(env.Message, env.Error))
	case !env.Success:
		return fmt.Errorf("secondary api error: %s", firstNonEmpty(env.Error, env.Message, "unknown"))
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p *RESTProvider) ListEpics(ctx context.Context) ([]model.Epic, error) {
	var epics []model.Epic
	if err := p.do(ctx, http.MethodGet, "/epics", nil, &epics); err != nil {
		return nil, err
	}
	return epics, nil
}

func (p *RESTProvider) GetEpic(ctx context.Context, epicID string) (*model.Epic, error) {
	var epic model.Epic
	if err := p.do(ctx, http.MethodGet, "/epics/"+url.PathEscape(epicID), nil, &epic); err != nil {
		return nil, err
	}
	return &epic, nil
}

// BuildPackage 备用端原生支持分块感知的组卷
func (p *RESTProvider) BuildPackage(ctx context.Context, req PackageRequest) (*model.QuizPackage, error) {
	q := url.Values{}
	q.Set("epicId", req.EpicID)
	q.Set("count", strconv.Itoa(req.Count))
	if req.Filter.Difficulty != "" {
		q.Set("difficulty", string(req.Filter.Difficulty))
	}
	if req.Filter.Category != "" {
		q.Set("category", string(req.Filter.Category))
	}
	if req.Filter.BlockID != "" {
		q.Set("blockId", req.Filter.BlockID)
	}

	var pkg model.QuizPackage
	if err := p.do(ctx, http.MethodGet, "/quiz?"+q.Encode(), nil, &pkg); err != nil {
		return nil, err
	}
	pkg.DownloadedAt = p.Now()
	return &pkg, nil
}

func (p *RESTProvider) ListBlocks(ctx context.Context, epicID string) ([]model.Block, error) {
	var blocks []model.Block
	if err := p.do(ctx, http.MethodGet, "/quiz/blocks/"+url.PathEscape(epicID), nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (p *RESTProvider) RecommendedBlock(ctx context.Context, epicID string) (*model.Block, error) {
	var block model.Block
	if err := p.do(ctx, http.MethodGet, "/quiz/blocks/"+url.PathEscape(epicID)+"/recommended", nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func (p *RESTProvider) BlockPackage(ctx context.Context, blockID string) (*model.QuizPackage, error) {
	var pkg model.QuizPackage
	if err := p.do(ctx, http.MethodGet, "/quiz/block/"+url.PathEscape(blockID), nil, &pkg); err != nil {
		return nil, err
	}
	pkg.DownloadedAt = p.Now()
	return &pkg, nil
}

func (p *RESTProvider) GetDeepDive(ctx context.Context, questionID string) (*model.DeepDive, error) {
	var d model.DeepDive
	if err := p.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(questionID)+"/deep-dive", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *RESTProvider) SubmitQuiz(ctx context.Context, payload *model.SubmissionPayload) error {
	return p.do(ctx, http.MethodPost, "/quiz/submit", payload, nil)
}
