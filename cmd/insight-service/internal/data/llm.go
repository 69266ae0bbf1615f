package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"supplysight/cmd/insight-service/internal/domain"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// 叙事模型的系统提示词：强制只返回 JSON 对象
const narrativeSystemPrompt = `You are a supply chain operations expert. Analyze the data and provide:
1. Overall performance summary
2. Main bottleneck
3. Root cause explanation
4. Top 3 operational recommendations.
Keep the response concise and professional.

You MUST respond with ONLY a valid JSON object in this exact format (no markdown, no extra text):
{
  "status": "Alert" or "Normal",
  "summary": "...",
  "bottleneck": "...",
  "root_cause": "...",
  "recommendations": ["...", "...", "..."]
}

Set status to 'Normal' only if there are no anomalies AND performance improved week-over-week. Otherwise set status to 'Alert'.`

// LLMConfig 叙事模型客户端配置
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration

	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	BreakerFailures    uint32
}

// NarrativeGenerator OpenAI 兼容的叙事生成客户端，带熔断保护
type NarrativeGenerator struct {
	cfg     LLMConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewNarrativeGenerator 创建叙事生成客户端
func NewNarrativeGenerator(cfg LLMConfig, logger *zap.Logger) *NarrativeGenerator {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "narrative-llm",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("narrative circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &NarrativeGenerator{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		log:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze 调用模型分析摘要并返回结构化结论
func (g *NarrativeGenerator) Analyze(ctx context.Context, digest string) (*domain.InsightResult, error) {
	if g.cfg.APIKey == "" {
		return nil, errors.New("llm api key is not configured")
	}

	raw, err := g.breaker.Execute(func() (interface{}, error) {
		return g.call(ctx, digest)
	})
	if err != nil {
		return nil, err
	}
	return extractInsight(raw.(string))
}

func (g *NarrativeGenerator) call(ctx context.Context, digest string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: narrativeSystemPrompt},
			{Role: "user", Content: "OPERATIONAL DATA:\n" + digest},
		},
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("malformed llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("llm response has no choices")
	}

	g.log.Debug("narrative llm call finished",
		zap.Duration("latency", time.Since(start)),
		zap.Int("status", resp.StatusCode),
	)
	return parsed.Choices[0].Message.Content, nil
}

// extractInsight 从模型输出里提取 JSON 对象。
// 兼容 markdown 代码块包裹与前后杂散文本。
func extractInsight(text string) (*domain.InsightResult, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no valid JSON found in llm response: %s", truncate(text, 200))
	}

	var result domain.InsightResult
	if err := json.Unmarshal([]byte(clean[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode llm JSON: %w", err)
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
