package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resilience"
	"github.com/sells-group/contact-cli/pkg/anthropic"
)

const enrichSystemPrompt = `You label contacts exported from a real-estate agent's CRM.
Each input line is a company or person name. Choose exactly one label per line from:
Agent, Vendor, Lead, Active Client, Past Client, Other.
Agent means a real-estate agent, broker or brokerage. Vendor means a title company,
lender, inspector, insurer, appraiser or other service provider.
Reply with a JSON array of strings, one label per input line, in input order, and nothing else.`

// LLMConfig configures an AnthropicEnricher.
type LLMConfig struct {
	Model             string
	MaxTokens         int64
	BatchSize         int
	Concurrency       int
	RequestsPerSecond float64
	Retry             resilience.Policy
}

// AnthropicEnricher labels texts with a Claude model, several texts per
// request.
type AnthropicEnricher struct {
	client  anthropic.Client
	cfg     LLMConfig
	limiter *rate.Limiter

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// NewAnthropicEnricher creates an enricher. Zero config values take
// defaults: batch 50, concurrency 1, 1 request/second, 1024 max tokens.
func NewAnthropicEnricher(client anthropic.Client, cfg LLMConfig) *AnthropicEnricher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Retry.Retryable == nil {
		cfg.Retry.Retryable = retryableLLMError
	}
	if cfg.Retry.OnRetry == nil {
		cfg.Retry.OnRetry = resilience.RetryLogger("anthropic", "enrich")
	}
	return &AnthropicEnricher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Usage returns the tokens consumed so far.
func (e *AnthropicEnricher) Usage() anthropic.TokenUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}

// Enrich implements Enricher. Batches run concurrently up to the configured
// limit; on failure the labels of the leading run of completed batches are
// returned with the first error.
func (e *AnthropicEnricher) Enrich(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var batches [][]string
	for start := 0; start < len(texts); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(texts))
		batches = append(batches, texts[start:end])
	}

	results := make([][]string, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			labels, err := e.enrichBatch(gctx, batch)
			if err != nil {
				return eris.Wrapf(err, "classify: enrich batch %d", i)
			}
			results[i] = labels
			return nil
		})
	}
	err := g.Wait()

	var labels []string
	for _, r := range results {
		if r == nil {
			break
		}
		labels = append(labels, r...)
	}

	e.Usage().LogCost(e.cfg.Model, "enrich")
	return labels, err
}

func (e *AnthropicEnricher) enrichBatch(ctx context.Context, batch []string) ([]string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "classify: rate limit wait")
	}

	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      anthropic.CachedSystem(enrichSystemPrompt, "5m"),
		Messages:    []anthropic.Message{{Role: "user", Content: batchPrompt(batch)}},
		Temperature: &temp,
	}

	resp, err := resilience.DoVal(ctx, e.cfg.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.usage = e.usage.Add(resp.Usage)
	e.mu.Unlock()

	labels, err := parseLabels(resp.Text(), len(batch))
	if err != nil {
		zap.L().Debug("classify: unparseable enrichment reply", zap.String("stop_reason", resp.StopReason))
		return nil, err
	}
	return labels, nil
}

func batchPrompt(batch []string) string {
	var b strings.Builder
	for i, t := range batch {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(t, "\n", " "))
	}
	return b.String()
}

// parseLabels extracts the JSON array from a reply and checks its length.
// Labels are normalized to category names where recognized.
func parseLabels(text string, want int) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, eris.New("classify: enrichment reply contains no JSON array")
	}
	var labels []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &labels); err != nil {
		return nil, eris.Wrap(err, "classify: parse enrichment reply")
	}
	if len(labels) != want {
		return nil, eris.Errorf("classify: enrichment reply has %d labels, want %d", len(labels), want)
	}
	for i, l := range labels {
		if cat, ok := model.ParseCategory(l); ok {
			labels[i] = string(cat)
		}
	}
	return labels, nil
}

func retryableLLMError(err error) bool {
	return resilience.IsTransient(err) || resilience.IsTransientHTTPStatus(anthropic.StatusCode(err))
}
