package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-cli/internal/classify"
	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/pipeline"
	"github.com/sells-group/contact-cli/internal/resilience"
	"github.com/sells-group/contact-cli/pkg/anthropic"
)

// newClassifier builds the classifier from the configured tables file, or
// the built-in tables when none is set.
func newClassifier(c *config.Config) (*classify.Classifier, error) {
	tables := classify.DefaultTables()
	if c.Classify.TablesPath != "" {
		t, err := classify.LoadTables(c.Classify.TablesPath)
		if err != nil {
			return nil, err
		}
		tables = t
	}
	return classify.New(tables,
		classify.WithAgentThreshold(c.Classify.AgentThreshold),
		classify.WithVendorThreshold(c.Classify.VendorThreshold),
	)
}

// newEnricher returns the Anthropic enricher, or nil when enrichment is off.
func newEnricher(c *config.Config) (classify.Enricher, error) {
	if !c.Classify.Enrich {
		return nil, nil
	}
	if c.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required for enrichment (CONTACTS_ANTHROPIC_KEY)")
	}
	client := anthropic.NewClient(c.Anthropic.Key)
	return classify.NewAnthropicEnricher(client, classify.LLMConfig{
		Model:             c.Anthropic.Model,
		MaxTokens:         int64(c.Anthropic.MaxTokens),
		BatchSize:         c.Anthropic.BatchSize,
		Concurrency:       c.Anthropic.Concurrency,
		RequestsPerSecond: c.Anthropic.RequestsPerSecond,
		Retry:             retryPolicy(c),
	}), nil
}

func retryPolicy(c *config.Config) resilience.Policy {
	return resilience.PolicyFromSettings(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs)
}

// newPipeline wires the classifier and optional enricher into a Pipeline.
func newPipeline(c *config.Config) (*pipeline.Pipeline, *classify.Classifier, error) {
	classifier, err := newClassifier(c)
	if err != nil {
		return nil, nil, eris.Wrap(err, "init classifier")
	}
	enricher, err := newEnricher(c)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(c, classifier, enricher)
	if err != nil {
		return nil, nil, err
	}
	return p, classifier, nil
}
