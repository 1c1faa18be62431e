// Package pipeline runs one export session: shared-name expansion, duplicate
// resolution, classification, optional enrichment and export set assembly.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/classify"
	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/export"
	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resolve"
)

// PhaseResult records the outcome of one pipeline phase.
type PhaseResult struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}

// Result is the output of one session. On a collaborator failure Run still
// returns the Result computed so far.
type Result struct {
	SessionID       string                            `json:"session_id"`
	Resolved        []model.Record                    `json:"resolved"`
	Classifications []classify.Result                 `json:"classifications"`
	Stats           resolve.Stats                     `json:"stats"`
	Groups          []resolve.GroupSummary            `json:"groups,omitempty"`
	Categories      map[model.Category]int            `json:"categories"`
	Sets            map[export.SetName][]model.Record `json:"sets"`
	Phases          []PhaseResult                     `json:"phases"`
}

// Pipeline orchestrates a reconciliation session.
type Pipeline struct {
	resolver      *resolve.Resolver
	classifier    *classify.Classifier
	enricher      classify.Enricher
	categoryField string
}

// New creates a Pipeline. enricher may be nil, in which case records the
// classifier cannot place keep their default category.
func New(cfg *config.Config, classifier *classify.Classifier, enricher classify.Enricher) (*Pipeline, error) {
	if classifier == nil {
		return nil, eris.New("pipeline: classifier is required")
	}
	sel, err := resolve.SelectorByName(cfg.Resolve.MasterPolicy)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: master policy")
	}
	field := cfg.Classify.CategoryField
	if field == "" {
		field = model.ColCategory
	}
	return &Pipeline{
		resolver:      resolve.New(resolve.WithMasterSelector(sel)),
		classifier:    classifier,
		enricher:      enricher,
		categoryField: field,
	}, nil
}

// CategoryField returns the column the category is written to.
func (p *Pipeline) CategoryField() string { return p.categoryField }

// Run reconciles sources. The inputs are never modified.
func (p *Pipeline) Run(ctx context.Context, sources []model.Source) (*Result, error) {
	result := &Result{
		SessionID:  uuid.New().String(),
		Categories: make(map[model.Category]int),
	}
	log := zap.L().With(zap.String("session_id", result.SessionID))
	log.Info("pipeline: starting session", zap.Int("sources", len(sources)))

	if len(sources) == 0 {
		return result, eris.New("pipeline: no sources")
	}

	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		phase := PhaseResult{Name: name, Duration: time.Since(start).Milliseconds()}
		if err != nil {
			phase.Error = err.Error()
			log.Error("pipeline: phase failed", zap.String("phase", name), zap.Int64("duration_ms", phase.Duration), zap.Error(err))
		} else {
			log.Debug("pipeline: phase complete", zap.String("phase", name), zap.Int64("duration_ms", phase.Duration))
		}
		result.Phases = append(result.Phases, phase)
		return err
	}

	ordered := orderSources(sources)

	var corpus []model.Record
	_ = track("expand", func() error {
		for _, src := range ordered {
			for _, rec := range src.Records {
				corpus = append(corpus, identity.ExpandShared(rec)...)
			}
		}
		return nil
	})

	_ = track("resolve", func() error {
		res := p.resolver.Resolve(corpus)
		result.Resolved = res.Records
		result.Stats = res.Stats
		result.Groups = res.Groups
		return nil
	})

	_ = track("classify", func() error {
		result.Classifications = make([]classify.Result, len(result.Resolved))
		for i, rec := range result.Resolved {
			result.Classifications[i] = p.classifier.Classify(rec)
		}
		return nil
	})

	var enrichErr error
	if p.enricher != nil {
		enrichErr = track("enrich", func() error {
			out, err := classify.EnrichDefaults(ctx, p.enricher, result.Resolved, result.Classifications)
			if out != nil {
				result.Classifications = out
			}
			return err
		})
	}

	for i, rec := range result.Resolved {
		res := result.Classifications[i]
		result.Resolved[i] = classify.Apply(rec, res, p.categoryField)
		if rec.HasTag(model.TagDuplicate) {
			continue
		}
		cat, ok := model.ParseCategory(result.Resolved[i].Get(p.categoryField))
		if !ok {
			cat = res.Category
		}
		result.Categories[cat]++
	}

	_ = track("export", func() error {
		raw := p.classifySources(ordered)
		result.Sets = export.NewBuilder(result.Resolved, raw).BuildAll()
		return nil
	})

	fields := []zap.Field{
		zap.Int("total", result.Stats.Total),
		zap.Int("duplicate_groups", result.Stats.DuplicateGroups),
		zap.Int("duplicates", result.Stats.Duplicates),
		zap.Int("unique", result.Stats.Unique),
		zap.Int("unkeyed", result.Stats.Unkeyed),
	}
	for _, name := range export.SetNames {
		fields = append(fields, zap.Int("set_"+string(name), len(result.Sets[name])))
	}
	log.Info("pipeline: session complete", fields...)

	if enrichErr != nil {
		return result, eris.Wrap(enrichErr, "pipeline: enrich")
	}
	return result, nil
}

// classifySources returns copies of the sources whose records carry the
// scored category, so raw records admitted into an export set are labeled
// like resolved ones.
func (p *Pipeline) classifySources(sources []model.Source) []model.Source {
	out := make([]model.Source, len(sources))
	for i, src := range sources {
		recs := make([]model.Record, len(src.Records))
		for j, rec := range src.Records {
			recs[j] = classify.Apply(rec, p.classifier.Classify(rec), p.categoryField)
		}
		out[i] = src
		out[i].Records = recs
	}
	return out
}

func orderSources(sources []model.Source) []model.Source {
	ordered := append([]model.Source(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind.Rank() < ordered[j].Kind.Rank()
	})
	return ordered
}
