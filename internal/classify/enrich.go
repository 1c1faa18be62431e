package classify

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/model"
)

// Enricher labels free-text company or name strings with a category. On
// success it returns exactly one label per input, in order. On failure it
// may return the labels of a completed prefix of texts alongside the error.
type Enricher interface {
	Enrich(ctx context.Context, texts []string) ([]string, error)
}

// EnrichText returns the string sent to an Enricher for rec: the company
// name when present, otherwise the person's name.
func EnrichText(rec model.Record) string {
	if c := rec.First(model.CompanyFields); c != "" {
		return c
	}
	if n := rec.First(model.NameFields); n != "" {
		return n
	}
	return strings.TrimSpace(rec.First(model.FirstNameFields) + " " + rec.First(model.LastNameFields))
}

// EnrichDefaults asks e to label every record whose result fell through to
// the default category. Duplicate-tagged records are skipped; their master
// carries their data. Recognized labels replace the default with source
// "enrich"; unrecognized labels are ignored. results is not modified.
//
// When e fails, labels it returned before failing are still applied and the
// partially enriched results are returned with the error.
func EnrichDefaults(ctx context.Context, e Enricher, recs []model.Record, results []Result) ([]Result, error) {
	out := append([]Result(nil), results...)
	if e == nil {
		return out, nil
	}

	var idx []int
	var texts []string
	for i, res := range results {
		if res.Source != SourceDefault || i >= len(recs) || recs[i].HasTag(model.TagDuplicate) {
			continue
		}
		if t := EnrichText(recs[i]); t != "" {
			idx = append(idx, i)
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return out, nil
	}

	labels, err := e.Enrich(ctx, texts)
	if err == nil && len(labels) != len(texts) {
		err = eris.Errorf("classify: enricher returned %d labels for %d inputs", len(labels), len(texts))
	}

	applied := 0
	for j := 0; j < len(labels) && j < len(idx); j++ {
		cat, ok := model.ParseCategory(labels[j])
		if !ok {
			continue
		}
		r := out[idx[j]]
		r.Category = cat
		r.Source = SourceEnrich
		r.Signals = append(append([]string(nil), r.Signals...), "enrich:"+labels[j])
		out[idx[j]] = r
		applied++
	}

	zap.L().Info("classify: enrichment complete",
		zap.Int("requested", len(texts)),
		zap.Int("labeled", len(labels)),
		zap.Int("applied", applied),
	)
	if err != nil {
		return out, eris.Wrap(err, "classify: enrich")
	}
	return out, nil
}
