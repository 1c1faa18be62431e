package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-cli/internal/model"
)

// SourceSpec names one input file.
type SourceSpec struct {
	Name string
	Kind model.SourceKind
	Path string
}

// Open reads a .csv, .txt or .xlsx export.
func Open(path string) ([]string, []model.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "ingest: open %s", path)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadAll reads every spec concurrently and returns the sources in fixed
// kind order (crm, phone, mls), keeping the given order within a kind.
// Specs with an empty path are skipped. At least one source is required.
func LoadAll(ctx context.Context, specs []SourceSpec) ([]model.Source, error) {
	var active []SourceSpec
	for _, s := range specs {
		if s.Path != "" {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, eris.New("ingest: no input files")
	}

	sources := make([]model.Source, len(active))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(model.SourceOrder))
	for i, spec := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "ingest: load cancelled")
			}
			header, recs, err := Open(spec.Path)
			if err != nil {
				return eris.Wrapf(err, "ingest: load %s source", spec.Kind)
			}
			name := spec.Name
			if name == "" {
				name = filepath.Base(spec.Path)
			}
			sources[i] = model.Source{Name: name, Kind: spec.Kind, Header: header, Records: recs}
			zap.L().Info("ingest: loaded source",
				zap.String("kind", string(spec.Kind)),
				zap.String("path", spec.Path),
				zap.Int("records", len(recs)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Kind.Rank() < sources[j].Kind.Rank()
	})
	return sources, nil
}
