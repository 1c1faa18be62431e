package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/export"
	"github.com/sells-group/contact-cli/internal/ingest"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/pipeline"
)

var (
	reconcileCRM      string
	reconcilePhone    string
	reconcileMLS      string
	reconcileSet      string
	reconcileOut      string
	reconcileDominant string
	reconcileEnrich   bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Merge source exports and write export sets",
	Long:  "Reads the CRM, phone and MLS exports, resolves duplicate people, classifies every contact and writes the chosen export set as CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if reconcileSet != "" {
			cfg.Export.Set = reconcileSet
		}
		if reconcileOut != "" {
			cfg.Export.OutputDir = reconcileOut
		}
		if reconcileDominant != "" {
			cfg.Export.DominantSource = reconcileDominant
		}
		if reconcileEnrich {
			cfg.Classify.Enrich = true
		}
		if err := cfg.Validate("reconcile"); err != nil {
			return err
		}

		sources, err := ingest.LoadAll(ctx, []ingest.SourceSpec{
			{Kind: model.SourceCRM, Path: reconcileCRM},
			{Kind: model.SourcePhone, Path: reconcilePhone},
			{Kind: model.SourceMLS, Path: reconcileMLS},
		})
		if err != nil {
			return err
		}

		p, _, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		result, runErr := p.Run(ctx, sources)
		if result == nil {
			return runErr
		}

		written, err := writeSets(cfg, result, sources, p.CategoryField())
		if err != nil {
			return err
		}
		zap.L().Info("reconcile complete",
			zap.String("session_id", result.SessionID),
			zap.Strings("files", written),
			zap.Int("duplicate_groups", result.Stats.DuplicateGroups),
			zap.Int("duplicates", result.Stats.Duplicates),
		)
		// Sets built before an enrichment failure are still written.
		return runErr
	},
}

// selectedSets maps export.set onto the sets to write.
func selectedSets(set string) ([]export.SetName, error) {
	if set == config.AllSets {
		return export.SetNames, nil
	}
	name, err := export.ParseSet(set)
	if err != nil {
		return nil, err
	}
	return []export.SetName{name}, nil
}

// writeSets writes each selected set to <output_dir>/<set>.csv and returns
// the paths written.
func writeSets(c *config.Config, result *pipeline.Result, sources []model.Source, categoryField string) ([]string, error) {
	sets, err := selectedSets(c.Export.Set)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Export.OutputDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "create output dir")
	}

	header := ingest.OutputHeader(sources, model.SourceKind(c.Export.DominantSource), categoryField)
	var written []string
	for _, name := range sets {
		path := filepath.Join(c.Export.OutputDir, string(name)+".csv")
		if err := writeCSVFile(path, header, result.Sets[name]); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSVFile(path string, header []string, recs []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := ingest.WriteCSV(f, header, recs); err != nil {
		f.Close()
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileCRM, "crm", "", "CRM export (.csv or .xlsx)")
	reconcileCmd.Flags().StringVar(&reconcilePhone, "phone", "", "phone contacts export (.csv)")
	reconcileCmd.Flags().StringVar(&reconcileMLS, "mls", "", "MLS closings export (.csv or .xlsx)")
	reconcileCmd.Flags().StringVar(&reconcileSet, "set", "", "export set to write, or all-sets (default from config)")
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "", "output directory (default from config)")
	reconcileCmd.Flags().StringVar(&reconcileDominant, "dominant", "", "source whose columns the output uses: crm, phone or mls")
	reconcileCmd.Flags().BoolVar(&reconcileEnrich, "enrich", false, "label unclassified contacts with Claude")
	rootCmd.AddCommand(reconcileCmd)
}
