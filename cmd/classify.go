package main

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-cli/internal/classify"
	"github.com/sells-group/contact-cli/internal/ingest"
	"github.com/sells-group/contact-cli/internal/model"
)

var (
	classifyCSV    string
	classifyEnrich bool
)

// classifyRow is one line of classify output.
type classifyRow struct {
	Row    int      `json:"row"`
	Name   string   `json:"name"`
	Emails []string `json:"emails"`
	classify.Result
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the category of every email-bearing contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		if classifyCSV == "" {
			return eris.New("--csv is required")
		}
		if classifyEnrich {
			cfg.Classify.Enrich = true
		}
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		_, recs, err := ingest.Open(classifyCSV)
		if err != nil {
			return err
		}
		classifier, err := newClassifier(cfg)
		if err != nil {
			return eris.Wrap(err, "init classifier")
		}
		enricher, err := newEnricher(cfg)
		if err != nil {
			return err
		}

		rows, err := classifyRecords(cmd.Context(), classifier, enricher, recs)
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, r := range rows {
			if encErr := enc.Encode(r); encErr != nil {
				return eris.Wrap(encErr, "write output")
			}
		}
		return err
	},
}

// classifyRecords classifies the records that carry at least one usable
// email. Enrichment results are kept when the enricher fails part way.
func classifyRecords(ctx context.Context, c *classify.Classifier, e classify.Enricher, recs []model.Record) ([]classifyRow, error) {
	var (
		picked  []model.Record
		rows    []classifyRow
		results []classify.Result
	)
	for i, rec := range recs {
		emails := c.Emails(rec)
		if len(emails) == 0 {
			continue
		}
		addrs := make([]string, len(emails))
		for j, em := range emails {
			addrs[j] = em.Address
		}
		picked = append(picked, rec)
		results = append(results, c.Classify(rec))
		rows = append(rows, classifyRow{Row: i + 2, Name: classify.EnrichText(rec), Emails: addrs})
	}

	var err error
	if e != nil {
		var out []classify.Result
		out, err = classify.EnrichDefaults(ctx, e, picked, results)
		if out != nil {
			results = out
		}
	}
	for i := range rows {
		rows[i].Result = results[i]
	}
	return rows, err
}

func init() {
	classifyCmd.Flags().StringVar(&classifyCSV, "csv", "", "contact export to classify (.csv or .xlsx)")
	classifyCmd.Flags().BoolVar(&classifyEnrich, "enrich", false, "label unclassified contacts with Claude")
	rootCmd.AddCommand(classifyCmd)
}
