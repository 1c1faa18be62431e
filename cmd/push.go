package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/classify"
	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/ingest"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/pkg/salesforce"
)

var (
	pushCSV    string
	pushDryRun bool
)

// pushSummary reports what a push did, or would do on a dry run.
type pushSummary struct {
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	DryRun   bool     `json:"dry_run"`
}

// contactRow is one export record mapped to Contact fields.
type contactRow struct {
	email  string
	fields map[string]any
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upsert an export set into Salesforce as Contacts",
	Long:  "Maps an export CSV onto Salesforce Contact fields. Contacts whose email already exists are updated; the rest are inserted in 200-record collections.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushCSV == "" {
			return eris.New("--csv is required")
		}
		if !pushDryRun {
			if err := cfg.Validate("push"); err != nil {
				return err
			}
		}

		_, recs, err := ingest.Open(pushCSV)
		if err != nil {
			return err
		}
		classifier, err := newClassifier(cfg)
		if err != nil {
			return eris.Wrap(err, "init classifier")
		}
		rows, skipped := mapContacts(recs, classifier, cfg.Classify.CategoryField, cfg.Salesforce.ContactTagField)

		var summary pushSummary
		if pushDryRun {
			summary = pushSummary{Total: len(recs), Inserted: len(rows), Skipped: skipped, DryRun: true}
		} else {
			client, err := salesforce.Connect(salesforce.JWTCreds{
				LoginURL: cfg.Salesforce.LoginURL,
				Username: cfg.Salesforce.Username,
				ClientID: cfg.Salesforce.ClientID,
				KeyPath:  cfg.Salesforce.KeyPath,
			}, salesforce.WithRateLimit(cfg.Salesforce.RequestsPerSecond))
			if err != nil {
				return err
			}
			summary, err = pushContacts(cmd.Context(), client, rows)
			summary.Total = len(recs)
			summary.Skipped = skipped
			if err != nil {
				_ = json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
				return err
			}
		}

		zap.L().Info("push complete",
			zap.Int("inserted", summary.Inserted),
			zap.Int("updated", summary.Updated),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
			zap.Bool("dry_run", summary.DryRun),
		)
		return eris.Wrap(json.NewEncoder(cmd.OutOrStdout()).Encode(summary), "write output")
	},
}

// mapContacts maps records onto Contact fields. Duplicate-tagged records and
// records without a usable last name are skipped.
func mapContacts(recs []model.Record, c *classify.Classifier, categoryField, noteField string) ([]contactRow, int) {
	var (
		rows    []contactRow
		skipped int
	)
	for _, rec := range recs {
		row, ok := contactFor(rec, c, categoryField, noteField)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

func contactFor(rec model.Record, c *classify.Classifier, categoryField, noteField string) (contactRow, bool) {
	if rec.HasTag(model.TagDuplicate) {
		return contactRow{}, false
	}
	id := identity.FromRecord(rec)
	if !id.IsValid {
		return contactRow{}, false
	}

	fields := map[string]any{}
	switch {
	case id.IsCompany:
		fields["LastName"] = id.FirstName
	case id.LastName == "":
		return contactRow{}, false
	default:
		fields["FirstName"] = id.FirstName
		fields["LastName"] = id.LastName
	}

	var row contactRow
	if emails := c.Emails(rec); len(emails) > 0 {
		row.email = emails[0].Address
		fields["Email"] = row.email
	}
	if phone := rec.First(model.PhoneFields); phone != "" {
		fields["Phone"] = phone
	}
	if noteField != "" {
		var notes []string
		if cat := rec.Get(categoryField); cat != "" {
			notes = append(notes, "Category: "+cat)
		}
		if tags := model.JoinTags(rec.Tags()); tags != "" {
			notes = append(notes, "Tags: "+tags)
		}
		if rec.HasChanges() {
			notes = append(notes, "Changes: "+rec.Changes())
		}
		if len(notes) > 0 {
			fields[noteField] = strings.Join(notes, "\n")
		}
	}
	row.fields = fields
	return row, true
}

// pushContacts updates contacts whose email already exists in Salesforce and
// inserts the rest.
func pushContacts(ctx context.Context, client salesforce.Client, rows []contactRow) (pushSummary, error) {
	var summary pushSummary

	emails := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.email != "" {
			emails = append(emails, r.email)
		}
	}
	existing, err := salesforce.FindContactsByEmail(ctx, client, emails)
	if err != nil {
		return summary, err
	}

	var (
		updates []salesforce.ContactUpdate
		inserts []map[string]any
	)
	for _, r := range rows {
		if ct, ok := existing[r.email]; ok && r.email != "" {
			updates = append(updates, salesforce.ContactUpdate{ID: ct.ID, Fields: r.fields})
			continue
		}
		inserts = append(inserts, r.fields)
	}

	updated, err := salesforce.BulkUpdateContacts(ctx, client, updates)
	tally(&summary, updated, &summary.Updated)
	if err != nil {
		return summary, err
	}
	inserted, err := salesforce.BulkInsertContacts(ctx, client, inserts)
	tally(&summary, inserted, &summary.Inserted)
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func tally(s *pushSummary, results []salesforce.CollectionResult, ok *int) {
	failed := salesforce.Failures(results)
	*ok += len(results) - len(failed)
	s.Failed += len(failed)
	for _, f := range failed {
		s.Errors = append(s.Errors, strings.Join(f.Errors, "; "))
	}
}

func init() {
	pushCmd.Flags().StringVar(&pushCSV, "csv", "", "export set CSV to push")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "map records and report without calling Salesforce")
	rootCmd.AddCommand(pushCmd)
}
