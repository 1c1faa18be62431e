package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// ContactUpdate holds a contact ID and the fields to update.
type ContactUpdate struct {
	ID     string
	Fields map[string]any
}

// BulkInsertContacts splits records into batches of 200 (SF Collections API
// limit) and sends them via InsertCollection. On failure the results of the
// batches already sent are returned with the error.
func BulkInsertContacts(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	var allResults []CollectionResult
	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, "Contact", records[start:end])
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk insert contacts batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// BulkUpdateContacts splits updates into batches of 200 and sends them via
// UpdateCollection.
func BulkUpdateContacts(ctx context.Context, c Client, updates []ContactUpdate) ([]CollectionResult, error) {
	var allResults []CollectionResult
	for start := 0; start < len(updates); start += maxBatchSize {
		end := min(start+maxBatchSize, len(updates))
		batch := updates[start:end]

		records := make([]CollectionRecord, len(batch))
		for i, u := range batch {
			records[i] = CollectionRecord(u)
		}

		results, err := c.UpdateCollection(ctx, "Contact", records)
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk update contacts batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// Failures returns the failed results.
func Failures(results []CollectionResult) []CollectionResult {
	var out []CollectionResult
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
