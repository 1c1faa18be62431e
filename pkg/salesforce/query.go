package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Contact represents a Salesforce Contact record.
type Contact struct {
	ID        string `json:"Id" salesforce:"Id"`
	FirstName string `json:"FirstName" salesforce:"FirstName"`
	LastName  string `json:"LastName" salesforce:"LastName"`
	Email     string `json:"Email" salesforce:"Email"`
	Phone     string `json:"Phone" salesforce:"Phone"`
}

// contactFields are the SOQL fields selected for Contact queries.
var contactFields = []string{"Id", "FirstName", "LastName", "Email", "Phone"}

// emailQueryChunk bounds the size of each Email IN (...) clause.
const emailQueryChunk = 100

// FindContactsByEmail returns existing contacts keyed by lowercased email.
// When several contacts share an email the first returned wins.
func FindContactsByEmail(ctx context.Context, c Client, emails []string) (map[string]Contact, error) {
	found := make(map[string]Contact)
	uniq := uniqueEmails(emails)

	for start := 0; start < len(uniq); start += emailQueryChunk {
		end := min(start+emailQueryChunk, len(uniq))
		quoted := make([]string, 0, end-start)
		for _, e := range uniq[start:end] {
			quoted = append(quoted, "'"+escapeSoql(e)+"'")
		}
		soql := fmt.Sprintf(
			"SELECT %s FROM Contact WHERE Email IN (%s)",
			strings.Join(contactFields, ", "),
			strings.Join(quoted, ", "),
		)

		var contacts []Contact
		if err := c.Query(ctx, soql, &contacts); err != nil {
			return found, eris.Wrap(err, fmt.Sprintf("sf: find contacts by email batch %d-%d", start, end))
		}
		for _, ct := range contacts {
			key := strings.ToLower(strings.TrimSpace(ct.Email))
			if _, ok := found[key]; !ok && key != "" {
				found[key] = ct
			}
		}
	}
	return found, nil
}

func uniqueEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	var out []string
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

var soqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	return soqlEscaper.Replace(s)
}
