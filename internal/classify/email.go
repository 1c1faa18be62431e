package classify

import (
	"strings"
	"unicode"

	"github.com/sells-group/contact-cli/internal/model"
)

// Email is a syntactically accepted address split at the @.
type Email struct {
	Address string `json:"address"`
	Local   string `json:"local"`
	Domain  string `json:"domain"`
}

// ParseEmail lowercases and trims raw and splits it into local part and
// domain. It rejects values without exactly one @, values containing
// whitespace, empty local parts, and domains shorter than 3 characters or
// without a dot.
func ParseEmail(raw string) (Email, bool) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if strings.Count(addr, "@") != 1 || strings.IndexFunc(addr, unicode.IsSpace) >= 0 {
		return Email{}, false
	}
	local, domain, _ := strings.Cut(addr, "@")
	if local == "" || len(domain) < 3 || !strings.Contains(domain, ".") {
		return Email{}, false
	}
	return Email{Address: addr, Local: local, Domain: domain}, true
}

// emailSeparators split multi-address cells. Phone exports join several
// addresses in one cell with " ::: ".
var emailSeparators = strings.NewReplacer(":::", ";", ",", ";")

// candidateEmails returns the raw address strings found in the record's
// email columns, in alias order.
func candidateEmails(rec model.Record) []string {
	var out []string
	for _, col := range model.EmailFields {
		v := rec.Get(col)
		if v == "" {
			continue
		}
		for _, part := range strings.Split(emailSeparators.Replace(v), ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
