package identity

import (
	"fmt"
	"strings"

	"github.com/sells-group/contact-cli/internal/model"
)

// FromRecord derives the Identity of a record. Separate first/last columns
// are preferred; a single populated name column is parsed; otherwise the
// combined name field, then the company field, is parsed. Missing columns
// read as empty.
func FromRecord(rec model.Record) model.Identity {
	first := rec.First(model.FirstNameFields)
	last := rec.First(model.LastNameFields)

	switch {
	case first != "" && last != "":
		if hasCompanyKeyword(first + " " + last) {
			return Parse(first + " " + last)
		}
		return newIdentity(TitleCase(first), TitleCase(last), false)
	case first != "":
		return Parse(first)
	case last != "":
		return Parse(last)
	}

	if name := rec.First(model.NameFields); name != "" {
		return Parse(name)
	}
	return Parse(rec.First(model.CompanyFields))
}

// SplitShared pre-splits a shared-surname row such as
// "Rhodes, r Kent & Marsha J" into one "<last>, <given>" string per person.
// Anything else, including company names, is returned unchanged as a single
// element.
func SplitShared(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || IsCompany(raw) {
		return []string{raw}
	}
	idx := strings.Index(raw, ",")
	if idx < 0 || !strings.Contains(raw[idx+1:], "&") {
		return []string{raw}
	}

	lastPart := strings.TrimSpace(raw[:idx])
	var out []string
	for _, cand := range strings.Split(raw[idx+1:], "&") {
		if cand = strings.TrimSpace(cand); cand != "" {
			out = append(out, lastPart+", "+cand)
		}
	}
	if len(out) < 2 {
		return []string{raw}
	}
	return out
}

// ParseAll parses every person named by raw.
func ParseAll(raw string) []model.Identity {
	parts := SplitShared(raw)
	out := make([]model.Identity, len(parts))
	for i, p := range parts {
		out[i] = Parse(p)
	}
	return out
}

// ExpandShared returns one record per person in a shared-surname row, each a
// copy with first/last name columns set. The combined name is read from the
// name field, or rebuilt as "<last>, <first>" when the first-name column
// itself holds several given names joined by "&".
func ExpandShared(rec model.Record) []model.Record {
	raw := sharedName(rec)
	if raw == "" {
		return []model.Record{rec}
	}
	parts := SplitShared(raw)
	if len(parts) < 2 {
		return []model.Record{rec}
	}

	firstCol := rec.Column(model.FirstNameFields, model.ColFirst)
	lastCol := rec.Column(model.LastNameFields, model.ColLast)
	note := fmt.Sprintf("Split from shared name %q", raw)

	out := make([]model.Record, 0, len(parts))
	for _, p := range parts {
		id := Parse(p)
		r := rec.Clone()
		r[firstCol] = id.FirstName
		r[lastCol] = id.LastName
		out = append(out, r.WithNote(note))
	}
	return out
}

func sharedName(rec model.Record) string {
	first := rec.First(model.FirstNameFields)
	last := rec.First(model.LastNameFields)
	if first != "" && last != "" {
		if strings.Contains(first, "&") {
			return last + ", " + first
		}
		return ""
	}
	if first != "" || last != "" {
		return ""
	}
	return rec.First(model.NameFields)
}
