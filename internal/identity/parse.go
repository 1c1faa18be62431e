// Package identity parses free-text person and company names into structured
// identities and derives the normalized keys used to link records.
package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/contact-cli/internal/model"
)

// Branch names the decision-table branch a raw name is parsed by.
type Branch int

const (
	BranchEmpty Branch = iota
	BranchCompany
	BranchCommaForm
	BranchSpaceForm
)

func (b Branch) String() string {
	switch b {
	case BranchEmpty:
		return "empty"
	case BranchCompany:
		return "company"
	case BranchCommaForm:
		return "comma_form"
	case BranchSpaceForm:
		return "space_form"
	default:
		return "unknown"
	}
}

// companyKeywords are business-entity words. Matched as whole words (or word
// sequences) against the lowercased, punctuation-split name.
var companyKeywords = []string{
	"llc", "inc", "incorporated", "corp", "corporation", "co", "company",
	"ltd", "limited", "lp", "llp", "pllc", "pc", "plc",
	"realty", "realtors", "properties", "property", "homes", "real estate",
	"holdings", "trust", "partners", "partnership", "group", "associates",
	"investments", "capital", "ventures", "enterprises", "management",
	"services", "solutions", "bank", "mortgage", "lending", "title", "escrow",
	"insurance", "team", "foundation", "church", "estate of",
}

type branch struct {
	name  Branch
	match func(raw string) bool
	parse func(raw string) model.Identity
}

// branches is evaluated in order; the first match parses the name.
var branches = []branch{
	{BranchEmpty, func(raw string) bool { return raw == "" }, parseEmpty},
	{BranchCompany, IsCompany, parseCompany},
	{BranchCommaForm, func(raw string) bool { return strings.Contains(raw, ",") }, parseCommaForm},
	{BranchSpaceForm, func(string) bool { return true }, parseSpaceForm},
}

// Parse turns a raw name into an Identity.
func Parse(raw string) model.Identity {
	raw = strings.TrimSpace(raw)
	for _, b := range branches {
		if b.match(raw) {
			return b.parse(raw)
		}
	}
	return parseEmpty(raw)
}

// Classify reports which branch Parse would take for raw.
func Classify(raw string) Branch {
	raw = strings.TrimSpace(raw)
	for _, b := range branches {
		if b.match(raw) {
			return b.name
		}
	}
	return BranchEmpty
}

// IsCompany reports whether raw names a business rather than a person: it
// contains a business-entity keyword, or it has no comma and more than two
// tokens that are not bare initials.
func IsCompany(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if hasCompanyKeyword(raw) {
		return true
	}
	if strings.Contains(raw, ",") {
		return false
	}
	substantive := 0
	for _, tok := range strings.Fields(raw) {
		if !isInitial(tok) {
			substantive++
		}
	}
	return substantive > 2
}

func hasCompanyKeyword(raw string) bool {
	lower := strings.ToLower(raw)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Dotted abbreviations ("L.L.C.") collapse to a single compact token.
	var compact []string
	for _, tok := range strings.Fields(lower) {
		if c := stripNonAlnum(tok); c != "" {
			compact = append(compact, c)
		}
	}
	padded := " " + strings.Join(words, " ") + " "
	paddedCompact := " " + strings.Join(compact, " ") + " "
	for _, kw := range companyKeywords {
		needle := " " + kw + " "
		if strings.Contains(padded, needle) || strings.Contains(paddedCompact, needle) {
			return true
		}
	}
	return false
}

func parseEmpty(string) model.Identity {
	return model.Identity{}
}

func parseCompany(raw string) model.Identity {
	return newIdentity(TitleCase(raw), "", true)
}

// parseCommaForm handles "Last, First [Middle...]". A leading bare initial
// is skipped in favor of the first full given name that follows it.
func parseCommaForm(raw string) model.Identity {
	idx := strings.Index(raw, ",")
	lastPart := strings.TrimSpace(raw[:idx])
	firstPart := strings.ReplaceAll(raw[idx+1:], ",", " ")

	tokens := strings.Fields(firstPart)
	if len(tokens) == 0 {
		return newIdentity("", TitleCase(lastPart), false)
	}

	chosen := tokens[0]
	if isInitial(tokens[0]) && len(tokens) > 1 {
		for _, tok := range tokens[1:] {
			if utf8.RuneCountInString(tok) > 1 && !strings.HasSuffix(tok, ".") {
				chosen = tok
				break
			}
		}
	}
	return newIdentity(TitleCase(chosen), TitleCase(lastPart), false)
}

// parseSpaceForm handles "First [Middle...] Last". Middle tokens are
// discarded; a trailing bare initial falls back to the token before it.
func parseSpaceForm(raw string) model.Identity {
	tokens := strings.Fields(raw)
	if len(tokens) == 1 {
		return newIdentity(TitleCase(tokens[0]), "", false)
	}

	first := TitleCase(tokens[0])
	lastTok := tokens[len(tokens)-1]
	if !isInitial(lastTok) {
		return newIdentity(first, TitleCase(lastTok), false)
	}
	if len(tokens) >= 3 {
		return newIdentity(first, TitleCase(tokens[len(tokens)-2]), false)
	}
	return newIdentity(first, "", false)
}

func newIdentity(first, last string, company bool) model.Identity {
	if company {
		last = ""
	}
	return model.Identity{
		FirstName: first,
		LastName:  last,
		IsCompany: company,
		IsValid:   first != "",
	}
}

// isInitial reports whether tok is a bare initial: one character, or two
// characters ending in a period ("J.").
func isInitial(tok string) bool {
	n := utf8.RuneCountInString(tok)
	return n == 1 || (n == 2 && strings.HasSuffix(tok, "."))
}

func stripNonAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
