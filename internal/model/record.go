// Package model defines the record, identity, tag, and category types shared
// by the reconciliation engine.
package model

import (
	"sort"
	"strings"
)

// Record is one row of a contact export, keyed by source column name.
// Components treat a Record as immutable and produce copies when a field
// must change. A nil Record behaves as an empty one.
type Record map[string]string

// Canonical columns written by the engine.
const (
	ColTags     = "Tags"
	ColChanges  = "Changes Made"
	ColFirst    = "First Name"
	ColLast     = "Last Name"
	ColCategory = "Category"
)

// NoChanges is the sentinel "Changes Made" value meaning nothing was edited.
const NoChanges = "No changes"

// Ordered alias lists. The first non-empty alias wins.
var (
	FirstNameFields = []string{"First Name", "FirstName", "first_name", "Given Name"}
	LastNameFields  = []string{"Last Name", "LastName", "last_name", "Family Name", "Surname"}
	NameFields      = []string{"Name", "Full Name", "Contact Name", "Display Name", "List Agent Full Name"}
	CompanyFields   = []string{"Company", "Company Name", "Organization", "Organization Name", "Organization 1 - Name", "Brokerage", "List Office Name"}
	TagFields       = []string{"Tags", "Labels"}
	GroupFields     = []string{"Groups", "Group Membership", "Contact Type", "Category"}
	ChangesFields   = []string{"Changes Made"}
	CloseDateFields = []string{"Closed Date", "Close Date", "Closing Date"}
	EmailFields     = []string{
		"Email",
		"Primary Email",
		"Primary Personal Email",
		"Primary Work Email",
		"Personal Email",
		"Work Email",
		"Other Email",
		"Email 2",
		"Email 3",
		"E-mail Address",
		"E-mail 1 - Value",
		"E-mail 2 - Value",
		"E-mail 3 - Value",
		"List Agent Email",
	}
	PhoneFields = []string{"Phone", "Mobile Phone", "Mobile", "Cell", "Home Phone", "Work Phone", "Phone 1 - Value", "List Agent Direct Phone"}
)

// Alias families: indexes into FieldFamilies.
const (
	FamilyFirstName = iota
	FamilyLastName
	FamilyName
	FamilyCompany
	FamilyEmail
	FamilyPhone
	FamilyCloseDate
)

// FieldFamilies lists the alias lists that name one logical field, so a
// value read under one source's column can be written under another's.
var FieldFamilies = [][]string{
	FirstNameFields,
	LastNameFields,
	NameFields,
	CompanyFields,
	EmailFields,
	PhoneFields,
	CloseDateFields,
}

var familyOf = func() map[string]int {
	m := make(map[string]int)
	for i, fam := range FieldFamilies {
		for _, col := range fam {
			if _, ok := m[col]; !ok {
				m[col] = i
			}
		}
	}
	return m
}()

// FamilyIndex returns the FieldFamilies index col belongs to, or -1.
func FamilyIndex(col string) int {
	if i, ok := familyOf[col]; ok {
		return i
	}
	return -1
}

// Get returns the trimmed value of col, or "" when absent.
func (r Record) Get(col string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// First returns the first non-empty value among aliases.
func (r Record) First(aliases []string) string {
	v, _ := r.Lookup(aliases)
	return v
}

// Lookup returns the first non-empty value among aliases and the column it
// was read from.
func (r Record) Lookup(aliases []string) (string, string) {
	for _, a := range aliases {
		if v := r.Get(a); v != "" {
			return v, a
		}
	}
	return "", ""
}

// Column returns the first alias present on the record (even if empty),
// falling back to def. Used to write back into the source's own column.
func (r Record) Column(aliases []string, def string) string {
	for _, a := range aliases {
		if _, ok := r[a]; ok {
			return a
		}
	}
	return def
}

// Clone returns a shallow copy. Values are strings so the copy is independent.
func (r Record) Clone() Record {
	out := make(Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of r with col set to val.
func (r Record) With(col, val string) Record {
	out := r.Clone()
	out[col] = val
	return out
}

// Columns returns the record's column names in sorted order.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Filled counts columns with a non-blank value.
func (r Record) Filled() int {
	n := 0
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Tags returns the record's tag tokens.
func (r Record) Tags() []string {
	return SplitTags(r.First(TagFields))
}

// TagColumn is the column tags are read from and written to.
func (r Record) TagColumn() string {
	if _, col := r.Lookup(TagFields); col != "" {
		return col
	}
	return r.Column(TagFields, ColTags)
}

// HasTag reports whether the record's tag field carries tag.
func (r Record) HasTag(tag string) bool {
	return HasTag(r.First(TagFields), tag)
}

// WithTags returns a copy with the tag field replaced by tags.
func (r Record) WithTags(tags []string) Record {
	return r.With(r.TagColumn(), JoinTags(tags))
}

// Changes returns the record's "Changes Made" narrative.
func (r Record) Changes() string {
	return r.First(ChangesFields)
}

// HasChanges reports whether the record carries a real change note.
func (r Record) HasChanges() bool {
	c := r.Changes()
	return c != "" && !strings.EqualFold(c, NoChanges)
}

// WithNote returns a copy with note appended to "Changes Made". An empty
// field or the NoChanges sentinel is replaced outright.
func (r Record) WithNote(note string) Record {
	col := r.Column(ChangesFields, ColChanges)
	if !r.HasChanges() {
		return r.With(col, note)
	}
	return r.With(col, r.Changes()+"; "+note)
}

// IsAnniversary reports whether the record carries an anniversary marker:
// an anniversary or closed-date tag, or a populated close-date column.
func (r Record) IsAnniversary() bool {
	for _, t := range r.Tags() {
		l := strings.ToLower(t)
		if strings.Contains(l, "anniversary") ||
			strings.Contains(l, "closed date") ||
			strings.Contains(l, "closed-date") {
			return true
		}
	}
	return r.First(CloseDateFields) != ""
}
