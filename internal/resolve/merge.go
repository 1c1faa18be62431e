package resolve

import (
	"github.com/sells-group/contact-cli/internal/model"
)

// protectedFields are never filled from a duplicate: tags are unioned
// separately and change notes describe the record they were written on.
var protectedFields = func() map[string]bool {
	m := make(map[string]bool)
	for _, f := range model.TagFields {
		m[f] = true
	}
	for _, f := range model.ChangesFields {
		m[f] = true
	}
	return m
}()

// mergeFields returns a copy of master with every blank or absent field
// filled from the first duplicate (in member order) that has it populated.
// A populated master field is never overwritten. Aliased fields (names,
// company, email, phone, close date) are matched by family: a duplicate's
// "E-mail 1 - Value" fills the master's own email column, or lands under the
// duplicate's column when the master has none of that family. The second
// return value lists the filled master columns in the order they were filled.
func mergeFields(master model.Record, dups []model.Record) (model.Record, []string) {
	merged := master.Clone()
	var filled []string
	for _, d := range dups {
		for _, fam := range model.FieldFamilies {
			if merged.First(fam) != "" {
				continue
			}
			v, src := d.Lookup(fam)
			if v == "" {
				continue
			}
			col := merged.Column(fam, src)
			merged[col] = d[src]
			filled = append(filled, col)
		}
		for _, col := range d.Columns() {
			if protectedFields[col] || model.FamilyIndex(col) >= 0 {
				continue
			}
			v := d.Get(col)
			if v == "" || merged.Get(col) != "" {
				continue
			}
			merged[col] = d[col]
			filled = append(filled, col)
		}
	}
	return merged, filled
}
