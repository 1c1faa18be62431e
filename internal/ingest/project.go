package ingest

import (
	"strings"

	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/model"
)

// Project returns rec's values in header order. A record read from another
// source names its fields differently, so a header column the record leaves
// blank is filled through its alias family: the family's first header column
// takes the record's first non-empty alias value, unless another header
// column of that family is already populated. Name and company columns with
// no alias value are derived from the record's parsed identity.
func Project(header []string, rec model.Record) []string {
	row := make([]string, len(header))
	done := make(map[int]bool)
	for i, col := range header {
		row[i] = rec[col]
		if f := model.FamilyIndex(col); f >= 0 && strings.TrimSpace(row[i]) != "" {
			done[f] = true
		}
	}

	var id *model.Identity
	for i, col := range header {
		f := model.FamilyIndex(col)
		if f < 0 || done[f] || strings.TrimSpace(row[i]) != "" {
			continue
		}
		done[f] = true
		if v := rec.First(model.FieldFamilies[f]); v != "" {
			row[i] = v
			continue
		}
		if id == nil {
			parsed := identity.FromRecord(rec)
			id = &parsed
		}
		row[i] = identityValue(f, *id)
	}
	return row
}

func identityValue(family int, id model.Identity) string {
	if !id.IsValid {
		return ""
	}
	switch family {
	case model.FamilyFirstName:
		if !id.IsCompany {
			return id.FirstName
		}
	case model.FamilyLastName:
		if !id.IsCompany {
			return id.LastName
		}
	case model.FamilyName:
		if id.IsCompany || id.LastName == "" {
			return id.FirstName
		}
		return id.LastName + ", " + id.FirstName
	case model.FamilyCompany:
		if id.IsCompany {
			return id.FirstName
		}
	}
	return ""
}
