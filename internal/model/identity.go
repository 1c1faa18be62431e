package model

// Identity is the structured name derived from a raw name string.
// IsValid is true iff FirstName is non-empty; a company identity always has
// an empty LastName.
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsCompany bool   `json:"is_company"`
	IsValid   bool   `json:"is_valid"`
}

// SourceKind names the export a source came from.
type SourceKind string

const (
	SourceCRM   SourceKind = "crm"
	SourcePhone SourceKind = "phone"
	SourceMLS   SourceKind = "mls"
)

// SourceOrder is the fixed order sources are resolved and scanned in.
var SourceOrder = []SourceKind{SourceCRM, SourcePhone, SourceMLS}

// Rank returns the kind's position in SourceOrder; unknown kinds sort last.
func (k SourceKind) Rank() int {
	for i, s := range SourceOrder {
		if s == k {
			return i
		}
	}
	return len(SourceOrder)
}

// Source is one parsed input export.
type Source struct {
	Name    string     `json:"name"`
	Kind    SourceKind `json:"kind"`
	Header  []string   `json:"header,omitempty"`
	Records []Record   `json:"records"`
}
