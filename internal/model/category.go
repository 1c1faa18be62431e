package model

import "strings"

// Category is the business classification of a resolved contact.
type Category string

const (
	CategoryAgent        Category = "Agent"
	CategoryVendor       Category = "Vendor"
	CategoryLead         Category = "Lead"
	CategoryActiveClient Category = "Active Client"
	CategoryPastClient   Category = "Past Client"
	CategoryOther        Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAgent,
	CategoryVendor,
	CategoryLead,
	CategoryActiveClient,
	CategoryPastClient,
	CategoryOther,
}

var categoryAliases = map[string]Category{
	"agent":          CategoryAgent,
	"agents":         CategoryAgent,
	"realtor":        CategoryAgent,
	"realtors":       CategoryAgent,
	"broker":         CategoryAgent,
	"co op agent":    CategoryAgent,
	"vendor":         CategoryVendor,
	"vendors":        CategoryVendor,
	"lender":         CategoryVendor,
	"lenders":        CategoryVendor,
	"title":          CategoryVendor,
	"inspector":      CategoryVendor,
	"lead":           CategoryLead,
	"leads":          CategoryLead,
	"prospect":       CategoryLead,
	"prospects":      CategoryLead,
	"active client":  CategoryActiveClient,
	"active clients": CategoryActiveClient,
	"activeclient":   CategoryActiveClient,
	"client":         CategoryActiveClient,
	"clients":        CategoryActiveClient,
	"buyer":          CategoryActiveClient,
	"seller":         CategoryActiveClient,
	"under contract": CategoryActiveClient,
	"past client":    CategoryPastClient,
	"past clients":   CategoryPastClient,
	"pastclient":     CategoryPastClient,
	"closed":         CategoryPastClient,
	"other":          CategoryOther,
}

// ParseCategory maps a free-text label onto a Category. Underscores and
// hyphens are treated as spaces and case is ignored.
func ParseCategory(label string) (Category, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer("_", " ", "-", " ").Replace(l)
	l = strings.Join(strings.Fields(l), " ")
	if l == "" {
		return "", false
	}
	c, ok := categoryAliases[l]
	return c, ok
}

// ParseGroups returns the first recognized category among the
// comma-separated tokens of a Groups field.
func ParseGroups(groups string) (Category, bool) {
	for _, tok := range SplitTags(groups) {
		if c, ok := ParseCategory(tok); ok {
			return c, true
		}
	}
	return "", false
}
