package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/model"
)

func newDefault(t *testing.T, opts ...Option) *Classifier {
	t.Helper()
	c, err := New(DefaultTables(), opts...)
	require.NoError(t, err)
	return c
}

func TestClassify_BrokerageDomainIsAgent(t *testing.T) {
	res := newDefault(t).Classify(model.Record{"Email": "agent@compass.com"})
	assert.Equal(t, model.CategoryAgent, res.Category)
	assert.Equal(t, SourceScore, res.Source)
	assert.GreaterOrEqual(t, res.Score, 40)
	assert.Contains(t, res.Signals, "brokerage_domain:compass.com")
}

func TestClassify_PersonalEmailWithPlainCompanyIsNotAgent(t *testing.T) {
	res := newDefault(t).Classify(model.Record{"Email": "jane@gmail.com", "Company": "ABC Corporation"})
	assert.NotEqual(t, model.CategoryAgent, res.Category)
	assert.Less(t, res.Score, 40)
	assert.Equal(t, model.CategoryOther, res.Category)
	assert.Equal(t, SourceDefault, res.Source)
}

func TestClassify_PersonalEmailWithBrokerageCompany(t *testing.T) {
	res := newDefault(t).Classify(model.Record{"Email": "jane@gmail.com", "Company": "Keller Williams Realty"})
	assert.Equal(t, model.CategoryAgent, res.Category)
	assert.Equal(t, 40, res.Score)
	assert.Contains(t, res.Signals, "company_brokerage_personal_email:keller williams")
}

func TestClassify_CompanyBrokerageWithoutEmail(t *testing.T) {
	res := newDefault(t).Classify(model.Record{"Brokerage": "RE/MAX Premier"})
	assert.Equal(t, model.CategoryAgent, res.Category)
	assert.Contains(t, res.Signals, "company_brokerage:re/max")
}

func TestClassify_PersonalDomainNeverScoresAsBusiness(t *testing.T) {
	tables := DefaultTables()
	tables.AgentKeywords = append(tables.AgentKeywords, "gmail")
	c, err := New(tables)
	require.NoError(t, err)

	res := c.Classify(model.Record{"Email": "jane@gmail.com"})
	assert.Equal(t, 0, res.Score)

	res = c.Classify(model.Record{"Email": "realtorjane@gmail.com"})
	assert.Equal(t, 30, res.Score, "local part still counts")
	assert.Equal(t, model.CategoryOther, res.Category)
}

func TestClassify_Vendor(t *testing.T) {
	res := newDefault(t).Classify(model.Record{"Email": "info@firstamtitle.com"})
	assert.Equal(t, model.CategoryVendor, res.Category)
	assert.Equal(t, 40, res.VendorScore)

	res = newDefault(t).Classify(model.Record{"Company": "Summit Mortgage Group"})
	assert.Equal(t, model.CategoryVendor, res.Category)
}

func TestClassify_AgentWinsTies(t *testing.T) {
	c, err := New(Tables{
		AgentKeywords:  []string{"alpha"},
		VendorKeywords: []string{"beta"},
		Points:         DefaultPoints(),
	})
	require.NoError(t, err)

	res := c.Classify(model.Record{"Email": "x@alphabeta.com"})
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, 40, res.VendorScore)
	assert.Equal(t, model.CategoryAgent, res.Category)

	res = c.Classify(model.Record{"Email": "beta@alphabeta.com"})
	assert.Equal(t, 70, res.VendorScore)
	assert.Equal(t, model.CategoryVendor, res.Category)
}

func TestClassify_ExplicitGroupsWin(t *testing.T) {
	c := newDefault(t)

	res := c.Classify(model.Record{"Groups": "Lender", "Email": "agent@compass.com"})
	assert.Equal(t, model.CategoryVendor, res.Category)
	assert.Equal(t, SourceGroups, res.Source)
	assert.Equal(t, 50, res.Score, "score is still reported")

	res = c.Classify(model.Record{"Group Membership": "Friends, Past Clients"})
	assert.Equal(t, model.CategoryPastClient, res.Category)

	res = c.Classify(model.Record{"Category": "Other", "Email": "agent@compass.com"})
	assert.Equal(t, model.CategoryAgent, res.Category, "an explicit Other does not block inference")

	res = c.Classify(model.Record{"Groups": "Book Club", "Email": "agent@compass.com"})
	assert.Equal(t, model.CategoryAgent, res.Category, "unrecognized groups fall through")
}

func TestClassify_BlockedDomainsSkipped(t *testing.T) {
	c := newDefault(t)
	for _, email := range []string{"x@docusign.net", "y@mail.dotloop.com", "z@bounce.kw.com"} {
		res := c.Classify(model.Record{"Email": email})
		assert.Equal(t, 0, res.Score, email)
		assert.Equal(t, model.CategoryOther, res.Category, email)
	}
}

func TestClassify_NoEvidence(t *testing.T) {
	res := newDefault(t).Classify(nil)
	assert.Equal(t, Result{Category: model.CategoryOther, Source: SourceDefault}, res)
}

func TestClassify_Threshold(t *testing.T) {
	res := newDefault(t, WithAgentThreshold(60)).Classify(model.Record{"Email": "agent@compass.com"})
	assert.Equal(t, model.CategoryOther, res.Category)

	_, err := New(DefaultTables(), WithVendorThreshold(0))
	assert.Error(t, err)
}

func TestEmails(t *testing.T) {
	c := newDefault(t)
	got := c.Emails(model.Record{
		"Email":            "A@KW.com",
		"E-mail 1 - Value": "a@kw.com ::: b@x.io",
		"Work Email":       "not-an-email",
		"List Agent Email": "c@docusign.com",
	})
	require.Len(t, got, 2)
	assert.Equal(t, Email{Address: "a@kw.com", Local: "a", Domain: "kw.com"}, got[0])
	assert.Equal(t, "b@x.io", got[1].Address)
}

func TestParseEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Foo@Bar.COM ", "foo@bar.com", true},
		{"a@b.co", "a@b.co", true},
		{"a@@b.com", "", false},
		{"a@b@c.com", "", false},
		{"a b@c.com", "", false},
		{"@c.com", "", false},
		{"a@bc", "", false},
		{"a@.c", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, ok := ParseEmail(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, e.Address)
		})
	}
}

func TestApply(t *testing.T) {
	agent := Result{Category: model.CategoryAgent}

	rec := model.Record{"Category": "Past Client"}
	assert.Equal(t, rec, Apply(rec, agent, "Category"), "recognized category is kept")

	got := Apply(model.Record{}, agent, "Category")
	assert.Equal(t, "Agent", got["Category"])

	got = Apply(model.Record{"Category": "other"}, agent, "Category")
	assert.Equal(t, "Agent", got["Category"])

	in := model.Record{"Category": "mystery"}
	got = Apply(in, agent, "Category")
	assert.Equal(t, "Agent", got["Category"])
	assert.Equal(t, "mystery", in["Category"], "input untouched")
}

func TestApply_KeepsExplicitValueWithoutEvidence(t *testing.T) {
	c := newDefault(t)
	rec := model.Record{"Email": "pat@gmail.com", "Category": "Sphere of Influence"}
	res := c.Classify(rec)
	require.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, "Sphere of Influence", Apply(rec, res, "Category")["Category"])

	scored := model.Record{"Email": "pat@compass.com", "Category": "Sphere of Influence"}
	assert.Equal(t, "Agent", Apply(scored, c.Classify(scored), "Category")["Category"])

	blank := model.Record{"Email": "pat@gmail.com"}
	assert.Equal(t, "Other", Apply(blank, c.Classify(blank), "Category")["Category"])
}
