package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resolve"
)

func fixtureSources() []model.Source {
	return []model.Source{
		{Name: "MLS Closings", Kind: model.SourceMLS, Records: []model.Record{
			{"First Name": "Cara", "Last Name": "Moss", "Close Date": "2020-05-01"},
			{"Company": "Closing Pros", "Tags": "Anniversary"},
			{"Name": "Rhodes, r Kent & Marsha J", "Tags": "Home Anniversary"},
			{"First Name": "Dan", "Last Name": "Fox", "Tags": "Anniversary, Duplicate"},
		}},
		{Name: "CRM", Kind: model.SourceCRM, Records: []model.Record{
			{"First Name": "John", "Last Name": "Smith", "Email": "j@x.com", "Tags": "Buyer", "Changes Made": "No changes"},
			{"First Name": "Ann", "Last Name": "Lee", "Tags": "Closed Date 2021", "Changes Made": ""},
			{"First Name": "Bob", "Last Name": "Ray", "Changes Made": "Updated phone"},
			{"Company": "Acme Title", "Changes Made": "Fixed company name"},
		}},
		{Name: "Phone", Kind: model.SourcePhone, Records: []model.Record{
			{"Name": "Smith, John", "Phone": "555-0100"},
			{"First Name": "Ann", "Last Name": "Lee", "Tags": "Anniversary"},
		}},
	}
}

// fixture resolves only the CRM and phone exports, so the MLS list is
// reachable only through its raw records.
func fixture(t *testing.T) (*Builder, []model.Record) {
	t.Helper()
	srcs := fixtureSources()
	var corpus []model.Record
	corpus = append(corpus, srcs[1].Records...)
	corpus = append(corpus, srcs[2].Records...)
	res := resolve.New().Resolve(corpus)
	require.Equal(t, 2, res.Stats.DuplicateGroups)
	return NewBuilder(res.Records, srcs), res.Records
}

func names(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		id := identity.FromRecord(r)
		out[i] = id.FirstName
		if id.LastName != "" {
			out[i] += " " + id.LastName
		}
	}
	return out
}

func TestBuild_ChangedOnly(t *testing.T) {
	b, _ := fixture(t)
	got, err := b.Build(SetChangedOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"John Smith", "Bob Ray", "Acme Title"}, names(got))
	for _, r := range got {
		assert.True(t, r.HasChanges())
		assert.False(t, r.HasTag(model.TagDuplicate))
	}
}

func TestBuild_ChangedPlusAnniversary(t *testing.T) {
	b, _ := fixture(t)
	got, err := b.Build(SetChangedPlusAnniversary)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"John Smith", "Ann Lee", // merged
		"Bob Ray", "Acme Title", // changed
		"Cara Moss", "Kent Rhodes", "Marsha Rhodes", // raw MLS anniversary
	}, names(got))

	cara := got[4]
	assert.Equal(t, "Added from MLS Closings anniversary list", cara[model.ColChanges])
	kent := got[5]
	assert.Contains(t, kent[model.ColChanges], "Split from shared name")
	assert.Contains(t, kent[model.ColChanges], "; Added from MLS Closings anniversary list")
}

func TestBuild_AnniversaryOnly(t *testing.T) {
	b, _ := fixture(t)
	got, err := b.Build(SetAnniversaryOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Lee", "Cara Moss", "Kent Rhodes", "Marsha Rhodes"}, names(got))
}

func TestBuild_AllExcludesDuplicates(t *testing.T) {
	b, resolved := fixture(t)
	got, err := b.Build(SetAll)
	require.NoError(t, err)
	assert.Len(t, resolved, 6)
	assert.Equal(t, []string{"John Smith", "Ann Lee", "Bob Ray", "Acme Title"}, names(got))
}

func TestBuild_SetsAreKeyUniqueAndNested(t *testing.T) {
	b, _ := fixture(t)
	sets := b.BuildAll()
	require.Len(t, sets, len(SetNames))

	for name, recs := range sets {
		seen := map[string]bool{}
		for _, r := range recs {
			key, ok := identity.KeyFor(r)
			if !ok {
				continue
			}
			assert.False(t, seen[key], "set %s repeats key %s", name, key)
			seen[key] = true
		}
	}

	for _, r := range sets[SetChangedOnly] {
		assert.Contains(t, sets[SetChangedPlusAnniversary], r)
	}
}

func TestBuild_DoesNotModifySources(t *testing.T) {
	b, _ := fixture(t)
	_, err := b.Build(SetChangedPlusAnniversary)
	require.NoError(t, err)

	fresh := fixtureSources()
	require.Equal(t, model.SourceMLS, b.sources[2].Kind, "sources scanned in kind order")
	assert.Equal(t, fresh[0].Records, b.sources[2].Records)
	assert.Equal(t, fresh[1].Records, b.sources[0].Records)
}

func TestBuild_UnknownSet(t *testing.T) {
	b, _ := fixture(t)
	_, err := b.Build("everything")
	assert.Error(t, err)
}

func TestBuild_UnkeyedResolvedAdmittedOnce(t *testing.T) {
	rec := model.Record{"Company": "Acme Title", "Changes Made": "Fixed", "Tags": "Anniversary, Merged"}
	b := NewBuilder([]model.Record{rec, rec.Clone()}, nil)
	got, err := b.Build(SetChangedPlusAnniversary)
	require.NoError(t, err)
	assert.Len(t, got, 2, "each unkeyed record once, across all tiers")
}

func TestParseSet(t *testing.T) {
	for in, want := range map[string]SetName{
		"changed-only":             SetChangedOnly,
		"CHANGED_PLUS_ANNIVERSARY": SetChangedPlusAnniversary,
		" anniversary-only ":       SetAnniversaryOnly,
		"all":                      SetAll,
	} {
		got, err := ParseSet(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSet("some")
	assert.Error(t, err)
}
