package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/model"
)

func TestBuildKey(t *testing.T) {
	key, ok := BuildKey(person("Sean", "O'Connor"))
	require.True(t, ok)
	assert.Equal(t, "sean|oconnor", key)

	key, ok = BuildKey(person("  Mary  Ann ", "Van   Der-Berg"))
	require.True(t, ok)
	assert.Equal(t, "mary ann|van derberg", key)
}

func TestBuildKey_RequiresBothParts(t *testing.T) {
	_, ok := BuildKey(person("Cher", ""))
	assert.False(t, ok)

	_, ok = BuildKey(person("", "Smith"))
	assert.False(t, ok)

	_, ok = BuildKey(person("...", "Smith"))
	assert.False(t, ok, "punctuation-only first name normalizes to empty")

	_, ok = BuildKey(company("Acme Holdings"))
	assert.False(t, ok, "companies never key")
}

func TestBuildKey_Deterministic(t *testing.T) {
	names := []string{
		"Smith, J Michael", "John Q Public", "o'connor, sean", "ACME LLC",
		"Rhodes, r Kent", "", "Cher", "  jane   DOE ",
	}
	for _, n := range names {
		k1, ok1 := BuildKey(Parse(n))
		k2, ok2 := BuildKey(Parse(n))
		assert.Equal(t, ok1, ok2, "name %q", n)
		assert.Equal(t, k1, k2, "name %q", n)
	}
}

func TestBuildKey_EquivalentSpellingsCollide(t *testing.T) {
	a, _ := BuildKey(Parse("Smith, John"))
	b, _ := BuildKey(Parse("JOHN SMITH"))
	c, _ := BuildKey(Parse("john a. smith"))
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestNormalizeKeyPart(t *testing.T) {
	assert.Equal(t, "josé", NormalizeKeyPart("JOSÉ"))
	assert.Equal(t, "anne marie", NormalizeKeyPart(" Anne\tMarie! "))
	assert.Equal(t, "", NormalizeKeyPart("--"))
}

func TestFromRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  model.Record
		want model.Identity
	}{
		{"first and last columns", model.Record{"First Name": "JANE", "Last Name": "doe"}, person("Jane", "Doe")},
		{"first column holds full name", model.Record{"First Name": "Jane Q Doe"}, person("Jane", "Doe")},
		{"combined name field", model.Record{"Name": "Doe, Jane"}, person("Jane", "Doe")},
		{"company fallback", model.Record{"Company": "Acme Realty"}, company("Acme Realty")},
		{"company in split columns", model.Record{"First Name": "Acme", "Last Name": "Realty"}, company("Acme Realty")},
		{"phone export aliases", model.Record{"Given Name": "ann", "Family Name": "lee"}, person("Ann", "Lee")},
		{"missing columns", model.Record{"Email": "x@y.com"}, model.Identity{}},
		{"nil record", nil, model.Identity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRecord(tt.rec))
		})
	}
}

func TestKeyFor(t *testing.T) {
	a, ok := KeyFor(model.Record{"First Name": "John", "Last Name": "Smith"})
	require.True(t, ok)
	b, ok := KeyFor(model.Record{"Name": "Smith, John"})
	require.True(t, ok)
	assert.Equal(t, a, b)

	_, ok = KeyFor(model.Record{"Company": "Smith Holdings"})
	assert.False(t, ok)
}

func TestExpandShared(t *testing.T) {
	rec := model.Record{"Name": "Rhodes, r Kent & Marsha J", "Tags": "Past Client"}
	out := ExpandShared(rec)
	require.Len(t, out, 2)

	assert.Equal(t, "Kent", out[0][model.ColFirst])
	assert.Equal(t, "Rhodes", out[0][model.ColLast])
	assert.Equal(t, "Marsha", out[1][model.ColFirst])
	assert.Equal(t, "Rhodes", out[1][model.ColLast])
	for _, r := range out {
		assert.Equal(t, "Past Client", r["Tags"])
		assert.Contains(t, r[model.ColChanges], "Split from shared name")
	}

	// Input untouched.
	_, hasFirst := rec[model.ColFirst]
	assert.False(t, hasFirst)
}

func TestExpandShared_FirstColumnWithAmpersand(t *testing.T) {
	rec := model.Record{"First Name": "Kent & Marsha", "Last Name": "Rhodes"}
	out := ExpandShared(rec)
	require.Len(t, out, 2)
	assert.Equal(t, "Kent", out[0]["First Name"])
	assert.Equal(t, "Marsha", out[1]["First Name"])
}

func TestExpandShared_NoSplit(t *testing.T) {
	rec := model.Record{"Name": "Smith, John"}
	out := ExpandShared(rec)
	require.Len(t, out, 1)
	assert.Equal(t, rec, out[0])
}
