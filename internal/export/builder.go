// Package export assembles the named export sets from a resolved corpus
// and the raw per-source corpora it was built from.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/model"
)

// SetName names an export set.
type SetName string

const (
	SetChangedOnly            SetName = "changed-only"
	SetChangedPlusAnniversary SetName = "changed-plus-anniversary"
	SetAnniversaryOnly        SetName = "anniversary-only"
	SetAll                    SetName = "all"
)

// SetNames lists every export set.
var SetNames = []SetName{SetChangedOnly, SetChangedPlusAnniversary, SetAnniversaryOnly, SetAll}

// ParseSet maps a set name (case-insensitive, "_" accepted for "-") to a
// SetName.
func ParseSet(s string) (SetName, error) {
	n := SetName(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, known := range SetNames {
		if n == known {
			return n, nil
		}
	}
	return "", eris.Errorf("export: unknown set %q", s)
}

type tier int

const (
	tierMerged tier = iota
	tierChanged
	tierAnniversary
	tierRawAnniversary
	tierAll
)

var setTiers = map[SetName][]tier{
	SetChangedOnly:            {tierChanged},
	SetChangedPlusAnniversary: {tierMerged, tierChanged, tierAnniversary, tierRawAnniversary},
	SetAnniversaryOnly:        {tierAnniversary, tierRawAnniversary},
	SetAll:                    {tierAll},
}

// Builder builds export sets. It never modifies its inputs.
type Builder struct {
	resolved []model.Record
	sources  []model.Source
}

// NewBuilder creates a Builder. Sources are scanned in fixed kind order
// (crm, phone, mls), keeping the given order within a kind.
func NewBuilder(resolved []model.Record, sources []model.Source) *Builder {
	ordered := append([]model.Source(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind.Rank() < ordered[j].Kind.Rank()
	})
	return &Builder{resolved: resolved, sources: ordered}
}

// Build returns the records of one export set. Every set is duplicate-free
// by identity key; a record admitted by an earlier tier is never admitted
// again by a later one.
func (b *Builder) Build(set SetName) ([]model.Record, error) {
	tiers, ok := setTiers[set]
	if !ok {
		return nil, eris.Errorf("export: unknown set %q", set)
	}

	a := newAdmitter()
	for _, t := range tiers {
		if t == tierRawAnniversary {
			b.admitRaw(a)
			continue
		}
		for i, rec := range b.resolved {
			if matches(t, rec) {
				a.admitResolved(i, rec)
			}
		}
	}

	zap.L().Debug("export: built set", zap.String("set", string(set)), zap.Int("records", len(a.out)))
	return a.out, nil
}

// BuildAll returns every export set.
func (b *Builder) BuildAll() map[SetName][]model.Record {
	out := make(map[SetName][]model.Record, len(SetNames))
	for _, s := range SetNames {
		out[s], _ = b.Build(s)
	}
	return out
}

func matches(t tier, rec model.Record) bool {
	dup := rec.HasTag(model.TagDuplicate)
	switch t {
	case tierMerged:
		return rec.HasTag(model.TagMerged)
	case tierChanged:
		return rec.HasChanges() && !dup
	case tierAnniversary:
		return rec.IsAnniversary() && !dup
	case tierAll:
		return !dup
	}
	return false
}

// admitRaw adds anniversary-tagged raw records whose identity is not yet
// in the set, stamped with their source.
func (b *Builder) admitRaw(a *admitter) {
	for _, src := range b.sources {
		note := fmt.Sprintf("Added from %s anniversary list", sourceLabel(src))
		for _, raw := range src.Records {
			for _, rec := range identity.ExpandShared(raw) {
				if !rec.IsAnniversary() || rec.HasTag(model.TagDuplicate) {
					continue
				}
				key, ok := identity.KeyFor(rec)
				if !ok || a.seen[key] {
					continue
				}
				a.seen[key] = true
				a.out = append(a.out, rec.WithNote(note))
			}
		}
	}
}

func sourceLabel(src model.Source) string {
	if src.Name != "" {
		return src.Name
	}
	return string(src.Kind)
}

type admitter struct {
	seen     map[string]bool
	resolved map[int]bool
	out      []model.Record
}

func newAdmitter() *admitter {
	return &admitter{seen: make(map[string]bool), resolved: make(map[int]bool)}
}

// admitResolved admits the resolved record at index i unless it, or another
// record with its key, is already in the set. Unkeyed records are tracked
// by index.
func (a *admitter) admitResolved(i int, rec model.Record) {
	if a.resolved[i] {
		return
	}
	key, ok := identity.KeyFor(rec)
	if ok && a.seen[key] {
		return
	}
	if ok {
		a.seen[key] = true
	}
	a.resolved[i] = true
	a.out = append(a.out, rec)
}
