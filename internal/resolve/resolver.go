// Package resolve groups contact records that refer to the same person,
// designates a master per group, merges duplicate data into it, and tags
// every record with its resolution role.
package resolve

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/identity"
	"github.com/sells-group/contact-cli/internal/model"
)

// Stats summarizes one resolution pass.
// Total == Masters + Duplicates + Unique; Unkeyed records are counted in Unique.
type Stats struct {
	Total           int `json:"total"`
	DuplicateGroups int `json:"duplicate_groups"`
	Masters         int `json:"masters"`
	Duplicates      int `json:"duplicates"`
	Unique          int `json:"unique"`
	Unkeyed         int `json:"unkeyed"`
}

// GroupSummary records how one duplicate group was resolved, by input index.
type GroupSummary struct {
	Key        string   `json:"key"`
	Master     int      `json:"master"`
	Duplicates []int    `json:"duplicates"`
	Filled     []string `json:"filled,omitempty"`
}

// Result is the output of Resolve. Records has the same length and order as
// the input; masters are replaced by their merged copies and duplicates
// carry the duplicate marker.
type Result struct {
	Records []model.Record `json:"records"`
	Stats   Stats          `json:"stats"`
	Groups  []GroupSummary `json:"groups,omitempty"`
}

// Resolver links records by identity key.
type Resolver struct {
	selectMaster Selector
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMasterSelector overrides the master tie-break (default FirstSeen).
func WithMasterSelector(s Selector) Option {
	return func(r *Resolver) {
		if s != nil {
			r.selectMaster = s
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{selectMaster: FirstSeen}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type group struct {
	key     string
	members []int
}

// Resolve groups records by identity key and merges each duplicate group
// into its master. Records without a usable key pass through untouched. It
// never fails: a record that cannot be parsed is a singleton.
func (r *Resolver) Resolve(records []model.Record) Result {
	res := Result{
		Records: make([]model.Record, len(records)),
		Stats:   Stats{Total: len(records)},
	}

	var groups []*group
	byKey := make(map[string]*group)
	for i, rec := range records {
		key, ok := identity.KeyFor(rec)
		if !ok {
			res.Records[i] = normalizeMarkers(rec)
			res.Stats.Unkeyed++
			res.Stats.Unique++
			continue
		}
		g, exists := byKey[key]
		if !exists {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}

	for _, g := range groups {
		if len(g.members) == 1 {
			i := g.members[0]
			res.Records[i] = normalizeMarkers(records[i])
			res.Stats.Unique++
			continue
		}
		summary := r.resolveGroup(g, records, res.Records)
		res.Groups = append(res.Groups, summary)
		res.Stats.DuplicateGroups++
		res.Stats.Masters++
		res.Stats.Duplicates += len(g.members) - 1
	}

	return res
}

// resolveGroup writes the merged master and tagged duplicates of g into out.
func (r *Resolver) resolveGroup(g *group, in, out []model.Record) GroupSummary {
	members := make([]model.Record, len(g.members))
	for j, idx := range g.members {
		members[j] = in[idx]
	}
	mi := r.selectMaster(members)
	if mi < 0 || mi >= len(members) {
		mi = 0
	}

	master := members[mi]
	var dups []model.Record
	summary := GroupSummary{Key: g.key, Master: g.members[mi]}
	for j, idx := range g.members {
		if j == mi {
			continue
		}
		dups = append(dups, members[j])
		summary.Duplicates = append(summary.Duplicates, idx)
	}

	merged, filled := mergeFields(master, dups)
	tags := master.Tags()
	for _, d := range dups {
		tags = model.UnionTags(tags, withoutMarkers(d.Tags()))
	}
	tags = model.RemoveTag(tags, model.TagDuplicate)
	tags = model.AddTag(tags, model.TagMerged)
	merged = merged.WithTags(tags)
	if len(filled) > 0 {
		merged = merged.WithNote(fmt.Sprintf("Merged %d duplicate(s): %s", len(dups), strings.Join(filled, ", ")))
	}
	out[summary.Master] = merged
	summary.Filled = filled

	for j, idx := range g.members {
		if j == mi {
			continue
		}
		d := members[j]
		out[idx] = normalizeMarkers(d.WithTags(model.AddTag(d.Tags(), model.TagDuplicate)))
	}

	zap.L().Debug("resolve: merged duplicate group",
		zap.String("key", g.key),
		zap.Int("size", len(g.members)),
		zap.Int("master_index", summary.Master),
		zap.Strings("filled", filled),
	)
	return summary
}

// normalizeMarkers drops the duplicate marker from a record that also
// carries the merged marker. Other records are returned as-is.
func normalizeMarkers(rec model.Record) model.Record {
	if rec.HasTag(model.TagMerged) && rec.HasTag(model.TagDuplicate) {
		return rec.WithTags(model.RemoveTag(rec.Tags(), model.TagDuplicate))
	}
	return rec
}

func withoutMarkers(tags []string) []string {
	return model.RemoveTag(model.RemoveTag(tags, model.TagMerged), model.TagDuplicate)
}
