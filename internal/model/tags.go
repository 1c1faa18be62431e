package model

import "strings"

// Resolution markers.
const (
	TagMerged    = "Merged"
	TagDuplicate = "Duplicate"
)

// SplitTags splits a comma-separated tag field into trimmed, non-empty tokens.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTags joins tokens with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// HasTag reports whether the tag field s contains tag (case-insensitive).
func HasTag(s, tag string) bool {
	return indexTag(SplitTags(s), tag) >= 0
}

// AddTag appends tag unless an equal token is already present. The input
// slice is never written through.
func AddTag(tags []string, tag string) []string {
	if indexTag(tags, tag) >= 0 {
		return tags
	}
	return append(tags[:len(tags):len(tags)], tag)
}

// RemoveTag drops every token equal to tag.
func RemoveTag(tags []string, tag string) []string {
	out := tags[:0:0]
	for _, t := range tags {
		if !strings.EqualFold(t, tag) {
			out = append(out, t)
		}
	}
	return out
}

// UnionTags appends tokens from extra not already in base, preserving order.
func UnionTags(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, t := range extra {
		out = AddTag(out, t)
	}
	return out
}

func indexTag(tags []string, tag string) int {
	for i, t := range tags {
		if strings.EqualFold(t, tag) {
			return i
		}
	}
	return -1
}
