package resolve

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-cli/internal/model"
)

// Selector picks the master of a duplicate group. members are in
// first-encountered order; the returned index must be within range.
type Selector func(members []model.Record) int

// Master selection policies accepted by SelectorByName.
const (
	PolicyFirstSeen    = "first"
	PolicyMostComplete = "most_complete"
)

// FirstSeen selects the first record encountered in input order.
func FirstSeen([]model.Record) int { return 0 }

// MostComplete selects the record with the most populated fields, breaking
// ties by input order.
func MostComplete(members []model.Record) int {
	best, bestFilled := 0, -1
	for i, m := range members {
		if n := m.Filled(); n > bestFilled {
			best, bestFilled = i, n
		}
	}
	return best
}

// SelectorByName maps a configured policy name to a Selector.
func SelectorByName(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFirstSeen, "first_seen":
		return FirstSeen, nil
	case PolicyMostComplete:
		return MostComplete, nil
	default:
		return nil, eris.Errorf("resolve: unknown master policy %q", name)
	}
}
