package commission

import (
	"sort"
	"time"
)

// MatchContext describes one completed appointment from the matcher's point
// of view.
type MatchContext struct {
	ClinicID       uint
	ProfessionalID uint
	Procedure      string
	Date           time.Time
}

// groupKey identifies one beneficiary group: either a specific staff member
// of a category, or the category-wide slot for rules that name no one.
type groupKey struct {
	category BeneficiaryType
	staffID  uint
	general  bool
}

func ruleGroupKey(r Rule) groupKey {
	if r.BeneficiaryID != nil {
		return groupKey{category: r.Beneficiary, staffID: *r.BeneficiaryID}
	}
	return groupKey{category: r.Beneficiary, general: true}
}

// SelectWinningRules selects at most one rule per beneficiary group for the
// given context. Inactive rules and rules of other clinics are invisible;
// each of the professional, procedure, and weekday filters must match either
// specifically or via a wildcard selector. Among the surviving rules of a
// group, the highest priority wins; ties resolve to the rule appearing first
// in the supplied slice, so the result is reproducible for the same input.
//
// An empty result is a normal outcome, not an error: a clinic may simply
// have no rule covering a procedure.
func SelectWinningRules(rules []Rule, ctx MatchContext) []Rule {
	day := ctx.Date.Weekday()

	var matched []Rule
	for _, r := range rules {
		if !r.Active || r.ClinicID != ctx.ClinicID {
			continue
		}
		if !r.Professional.Matches(ctx.ProfessionalID) {
			continue
		}
		if !r.Procedure.Matches(ctx.Procedure) {
			continue
		}
		if !r.Day.Matches(day) {
			continue
		}
		matched = append(matched, r)
	}

	// Stable sort keeps supplied order between equal priorities.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})

	seen := make(map[groupKey]struct{}, len(matched))
	winners := make([]Rule, 0, len(matched))
	for _, r := range matched {
		key := ruleGroupKey(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		winners = append(winners, r)
	}

	return winners
}
