package commission

import "fmt"

// IssueCode classifies a completion validation finding.
type IssueCode string

const (
	// IssueDuplicate means the appointment already has live commission
	// records. Never overridable; the existing records must be cancelled
	// before the appointment can be completed again.
	IssueDuplicate IssueCode = "DUPLICATE"

	// IssueNoRule means no professional rule covers the appointment, so the
	// performing professional would earn nothing. Overridable by an operator
	// who confirms that is intended.
	IssueNoRule IssueCode = "NO_RULE"
)

// Issue is one validation finding.
type Issue struct {
	Code        IssueCode
	Message     string
	Overridable bool
}

// ValidationResult is the outcome of pre-completion validation.
type ValidationResult struct {
	Issues []Issue
}

// OK reports whether validation found nothing at all.
func (v ValidationResult) OK() bool {
	return len(v.Issues) == 0
}

// Blocking returns the issues that must stop completion. Overridable issues
// are dropped when ackMissingRule is set; absolute issues always remain.
func (v ValidationResult) Blocking(ackMissingRule bool) []Issue {
	var blocking []Issue
	for _, issue := range v.Issues {
		if issue.Overridable && ackMissingRule {
			continue
		}
		blocking = append(blocking, issue)
	}
	return blocking
}

// ValidateCompletion checks whether the appointment described by ctx can be
// completed. existing holds the appointment's live commission records;
// cancelled records never count, so a cancelled completion can be redone.
// Professional coverage means a winning rule that would actually pay the
// performing professional, mirroring how completion resolves beneficiaries.
// Seller and reception coverage is not validated here because those
// categories are optional on every appointment.
func ValidateCompletion(existing []Record, rules []Rule, ctx MatchContext) ValidationResult {
	var result ValidationResult

	live := 0
	for _, rec := range existing {
		if rec.Status != StatusCancelled {
			live++
		}
	}
	if live > 0 {
		result.Issues = append(result.Issues, Issue{
			Code:        IssueDuplicate,
			Message:     fmt.Sprintf("appointment already has %d live commission record(s); cancel them before completing again", live),
			Overridable: false,
		})
	}

	hasProfessionalRule := false
	for _, r := range SelectWinningRules(rules, ctx) {
		if r.Beneficiary != BeneficiaryProfessional {
			continue
		}
		// A rule naming a different professional pays no one on this
		// appointment, so it is not coverage
		if r.BeneficiaryID != nil && *r.BeneficiaryID != ctx.ProfessionalID {
			continue
		}
		hasProfessionalRule = true
		break
	}
	if !hasProfessionalRule {
		result.Issues = append(result.Issues, Issue{
			Code:        IssueNoRule,
			Message:     fmt.Sprintf("no active commission rule covers procedure %q for this professional", ctx.Procedure),
			Overridable: true,
		})
	}

	return result
}
